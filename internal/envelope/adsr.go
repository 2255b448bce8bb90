// Package envelope implements an attack/decay/sustain/release envelope whose
// stages follow exponential decay curves.
package envelope

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/decay-cli/internal/curve"
)

// TriggerLevel is the fraction of a stage's gap left when the envelope snaps
// to the stage target and moves on.
const TriggerLevel = 0.02

// State is an envelope stage.
type State int

// Envelope stages.
const (
	Idle State = iota
	Attack
	Decay
	Sustain
	Release
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// MaxStageSamples bounds the length of a single stage.
const MaxStageSamples = math.MaxInt32

func validTime(seconds float64) bool {
	return seconds >= 0 && !math.IsInf(seconds, 0) && !math.IsNaN(seconds)
}

// Config describes an envelope. Times are in seconds.
type Config struct {
	Attack     float64 `yaml:"attack" mapstructure:"attack"`
	Decay      float64 `yaml:"decay" mapstructure:"decay"`
	Sustain    float64 `yaml:"sustain" mapstructure:"sustain"` // level in [0,1]
	Release    float64 `yaml:"release" mapstructure:"release"`
	SampleRate int     `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ADSR is a per-sample envelope generator. It is not safe for concurrent use.
type ADSR struct {
	s  float64 // sustain level
	ka float64 // attack blend
	kd float64 // decay blend
	kr float64 // release blend

	dTrigger float64 // attack->decay
	sTrigger float64 // decay->sustain
	iTrigger float64 // release->idle

	state State
	val   float64
}

// New builds an envelope from cfg.
func New(cfg Config) (*ADSR, error) {
	if !validTime(cfg.Attack) {
		return nil, eris.Errorf("envelope: bad attack time %v", cfg.Attack)
	}
	if !validTime(cfg.Decay) {
		return nil, eris.Errorf("envelope: bad decay time %v", cfg.Decay)
	}
	if cfg.Sustain < 0 || cfg.Sustain > 1 || math.IsNaN(cfg.Sustain) {
		return nil, eris.Errorf("envelope: bad sustain level %v", cfg.Sustain)
	}
	if !validTime(cfg.Release) {
		return nil, eris.Errorf("envelope: bad release time %v", cfg.Release)
	}
	if cfg.SampleRate <= 0 {
		return nil, eris.Errorf("envelope: bad sample rate %d", cfg.SampleRate)
	}

	e := &ADSR{s: cfg.Sustain}

	var err error
	if e.ka, err = stageBlend(cfg.Attack, cfg.SampleRate); err != nil {
		return nil, eris.Wrap(err, "envelope: attack")
	}
	if e.kd, err = stageBlend(cfg.Decay, cfg.SampleRate); err != nil {
		return nil, eris.Wrap(err, "envelope: decay")
	}
	if e.kr, err = stageBlend(cfg.Release, cfg.SampleRate); err != nil {
		return nil, eris.Wrap(err, "envelope: release")
	}

	e.dTrigger = 1.0 - TriggerLevel
	e.sTrigger = e.s + (1.0-e.s)*TriggerLevel
	e.iTrigger = e.s * TriggerLevel
	return e, nil
}

// stageBlend returns the per-sample blend that closes all but TriggerLevel of
// a gap in seconds*rate samples. Stages shorter than one sample jump.
func stageBlend(seconds float64, rate int) (float64, error) {
	samples := math.Round(seconds * float64(rate))
	if samples > MaxStageSamples {
		return 0, eris.Errorf("stage of %v samples exceeds %d", samples, MaxStageSamples)
	}
	n := int(samples)
	if n < 1 {
		return 1, nil
	}
	r, err := curve.Rate(TriggerLevel, n)
	if err != nil {
		return 0, err
	}
	return curve.Blend(r), nil
}

// Start enters the attack stage.
func (e *ADSR) Start() {
	e.state = Attack
}

// Release enters the release stage unless the envelope is idle.
func (e *ADSR) Release() {
	if e.state != Idle {
		e.state = Release
	}
}

// Stop resets to idle.
func (e *ADSR) Stop() {
	e.val = 0
	e.state = Idle
}

// State returns the current stage.
func (e *ADSR) State() State { return e.state }

// Value returns the last output value.
func (e *ADSR) Value() float64 { return e.val }

// Sample advances the envelope by one sample and returns its value.
func (e *ADSR) Sample() float64 {
	switch e.state {
	case Idle, Sustain:
	case Attack:
		if e.val < e.dTrigger {
			e.val += e.ka * (1.0 - e.val)
		} else {
			e.val = 1
			e.state = Decay
		}
	case Decay:
		if e.val > e.sTrigger {
			e.val += e.kd * (e.s - e.val)
		} else {
			e.val = e.s
			e.state = Sustain
		}
	case Release:
		if e.val > e.iTrigger {
			e.val += e.kr * (0.0 - e.val)
		} else {
			e.val = 0
			e.state = Idle
		}
	default:
		panic("envelope: bad state")
	}
	return e.val
}

// Render starts the envelope, releases it at sample releaseAt (never when
// negative) and returns the first n samples.
func (e *ADSR) Render(n, releaseAt int) []curve.Point {
	if n <= 0 {
		return nil
	}
	e.Stop()
	e.Start()
	pts := make([]curve.Point, 0, n)
	for i := 0; i < n; i++ {
		if i == releaseAt {
			e.Release()
		}
		pts = append(pts, curve.Point{Index: i, Value: e.Sample()})
	}
	return pts
}
