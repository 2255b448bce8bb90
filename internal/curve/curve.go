// Package curve derives per-step exponential decay constants and builds the
// resulting interpolation sequences.
//
// A curve moves a value from Start toward End over Steps discrete steps such
// that after the final step only Threshold of the original gap remains. The
// per-step rate r satisfies r^Steps == Threshold and the blend k = 1 - r is the
// fraction of the remaining gap closed by each step.
package curve

import (
	"math"

	"github.com/rotisserie/eris"
)

// Built-in curve constants used when nothing overrides them.
const (
	DefaultThreshold = 0.03
	DefaultSteps     = 15
	DefaultStart     = 1.0
	DefaultEnd       = 0.0
)

var (
	// ErrDomain reports a parameter outside the domain of the rate formula
	// (for example the logarithm of a non-positive threshold).
	ErrDomain = eris.New("curve: domain error")
	// ErrArithmetic reports a division by a zero step count.
	ErrArithmetic = eris.New("curve: arithmetic error")
)

// Params configures a decay curve.
type Params struct {
	Threshold float64 `json:"threshold" yaml:"threshold"` // fraction of the gap left after the last step
	Steps     int     `json:"steps" yaml:"steps"`
	Start     float64 `json:"start" yaml:"start"`
	End       float64 `json:"end" yaml:"end"`
}

// DefaultParams returns the built-in curve constants.
func DefaultParams() Params {
	return Params{
		Threshold: DefaultThreshold,
		Steps:     DefaultSteps,
		Start:     DefaultStart,
		End:       DefaultEnd,
	}
}

// Validate checks that p describes a decaying curve: a finite threshold in
// (0,1) and a positive step count.
func (p Params) Validate() error {
	switch {
	case math.IsNaN(p.Threshold) || p.Threshold <= 0:
		return eris.Wrapf(ErrDomain, "threshold must be positive (got %v)", p.Threshold)
	case p.Threshold >= 1:
		return eris.Wrapf(ErrDomain, "threshold must be below 1 (got %v)", p.Threshold)
	case p.Steps == 0:
		return eris.Wrap(ErrArithmetic, "step count must not be zero")
	case p.Steps < 0:
		return eris.Wrapf(ErrDomain, "step count must be positive (got %d)", p.Steps)
	case math.IsNaN(p.Start) || math.IsInf(p.Start, 0):
		return eris.Wrapf(ErrDomain, "start value must be finite (got %v)", p.Start)
	case math.IsNaN(p.End) || math.IsInf(p.End, 0):
		return eris.Wrapf(ErrDomain, "end value must be finite (got %v)", p.End)
	}
	return nil
}

// Rate returns the per-step decay rate r = exp(ln(threshold)/steps), the
// positive solution of r^steps == threshold.
func Rate(threshold float64, steps int) (float64, error) {
	if math.IsNaN(threshold) || threshold <= 0 {
		return 0, eris.Wrapf(ErrDomain, "log of non-positive threshold %v", threshold)
	}
	if steps == 0 {
		return 0, eris.Wrap(ErrArithmetic, "division by zero step count")
	}
	return math.Exp(math.Log(threshold) / float64(steps)), nil
}

// Blend returns the fraction of the remaining gap closed per step at rate r.
func Blend(r float64) float64 {
	return 1.0 - r
}

// Point is one value of a curve.
type Point struct {
	Index int     `json:"index" yaml:"index"`
	Value float64 `json:"value" yaml:"value"`
}

// Iterative builds the curve by repeated first-order smoothing:
// v[i+1] = v[i] + k*(End - v[i]). It returns Steps+1 points.
func Iterative(p Params) ([]Point, error) {
	r, err := Rate(p.Threshold, p.Steps)
	if err != nil {
		return nil, err
	}
	return iterate(p, Blend(r)), nil
}

// ClosedForm builds the curve directly: v[i] = End + (Start-End)*r^i.
// It returns Steps+1 points.
func ClosedForm(p Params) ([]Point, error) {
	r, err := Rate(p.Threshold, p.Steps)
	if err != nil {
		return nil, err
	}
	return closedForm(p, r), nil
}

func iterate(p Params, k float64) []Point {
	if p.Steps < 0 {
		return nil
	}
	pts := make([]Point, 0, p.Steps+1)
	val := p.Start
	for i := 0; i <= p.Steps; i++ {
		pts = append(pts, Point{Index: i, Value: val})
		val += k * (p.End - val)
	}
	return pts
}

func closedForm(p Params, r float64) []Point {
	if p.Steps < 0 {
		return nil
	}
	pts := make([]Point, 0, p.Steps+1)
	for i := 0; i <= p.Steps; i++ {
		pts = append(pts, Point{Index: i, Value: p.End + (p.Start-p.End)*math.Pow(r, float64(i))})
	}
	return pts
}

// Curve holds the derived constants and both renderings of one decay curve.
type Curve struct {
	Params     Params  `json:"params" yaml:"params"`
	Rate       float64 `json:"rate" yaml:"rate"`
	Blend      float64 `json:"blend" yaml:"blend"`
	Iterative  []Point `json:"iterative" yaml:"iterative"`
	ClosedForm []Point `json:"closed_form" yaml:"closed_form"`
}

// Compute validates p and builds both sequences.
func Compute(p Params) (*Curve, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r, err := Rate(p.Threshold, p.Steps)
	if err != nil {
		return nil, err
	}
	k := Blend(r)
	return &Curve{
		Params:     p,
		Rate:       r,
		Blend:      k,
		Iterative:  iterate(p, k),
		ClosedForm: closedForm(p, r),
	}, nil
}

// MaxDivergence returns the largest absolute difference between the
// iterative and closed-form values at the same index.
func (c *Curve) MaxDivergence() float64 {
	var m float64
	n := min(len(c.Iterative), len(c.ClosedForm))
	for i := 0; i < n; i++ {
		if d := math.Abs(c.Iterative[i].Value - c.ClosedForm[i].Value); d > m {
			m = d
		}
	}
	return m
}

// Final returns the expected value after the last step,
// End + (Start-End)*Threshold.
func (p Params) Final() float64 {
	return p.End + (p.Start-p.End)*p.Threshold
}
