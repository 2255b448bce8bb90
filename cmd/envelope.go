package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/decay-cli/internal/curve"
	"github.com/sells-group/decay-cli/internal/envelope"
	"github.com/sells-group/decay-cli/internal/oscillator"
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Render an ADSR envelope built from decay curves",
	Long: `Render an attack/decay/sustain/release envelope one sample per line.

Each stage is a decay curve that closes all but 2% of its gap in the stage
time; the envelope then snaps to the stage target and moves on. The gate is
released at --release-at (negative keeps it held).

With --tone the envelope shapes a wavetable oscillator and each line is the
oscillator sample times the envelope value.

Examples:
  # 10ms attack, 50ms decay to 0.6, 100ms release at 22.5kHz
  envelope --samples 6000 --release-at 3000

  # the same envelope applied to a 440Hz sine
  envelope --samples 6000 --release-at 3000 --tone sine --freq 440`,
	Args: cobra.NoArgs,
	RunE: runEnvelope,
}

func init() {
	f := envelopeCmd.Flags()
	f.Float64("attack", 0, "attack time in seconds (overrides config)")
	f.Float64("decay", 0, "decay time in seconds (overrides config)")
	f.Float64("sustain", 0, "sustain level 0-1 (overrides config)")
	f.Float64("release", 0, "release time in seconds (overrides config)")
	f.Int("rate", 0, "sample rate in Hz (overrides config)")
	f.Int("samples", 1000, "number of samples to render")
	f.Int("release-at", 500, "sample index at which the gate is released")
	f.String("tone", "none", "oscillator shape: none, sine, saw, square (overrides config)")
	f.Float64("freq", 440, "oscillator frequency in Hz (overrides config)")

	rootCmd.AddCommand(envelopeCmd)
}

func applyEnvelopeOverrides(cmd *cobra.Command, base envelope.Config) envelope.Config {
	c := base
	f := cmd.Flags()

	if f.Changed("attack") {
		c.Attack, _ = f.GetFloat64("attack")
	}
	if f.Changed("decay") {
		c.Decay, _ = f.GetFloat64("decay")
	}
	if f.Changed("sustain") {
		c.Sustain, _ = f.GetFloat64("sustain")
	}
	if f.Changed("release") {
		c.Release, _ = f.GetFloat64("release")
	}
	if f.Changed("rate") {
		c.SampleRate, _ = f.GetInt("rate")
	}
	return c
}

func runEnvelope(cmd *cobra.Command, _ []string) error {
	log := zap.L().With(zap.String("command", "envelope"))

	samples, _ := cmd.Flags().GetInt("samples")
	releaseAt, _ := cmd.Flags().GetInt("release-at")
	if samples <= 0 {
		return eris.Errorf("envelope: --samples must be positive (got %d)", samples)
	}

	ec := applyEnvelopeOverrides(cmd, cfg.Envelope)
	env, err := envelope.New(ec)
	if err != nil {
		return err
	}

	shapeName := cfg.Tone.Shape
	if cmd.Flags().Changed("tone") {
		shapeName, _ = cmd.Flags().GetString("tone")
	}
	freq := cfg.Tone.Freq
	if cmd.Flags().Changed("freq") {
		freq, _ = cmd.Flags().GetFloat64("freq")
	}
	shape, err := oscillator.ParseShape(shapeName)
	if err != nil {
		return err
	}
	osc, err := oscillator.New(shape, freq, ec.SampleRate)
	if err != nil {
		return err
	}

	pts := env.Render(samples, releaseAt)
	for i := range pts {
		pts[i].Value *= osc.Sample()
	}

	log.Debug("rendered envelope",
		zap.Int("samples", samples),
		zap.Int("release_at", releaseAt),
		zap.Int("sample_rate", ec.SampleRate),
		zap.String("tone", string(shape)),
		zap.Float64("freq", freq),
		zap.Stringer("final_state", env.State()),
	)

	return curve.Write(cmd.OutOrStdout(), pts)
}
