package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/decay-cli/internal/config"
	"github.com/sells-group/decay-cli/internal/curve"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print a decay curve",
	Long: `Print the iterative and closed-form renderings of a decay curve.

Flags override the configured curve only when set.

Examples:
  # Default curve, 32 "index: value" lines
  curve

  # 100 steps from 0 to 1 leaving 2% of the gap
  curve --threshold 0.02 --steps 100 --start 0 --end 1

  # Side by side with the difference between the two renderings
  curve --format table`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := applyCurveOverrides(cmd, cfg.Curve.Params())
		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		return runCurve(cmd, p, format)
	},
}

func init() {
	f := curveCmd.Flags()
	f.Float64("threshold", curve.DefaultThreshold, "fraction of the gap left after the last step (overrides config)")
	f.Int("steps", curve.DefaultSteps, "number of steps (overrides config)")
	f.Float64("start", curve.DefaultStart, "start value (overrides config)")
	f.Float64("end", curve.DefaultEnd, "end value (overrides config)")
	f.String("format", "text", "output format: "+strings.Join(config.OutputFormats, ", "))

	rootCmd.AddCommand(curveCmd)
}

// applyCurveOverrides returns base with every explicitly set flag applied.
// Zero is a valid start or end value, so Changed is checked rather than the
// flag value.
func applyCurveOverrides(cmd *cobra.Command, base curve.Params) curve.Params {
	p := base
	f := cmd.Flags()

	if f.Changed("threshold") {
		p.Threshold, _ = f.GetFloat64("threshold")
	}
	if f.Changed("steps") {
		p.Steps, _ = f.GetInt("steps")
	}
	if f.Changed("start") {
		p.Start, _ = f.GetFloat64("start")
	}
	if f.Changed("end") {
		p.End, _ = f.GetFloat64("end")
	}
	return p
}

func runCurve(cmd *cobra.Command, p curve.Params, format string) error {
	log := zap.L().With(zap.String("command", cmd.Name()))

	if !slices.Contains(config.OutputFormats, format) {
		return eris.Errorf("curve: --format must be one of %s (got %q)",
			strings.Join(config.OutputFormats, ", "), format)
	}

	c, err := curve.Compute(p)
	if err != nil {
		return eris.Wrap(err, "curve")
	}

	log.Debug("derived decay constants",
		zap.Float64("threshold", p.Threshold),
		zap.Int("steps", p.Steps),
		zap.Float64("rate", c.Rate),
		zap.Float64("blend", c.Blend),
		zap.Float64("max_divergence", c.MaxDivergence()),
	)

	return writeCurve(cmd.OutOrStdout(), c, format)
}

// writeCurve renders c to out in the given format.
func writeCurve(out io.Writer, c *curve.Curve, format string) error {
	switch format {
	case "text":
		return c.WriteBoth(out)
	case "table":
		return formatCurveTable(out, c)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return eris.Wrap(err, "curve: encode json")
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return eris.Wrap(err, "curve: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "curve: close yaml encoder")
		}
		return nil
	default:
		return eris.Errorf("curve: unknown format %q", format)
	}
}

// formatCurveTable writes both renderings side by side with their difference.
func formatCurveTable(out io.Writer, c *curve.Curve) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Rate:\t%f\n", c.Rate)
	_, _ = fmt.Fprintf(w, "Blend:\t%f\n", c.Blend)
	_, _ = fmt.Fprintf(w, "Final:\t%f\n", c.Params.Final())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "STEP\tITERATIVE\tCLOSED_FORM\tDIFF")
	_, _ = fmt.Fprintln(w, "----\t---------\t-----------\t----")

	for i := range c.Iterative {
		it := c.Iterative[i].Value
		cf := c.ClosedForm[i].Value
		_, _ = fmt.Fprintf(w, "%d\t%f\t%f\t%.2e\n", c.Iterative[i].Index, it, cf, math.Abs(it-cf))
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "curve: flush table")
	}
	return nil
}
