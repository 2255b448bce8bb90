package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/decay-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "decay-cli",
	Short: "Exponential decay curve calculator",
	Long: `Derives the per-step rate of an exponential decay curve that closes all but
a threshold fraction of the gap between a start and an end value in a fixed
number of steps, then prints the curve twice: once by iterative smoothing and
once in closed form.

With no subcommand the configured curve (threshold 0.03, 15 steps, 1.0 to 0.0
unless overridden by config.yaml or DECAY_* variables) is printed as
"index: value" lines.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCurve(cmd, cfg.Curve.Params(), cfg.Output.Format)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
