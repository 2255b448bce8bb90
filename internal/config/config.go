package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/decay-cli/internal/curve"
	"github.com/sells-group/decay-cli/internal/envelope"
	"github.com/sells-group/decay-cli/internal/oscillator"
)

// Config holds the full application configuration.
type Config struct {
	Curve    CurveConfig     `yaml:"curve" mapstructure:"curve"`
	Envelope envelope.Config `yaml:"envelope" mapstructure:"envelope"`
	Tone     ToneConfig      `yaml:"tone" mapstructure:"tone"`
	Output   OutputConfig    `yaml:"output" mapstructure:"output"`
	Log      LogConfig       `yaml:"log" mapstructure:"log"`
}

// CurveConfig holds the decay curve constants.
type CurveConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	Steps     int     `yaml:"steps" mapstructure:"steps"`
	Start     float64 `yaml:"start" mapstructure:"start"`
	End       float64 `yaml:"end" mapstructure:"end"`
}

// Params converts the configured constants to curve parameters.
func (c CurveConfig) Params() curve.Params {
	return curve.Params{
		Threshold: c.Threshold,
		Steps:     c.Steps,
		Start:     c.Start,
		End:       c.End,
	}
}

// ToneConfig selects the oscillator an envelope is applied to.
type ToneConfig struct {
	Shape string  `yaml:"shape" mapstructure:"shape"`
	Freq  float64 `yaml:"freq" mapstructure:"freq"`
}

// OutputConfig configures how curves are printed.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// OutputFormats lists the accepted output.format values.
var OutputFormats = []string{"text", "table", "json", "yaml"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DECAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("curve.threshold", curve.DefaultThreshold)
	v.SetDefault("curve.steps", curve.DefaultSteps)
	v.SetDefault("curve.start", curve.DefaultStart)
	v.SetDefault("curve.end", curve.DefaultEnd)
	v.SetDefault("envelope.attack", 0.01)
	v.SetDefault("envelope.decay", 0.05)
	v.SetDefault("envelope.sustain", 0.6)
	v.SetDefault("envelope.release", 0.1)
	v.SetDefault("envelope.sample_rate", 22500)
	v.SetDefault("tone.shape", string(oscillator.None))
	v.SetDefault("tone.freq", 440.0)
	v.SetDefault("output.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Curve.Params().Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("curve: %v", err))
	}
	if _, err := envelope.New(c.Envelope); err != nil {
		errs = append(errs, err.Error())
	}
	shape, err := oscillator.ParseShape(c.Tone.Shape)
	switch {
	case err != nil:
		errs = append(errs, err.Error())
	case c.Envelope.SampleRate > 0:
		// a bad sample rate is already reported by the envelope
		if _, err := oscillator.New(shape, c.Tone.Freq, c.Envelope.SampleRate); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		errs = append(errs, fmt.Sprintf("output.format must be one of %s (got %q)",
			strings.Join(OutputFormats, ", "), c.Output.Format))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Sprintf("log.format must be json or console (got %q)", c.Log.Format))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// zapConfig builds the logger configuration. Output always goes to stderr:
// stdout carries the curve and must stay byte-exact.
func zapConfig(cfg LogConfig) (zap.Config, error) {
	var zapCfg zap.Config
	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	case "json", "":
		zapCfg = zap.NewProductionConfig()
	default:
		return zap.Config{}, eris.Errorf("config: unknown log format %q", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.DisableStacktrace = level > zapcore.DebugLevel

	return zapCfg, nil
}

// InitLogger installs a global zap logger named after the binary.
func InitLogger(cfg LogConfig) error {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger.Named("decay-cli"))

	return nil
}
