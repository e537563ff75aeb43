// Package config loads the dataprep settings from defaults, an optional
// YAML file, a .env file and DATAPREP_* environment variables, in that
// order of increasing precedence.
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "DATAPREP"

// Config is the complete configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Loader   LoaderConfig   `yaml:"loader" envconfig:"LOADER"`
	SQL      SQLConfig      `yaml:"sql" envconfig:"SQL"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// LoaderConfig holds the defaults used when reading sources.
type LoaderConfig struct {
	NAValues    []string      `yaml:"na_values" envconfig:"NA_VALUES"`
	Delimiter   string        `yaml:"delimiter" envconfig:"DELIMITER"`
	Sheet       string        `yaml:"sheet" envconfig:"SHEET"`
	HTTPTimeout time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT"`
}

// SQLConfig is the default database source.
type SQLConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER"`
	DSN    string `yaml:"dsn" envconfig:"DSN"`
}

// AnalysisConfig holds the default parameters of the analyses.
type AnalysisConfig struct {
	Seed                 int64   `yaml:"seed" envconfig:"SEED"`
	TestSize             float64 `yaml:"test_size" envconfig:"TEST_SIZE"`
	Neighbors            int     `yaml:"neighbors" envconfig:"NEIGHBORS"`
	CorrelationThreshold float64 `yaml:"correlation_threshold" envconfig:"CORRELATION_THRESHOLD"`
	SkewThreshold        float64 `yaml:"skew_threshold" envconfig:"SKEW_THRESHOLD"`
	UnderRepresented     float64 `yaml:"under_represented" envconfig:"UNDER_REPRESENTED"`
	ThresholdIn          float64 `yaml:"threshold_in" envconfig:"THRESHOLD_IN"`
	ThresholdOut         float64 `yaml:"threshold_out" envconfig:"THRESHOLD_OUT"`
}

// OutputConfig sizes the text output.
type OutputConfig struct {
	MaxWidth   int `yaml:"max_width" envconfig:"MAX_WIDTH"`
	PlotHeight int `yaml:"plot_height" envconfig:"PLOT_HEIGHT"`
	PlotWidth  int `yaml:"plot_width" envconfig:"PLOT_WIDTH"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Loader: LoaderConfig{
			NAValues:    []string{"", "NA", "NaN", "<nil>", "null", "NULL"},
			HTTPTimeout: 30 * time.Second,
		},
		Analysis: AnalysisConfig{
			Seed:                 1024,
			TestSize:             0.2,
			Neighbors:            20,
			CorrelationThreshold: 0.9,
			SkewThreshold:        0.75,
			UnderRepresented:     0.98,
			ThresholdIn:          0.01,
			ThresholdOut:         0.05,
		},
		Output: OutputConfig{MaxWidth: 80, PlotHeight: 10, PlotWidth: 60},
	}
}

// Load builds the configuration. file is an optional YAML file; an empty
// name skips it. A .env file in the working directory, when present, is
// loaded into the environment without overriding variables already set.
func Load(file string) (*Config, error) {
	cfg := Default()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", file)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "load config from env")
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return errors.Errorf("invalid log format %q", c.Logging.Format)
	}
	if len(c.Loader.Delimiter) > 1 {
		return errors.Errorf("delimiter must be a single character, got %q", c.Loader.Delimiter)
	}
	if c.Loader.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	a := c.Analysis
	if a.TestSize <= 0 || a.TestSize >= 1 {
		return errors.Errorf("test size %v not in (0, 1)", a.TestSize)
	}
	if a.Neighbors <= 0 {
		return errors.Errorf("invalid number of neighbors: %d", a.Neighbors)
	}
	if a.ThresholdIn >= a.ThresholdOut {
		return errors.Errorf("threshold in (%v) must be lower than threshold out (%v)", a.ThresholdIn, a.ThresholdOut)
	}
	if c.SQL.DSN != "" && c.SQL.Driver == "" {
		return errors.New("sql dsn set without a driver")
	}
	if c.Output.MaxWidth <= 0 {
		c.Output.MaxWidth = 80
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("invalid log level %q", s)
}

// Logger builds the slog logger described by the logging section.
func (l LoggingConfig) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
