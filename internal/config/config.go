package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/strategy"
)

type Config struct {
	Log        LogConfig                  `mapstructure:"log"`
	Data       DataConfig                 `mapstructure:"data"`
	Broker     BrokerConfig               `mapstructure:"broker"`
	Live       LiveConfig                 `mapstructure:"live"`
	Store      StoreConfig                `mapstructure:"store"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
	Archive    ArchiveConfig              `mapstructure:"archive"`
	Predictors map[string]PredictorConfig `mapstructure:"predictors"`
	Notifiers  map[string]NotifierConfig  `mapstructure:"notifiers"`
	Strategies []strategy.Config          `mapstructure:"strategies"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// DataConfig selects the bar provider.
type DataConfig struct {
	Provider string        `mapstructure:"provider"` // "yahoo" or "csv"
	CSVDir   string        `mapstructure:"csv_dir"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// BrokerConfig selects the broker collaborator.
type BrokerConfig struct {
	Provider string  `mapstructure:"provider"` // "paper"
	Cash     float64 `mapstructure:"cash"`     // paper starting balance
}

// LiveConfig tunes the live driver.
type LiveConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	Workers      int           `mapstructure:"workers"`
	CallTimeout  time.Duration `mapstructure:"call_timeout"`
}

// StoreConfig bounds the in-memory persistence layer.
type StoreConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ArchiveConfig selects where backtest reports are archived.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // for localfs
	S3   S3Config `mapstructure:"s3"`
}

// S3Config holds S3 connection settings.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// PredictorConfig wires an ONNX model by the name strategies reference.
type PredictorConfig struct {
	Path           string `mapstructure:"path"`
	SequenceLength int    `mapstructure:"sequence_length"`
}

// NotifierConfig holds notifier settings.
type NotifierConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Load reads configuration from file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Data: DataConfig{
			Provider: "yahoo",
			CacheTTL: time.Minute,
		},
		Broker: BrokerConfig{
			Provider: "paper",
			Cash:     100000,
		},
		Live: LiveConfig{
			TickInterval: time.Minute,
			Workers:      4,
			CallTimeout:  10 * time.Second,
		},
		Store: StoreConfig{
			Capacity: 10000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  ":9100",
			Path:    "/metrics",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "archive",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Data.Provider {
	case "yahoo":
	case "csv":
		if c.Data.CSVDir == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data.csv_dir required when provider is csv"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unsupported data provider %q", c.Data.Provider))
	}

	if c.Broker.Provider != "paper" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unsupported broker provider %q", c.Broker.Provider))
	}

	switch c.Archive.Type {
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive.path required for localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive.s3.bucket required for s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unsupported archive type %q", c.Archive.Type))
	}

	if c.Live.TickInterval < time.Second {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("live.tick_interval must be at least 1s, got %v", c.Live.TickInterval))
	}

	for name, p := range c.Predictors {
		if p.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("predictor %q needs a model path", name))
		}
		if p.SequenceLength <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("predictor %q needs a positive sequence_length", name))
		}
	}

	for i := range c.Strategies {
		s := &c.Strategies[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if s.UsesPredictor() {
			if _, ok := c.Predictors[s.Predictor]; !ok {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("strategy %q references unknown predictor %q", s.Name, s.Predictor))
			}
		}
	}

	return nil
}
