package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rowbridge/rowbridge/internal/convert"
)

// Config holds all configuration for rowbridge.
type Config struct {
	Log     LogConfig
	Convert ConvertConfig
	Batch   BatchConfig
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

type ConvertConfig struct {
	TruncateTimestamps bool // drop sub-millisecond precision instead of rejecting
	InferMaps          bool // treat key/value structs as maps when reading schemas
}

type BatchConfig struct {
	Workers int // 0 = one per CPU
}

// Options returns the value conversion options this config selects.
func (c ConvertConfig) Options() convert.Options {
	opts := convert.Options{}
	if c.TruncateTimestamps {
		opts.TruncateTimestamps = convert.TruncateSubMillis
	}
	return opts
}

// SchemaOptions returns the schema translation options this config
// selects.
func (c ConvertConfig) SchemaOptions() convert.SchemaOptions {
	return convert.SchemaOptions{InferMaps: c.InferMaps}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("convert.truncate_timestamps", false)
	v.SetDefault("convert.infer_maps", false)
	v.SetDefault("batch.workers", 0)
}

// Load reads configuration from rowbridge.toml (optional) and
// ROWBRIDGE_* environment variables, on top of defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ROWBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rowbridge")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/rowbridge/")
	v.AddConfigPath("$HOME/.rowbridge/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, defaults and env apply.
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Convert: ConvertConfig{
			TruncateTimestamps: v.GetBool("convert.truncate_timestamps"),
			InferMaps:          v.GetBool("convert.infer_maps"),
		},
		Batch: BatchConfig{
			Workers: v.GetInt("batch.workers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config values that have a closed domain.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log.format %q (want json or console)", c.Log.Format)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers)
	}
	return nil
}
