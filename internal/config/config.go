package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ViewerConfig holds window viewer settings.
type ViewerConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	TPS    int `mapstructure:"tps"`
}

// Config is the run configuration of a simulation.
type Config struct {
	LogLevel string       `mapstructure:"logLevel"`
	LogFile  string       `mapstructure:"logFile"` // empty logs to stderr only
	Scenario string       `mapstructure:"scenario"`
	TimeStep float64      `mapstructure:"timeStep"`
	Duration float64      `mapstructure:"duration"`
	Seed     uint64       `mapstructure:"seed"` // 0 seeds from the clock
	Viewer   ViewerConfig `mapstructure:"viewer"`
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
	v.SetDefault("scenario", "test.xml")
	v.SetDefault("timeStep", 1.0)
	v.SetDefault("duration", 30.0)
	v.SetDefault("seed", 0)

	v.SetDefault("viewer.width", 1024)
	v.SetDefault("viewer.height", 768)
	v.SetDefault("viewer.tps", 2)
}

// Flags returns the command-line flags understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a config file (json, yaml or toml)")
	fs.String("logLevel", "info", "log level: debug, info, warn, error")
	fs.String("logFile", "", "also append logs to this file")
	fs.StringP("scenario", "s", "test.xml", "scenario file")
	fs.Float64("timeStep", 1.0, "simulation time step")
	fs.Float64("duration", 30.0, "simulated time to run")
	fs.Uint64("seed", 0, "random seed for stochastic sensors, 0 seeds from the clock")
	return fs
}

// Load builds the configuration from defaults, an optional config file,
// MANEUVER_* environment variables and explicitly set flags, in increasing priority.
// fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("MANEUVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("maneuver")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("timeStep must be positive, got %v", c.TimeStep)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %v", c.Duration)
	}
	if c.Scenario == "" {
		return errors.New("scenario path is empty")
	}
	return nil
}
