package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Service holds all configuration for the calculator server and CLI.
type Service struct {
	// Network
	HTTPAddr string `yaml:"http_addr" env:"DMGCALC_HTTP_ADDR"`
	GRPCAddr string `yaml:"grpc_addr" env:"DMGCALC_GRPC_ADDR"` // empty disables gRPC

	// Profiles
	ProfileDir    string        `yaml:"profile_dir" env:"DMGCALC_PROFILE_DIR"`
	WatchInterval time.Duration `yaml:"watch_interval" env:"DMGCALC_WATCH_INTERVAL"` // 0 disables hot reload

	HistoryPath string `yaml:"history_path" env:"DMGCALC_HISTORY_PATH"`
	LogLevel    string `yaml:"log_level" env:"DMGCALC_LOG_LEVEL"`

	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// OptimizerConfig holds allocation search defaults.
type OptimizerConfig struct {
	Workers     int     `yaml:"workers" env:"DMGCALC_OPTIMIZER_WORKERS"` // 0 means GOMAXPROCS
	TotalPoints int     `yaml:"total_points"`
	Step        int     `yaml:"step"`
	MinCrit     float64 `yaml:"min_crit"` // percent
}

// SimulationConfig holds Monte Carlo defaults.
type SimulationConfig struct {
	Hits      int `yaml:"hits"`
	Trials    int `yaml:"trials"`
	// upper bounds accepted from requests; 0 disables the check
	MaxTrials int `yaml:"max_trials"`
	MaxHits   int `yaml:"max_hits"`
}

// DefaultService returns Service config with sensible defaults.
func DefaultService() Service {
	return Service{
		HTTPAddr:      ":8080",
		GRPCAddr:      ":9090",
		ProfileDir:    "profiles",
		WatchInterval: 2 * time.Second,
		HistoryPath:   "damage_history.json",
		LogLevel:      "info",
		Optimizer: OptimizerConfig{
			TotalPoints: 20000,
			Step:        10,
			MinCrit:     50,
		},
		Simulation: SimulationConfig{
			Hits:      10,
			Trials:    10000,
			MaxTrials: 1000000,
			MaxHits:   10000,
		},
	}
}

// LoadService loads config from a YAML file, then applies DMGCALC_* environment
// overrides. If the file doesn't exist, defaults are used.
func LoadService(path string) (Service, error) {
	cfg := DefaultService()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables. Unset variables
// leave the target untouched.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseLogLevel maps debug|info|warn|error to a slog level; anything else is info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Path returns the config file path: flag value, else DMGCALC_CONFIG, else def.
func Path(flagValue, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("DMGCALC_CONFIG"); p != "" {
		return p
	}
	return def
}
