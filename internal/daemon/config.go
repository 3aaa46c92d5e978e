// Package daemon manages the HealthSync daemon lifecycle and
// configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/healthsync-app/healthsync/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig          `toml:"api"`
	Store     StoreConfig        `toml:"store"`
	Engine    EngineConfig       `toml:"engine"`
	Rewards   domain.RewardTable `toml:"rewards"`
	Telemetry TelemetryConfig    `toml:"telemetry"`
	Logging   LoggingConfig      `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StoreConfig controls the SQLite store.
type StoreConfig struct {
	Dir string `toml:"dir"`
}

// EngineConfig controls the streak and scoring engines.
type EngineConfig struct {
	RolloverCron string `toml:"rollover_cron"` // daily rollover schedule
	Timezone     string `toml:"timezone"`      // IANA name, "" = local
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := healthsyncHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8090,
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Dir: homeDir,
		},
		Engine: EngineConfig{
			RolloverCron: "5 0 * * *", // 00:05 every day
		},
		Rewards: domain.DefaultRewards(),
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "healthsync.log"),
		},
	}
}

// LoadConfig reads config from ~/.healthsync/config.toml, falling back
// to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(healthsyncHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.healthsync/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(healthsyncHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// healthsyncHome returns the HealthSync data directory.
func healthsyncHome() string {
	if env := os.Getenv("HEALTHSYNC_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".healthsync")
}

// Home is exported for use by other packages.
func Home() string {
	return healthsyncHome()
}
