// Package config loads server configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig configures the listening surface and pacing.
type ServerConfig struct {
	WebSocket     WebSocketConfig `mapstructure:"websocket"`
	MaxSessions   int             `mapstructure:"max_sessions"`
	AIMoveDelay   time.Duration   `mapstructure:"ai_move_delay"`
	StatsInterval time.Duration   `mapstructure:"stats_interval"`
}

// WebSocketConfig configures the websocket gateway.
type WebSocketConfig struct {
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the optional match-result store.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// GameConfig configures match setup.
type GameConfig struct {
	InitialHandSize int `mapstructure:"initial_hand_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.ai_move_delay", 800*time.Millisecond)
	v.SetDefault("server.stats_interval", time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("game.initial_hand_size", 3)
}

// Load reads configuration from path. A missing file is not an error;
// defaults and TRISTANO_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRISTANO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// A missing file falls back to defaults; anything else
			// (unreadable, malformed YAML) is fatal.
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Game.InitialHandSize < 0 {
		return nil, fmt.Errorf("game.initial_hand_size must not be negative")
	}
	if cfg.Server.AIMoveDelay <= 0 {
		return nil, fmt.Errorf("server.ai_move_delay must be positive")
	}

	return &cfg, nil
}
