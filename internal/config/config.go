// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the client needs to join and render a game.
type Config struct {
	// ServerURL is the base URL of the game server, without a trailing slash.
	ServerURL string `env:"HITSTER_SERVER_URL" envDefault:"https://hitster.app"`
	// GameID selects the game to join.
	GameID string `env:"HITSTER_GAME_ID"`
	// SessionToken is the bearer token identifying the local player.
	SessionToken string `env:"HITSTER_SESSION_TOKEN"`
	// Locale picks the notification and speech language, BCP 47.
	Locale string `env:"HITSTER_LOCALE" envDefault:"en"`
	// EffectsVolume scales sound cues; 0 disables them entirely.
	EffectsVolume float64 `env:"HITSTER_EFFECTS_VOLUME" envDefault:"1.0"`
	// AnnounceInterval is the pacing between queued announcements.
	AnnounceInterval time.Duration `env:"HITSTER_ANNOUNCE_INTERVAL" envDefault:"150ms"`
	LogLevel         string        `env:"HITSTER_LOG_LEVEL" envDefault:"info"`
}

// Load reads a .env file if present, then parses the environment.
func Load() (Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GameID == "" {
		return fmt.Errorf("HITSTER_GAME_ID must be set")
	}
	if c.EffectsVolume < 0 || c.EffectsVolume > 1 {
		return fmt.Errorf("HITSTER_EFFECTS_VOLUME must be within [0, 1], got %v", c.EffectsVolume)
	}
	if c.AnnounceInterval <= 0 {
		return fmt.Errorf("HITSTER_ANNOUNCE_INTERVAL must be positive, got %v", c.AnnounceInterval)
	}
	return nil
}
