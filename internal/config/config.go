package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration, loaded from environment
// variables.
type Config struct {
	// ListenAddr is the HTTP host's bind address.
	ListenAddr string `env:"COSMIC_TALES_ADDR" envDefault:":8080"`
	// SaveDir is where player profiles are persisted.
	SaveDir string `env:"COSMIC_TALES_SAVE_DIR" envDefault:".saves"`
	// DefaultStory is the module preselected in the TUI menu.
	DefaultStory string `env:"COSMIC_TALES_STORY" envDefault:"glitch-city"`
	// Profile is the player profile name used by the TUI.
	Profile string `env:"COSMIC_TALES_PROFILE" envDefault:"player"`
	// SessionTTLMinutes is how long the HTTP host keeps an idle run alive.
	SessionTTLMinutes int `env:"COSMIC_TALES_SESSION_TTL" envDefault:"60"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
