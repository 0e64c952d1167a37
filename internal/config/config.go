// Package config holds the server settings and the component roster file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"wfquiz/internal/game"
	"wfquiz/pkg/realtime"
)

// Config is the runtime configuration, filled from flags, WFQUIZ_* environment
// variables and an optional .env file.
type Config struct {
	Bind           string
	Port           int
	Prefix         string
	BaseURL        string
	Rounds         int
	Choices        int
	Cooldown       time.Duration
	ImageDir       string
	CatalogFile    string
	SessionTimeout time.Duration
	CORSOrigins    []string
	Verbose        bool
	Version        bool
}

// Default returns the settings used when nothing is overridden.
func Default() Config {
	return Config{
		Bind:           "0.0.0.0",
		Port:           8080,
		Rounds:         game.DefaultRounds,
		Choices:        game.DefaultSlots,
		Cooldown:       realtime.DefaultCooldown,
		ImageDir:       "img/components",
		SessionTimeout: 60 * time.Minute,
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("invalid rounds (must be at least 1): %d", c.Rounds)
	}
	if c.Choices < 1 {
		return fmt.Errorf("invalid choices (must be at least 1): %d", c.Choices)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("invalid cooldown (must not be negative): %s", c.Cooldown)
	}
	if c.SessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.SessionTimeout)
	}
	if strings.TrimSpace(c.ImageDir) == "" {
		return errors.New("--image-dir must not be empty")
	}
	if c.Prefix != "" && !strings.HasPrefix(c.Prefix, "/") {
		return fmt.Errorf("invalid prefix (must start with /): %q", c.Prefix)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// Rules builds the game rules from the settings and the roster file's
// difficulty table. The --choices flag applies to every choices-mode difficulty
// that does not set its own count.
func (c *Config) Rules(f *File) (game.Rules, error) {
	rules := game.DefaultRules()
	rules.Rounds = c.Rounds
	rules.Cooldown = c.Cooldown
	if f != nil && len(f.Difficulties) > 0 {
		table, err := f.controls(c.Choices)
		if err != nil {
			return game.Rules{}, err
		}
		rules.Difficulties = table
	} else {
		for d, ctl := range rules.Difficulties {
			if ctl.Mode == game.ModeChoices {
				ctl.Slots = c.Choices
				rules.Difficulties[d] = ctl
			}
		}
	}
	if err := rules.Validate(); err != nil {
		return game.Rules{}, fmt.Errorf("rules: %w", err)
	}
	return rules, nil
}
