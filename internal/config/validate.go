package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/podium/config.toml"
		}
		return fmt.Errorf("server.base_url is required. Edit %s (create with 'podium config init')", defaultPath)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.Speed <= 0 || c.Player.Speed > 4 {
		return errors.New("player.speed must be between 0 and 4")
	}
	if c.Player.SectionDelay < 0 {
		return errors.New("player.section_delay must not be negative")
	}
	if c.Player.PrefetchAhead < 0 {
		return errors.New("player.prefetch_ahead must not be negative")
	}
	if c.Player.TTSEnabled && c.Player.AudioPlayer == "" {
		return errors.New("player.audio_player must be set when TTS is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
