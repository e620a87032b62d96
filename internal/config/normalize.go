package config

import (
	"fmt"
	"net/url"
	"strings"
)

func (c *Config) normalize() error {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	c.Server.WSURL = strings.TrimSpace(c.Server.WSURL)
	if c.Server.WSURL == "" && c.Server.BaseURL != "" {
		derived, err := deriveWSURL(c.Server.BaseURL)
		if err != nil {
			return err
		}
		c.Server.WSURL = derived
	}

	c.Player.TTSVoice = strings.ToLower(strings.TrimSpace(c.Player.TTSVoice))
	c.Player.AudioPlayer = strings.TrimSpace(c.Player.AudioPlayer)

	for _, field := range []*string{&c.Paths.StateDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

// deriveWSURL maps the REST base URL to the matching WebSocket endpoint.
func deriveWSURL(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server.base_url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("server.base_url has unsupported scheme %q", parsed.Scheme)
	}
	parsed.Path = "/ws/presentation"
	return parsed.String(), nil
}
