// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"podium/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Server.BaseURL = "http://127.0.0.1:0"
	cfgVal.Server.WSURL = "ws://127.0.0.1:0/ws/presentation"
	cfgVal.Player.TTSEnabled = false
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServerURL points the test config at a live test server.
func WithServerURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.BaseURL = baseURL
	}
}

// WithTTS enables narration with the given voice on the test config.
func WithTTS(voice string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Player.TTSEnabled = true
		b.cfg.Player.TTSVoice = voice
	}
}

// WithSpeed overrides playback speed on the test config.
func WithSpeed(speed float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Player.Speed = speed
	}
}
