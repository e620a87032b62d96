package config

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultRequestTimeout = 30
	defaultTTSVoice       = "asteria"
	defaultSpeed          = 1.0
	defaultSectionDelay   = 0.5
	defaultAudioPlayer    = "ffplay"
	defaultStateDir       = "~/.local/share/podium/state"
	defaultLogDir         = "~/.local/share/podium/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Player: Player{
			TTSEnabled:   true,
			TTSVoice:     defaultTTSVoice,
			Speed:        defaultSpeed,
			SectionDelay: defaultSectionDelay,
			AudioPlayer:  defaultAudioPlayer,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
