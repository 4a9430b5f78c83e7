package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Source: SourceConfig{
			Kind:         SourceFixture,
			HTTPTimeout:  5 * time.Second,
			FetchTimeout: 5 * time.Second,
			UserAgent:    "reel-test/1.0",
			Permissive:   true,
		},
		Playback: PlaybackConfig{
			SettleInterval: 10 * time.Millisecond,
			AutoplayDelay:  10 * time.Millisecond,
		},
		UI: defaultConfig().UI,
		Media: MediaConfig{
			Headless: true,
		},
		Keys: defaultConfig().Keys,
		Log:  LogConfig{Level: "off"},
	}
}
