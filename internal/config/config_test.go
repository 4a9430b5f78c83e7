package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}

	if cfg.Source.Kind != SourceFixture {
		t.Errorf("Source.Kind = %s, want %s", cfg.Source.Kind, SourceFixture)
	}
	if cfg.Source.HTTPTimeout != 30*time.Second {
		t.Errorf("Source.HTTPTimeout = %v, want 30s", cfg.Source.HTTPTimeout)
	}
	if cfg.Source.UserAgent == "" {
		t.Error("Source.UserAgent should not be empty")
	}
	if !cfg.Source.Loop {
		t.Error("Source.Loop should default to true")
	}

	if cfg.Playback.SettleInterval != 250*time.Millisecond {
		t.Errorf("Playback.SettleInterval = %v, want 250ms", cfg.Playback.SettleInterval)
	}
	if cfg.Playback.AutoplayDelay != 1*time.Second {
		t.Errorf("Playback.AutoplayDelay = %v, want 1s", cfg.Playback.AutoplayDelay)
	}
	if cfg.Playback.PrefetchDistance != 0 || cfg.Playback.MaxItems != 0 {
		t.Errorf("Playback window = (%d, %d), want (0, 0)", cfg.Playback.PrefetchDistance, cfg.Playback.MaxItems)
	}

	if cfg.UI.Card.CommentsShown != 4 {
		t.Errorf("UI.Card.CommentsShown = %d, want 4", cfg.UI.Card.CommentsShown)
	}

	if len(cfg.Media.Linux.Video) == 0 {
		t.Error("Media.Linux.Video should not be empty")
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.Quit != "q" {
		t.Errorf("Keys.Bindings.Quit = %s, want 'q'", cfg.Keys.Bindings.Quit)
	}

	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want 'off'", cfg.Log.Level)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Playback.SettleInterval != 250*time.Millisecond {
		t.Errorf("Playback.SettleInterval = %v, want 250ms", cfg.Playback.SettleInterval)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[database]
path = "/tmp/test.db"
timeout = "10s"

[source]
kind = "http"
base_url = "https://videos.reel.dev/api"
http_timeout = "60s"
user_agent = "test-agent"

[playback]
settle_interval = "400ms"
prefetch_distance = 2

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.Source.Kind != SourceHTTP {
		t.Errorf("Source.Kind = %s, want 'http'", cfg.Source.Kind)
	}
	if cfg.Source.BaseURL != "https://videos.reel.dev/api" {
		t.Errorf("Source.BaseURL = %s", cfg.Source.BaseURL)
	}
	if cfg.Source.HTTPTimeout != 60*time.Second {
		t.Errorf("Source.HTTPTimeout = %v, want 60s", cfg.Source.HTTPTimeout)
	}
	if cfg.Source.UserAgent != "test-agent" {
		t.Errorf("Source.UserAgent = %s, want 'test-agent'", cfg.Source.UserAgent)
	}
	if cfg.Playback.SettleInterval != 400*time.Millisecond {
		t.Errorf("Playback.SettleInterval = %v, want 400ms", cfg.Playback.SettleInterval)
	}
	if cfg.Playback.PrefetchDistance != 2 {
		t.Errorf("Playback.PrefetchDistance = %d, want 2", cfg.Playback.PrefetchDistance)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_RejectsInvalidSource(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.toml")
	content := `
[source]
kind = "carrier-pigeon"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() should reject an unknown source kind")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "http without base url", mutate: func(c *Config) { c.Source.Kind = SourceHTTP }, wantErr: true},
		{name: "rss without feeds", mutate: func(c *Config) { c.Source.Kind = SourceRSS }, wantErr: true},
		{name: "rss with feeds", mutate: func(c *Config) {
			c.Source.Kind = SourceRSS
			c.Source.RSSFeeds = []string{"https://videos.reel.dev/feed.xml"}
		}, wantErr: false},
		{name: "negative page size", mutate: func(c *Config) { c.Source.PageSize = -1 }, wantErr: true},
		{name: "window smaller than prefetch", mutate: func(c *Config) {
			c.Playback.PrefetchDistance = 3
			c.Playback.MaxItems = 4
		}, wantErr: true},
		{name: "window larger than prefetch", mutate: func(c *Config) {
			c.Playback.PrefetchDistance = 3
			c.Playback.MaxItems = 20
		}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		Database: DatabaseConfig{
			Path:    "/test/path.db",
			Timeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Kind:         SourceFixture,
			HTTPTimeout:  45 * time.Second,
			FetchTimeout: 50 * time.Second,
			UserAgent:    "test-save-agent",
			PageSize:     3,
		},
		Playback: PlaybackConfig{
			SettleInterval: 300 * time.Millisecond,
			AutoplayDelay:  2 * time.Second,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary: "#00FF00",
			},
		},
		Keys: KeyConfig{
			Modifier: "alt",
			Bindings: KeyBindings{
				Quit: "x",
			},
		},
	}

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Source.UserAgent != cfg.Source.UserAgent {
		t.Errorf("Loaded Source.UserAgent = %s, want %s", loaded.Source.UserAgent, cfg.Source.UserAgent)
	}
	if loaded.Source.PageSize != 3 {
		t.Errorf("Loaded Source.PageSize = %d, want 3", loaded.Source.PageSize)
	}
	if loaded.Playback.SettleInterval != cfg.Playback.SettleInterval {
		t.Errorf("Loaded Playback.SettleInterval = %v, want %v", loaded.Playback.SettleInterval, cfg.Playback.SettleInterval)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Source.Kind != SourceFixture {
		t.Errorf("Generated config has Source.Kind = %s, want %s", cfg.Source.Kind, SourceFixture)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandPath("~/videos"); got != filepath.Join(home, "videos") {
		t.Errorf("expandPath(~/videos) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q, want empty", got)
	}
	if got := expandPath("relative/dir"); !filepath.IsAbs(got) {
		t.Errorf("expandPath(relative/dir) = %s, want absolute", got)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.Source.UserAgent != "reel-test/1.0" {
		t.Errorf("TestConfig Source.UserAgent = %s, want 'reel-test/1.0'", cfg.Source.UserAgent)
	}
	if !cfg.Media.Headless {
		t.Error("TestConfig should use headless media")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("TestConfig should validate: %v", err)
	}
}
