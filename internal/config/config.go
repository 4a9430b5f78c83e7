package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Playback PlaybackConfig `mapstructure:"playback"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

// Source kinds understood by the CLI.
const (
	SourceFixture = "fixture"
	SourceHTTP    = "http"
	SourceRSS     = "rss"
)

type SourceConfig struct {
	Kind        string `mapstructure:"kind"`
	FixturesDir string `mapstructure:"fixtures_dir"`
	BaseURL     string `mapstructure:"base_url"`
	// RSSFeeds lists RSS/Atom feeds whose video enclosures become feed items.
	RSSFeeds     []string      `mapstructure:"rss_feeds"`
	PageSize     int           `mapstructure:"page_size"`
	Loop         bool          `mapstructure:"loop"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	Permissive   bool          `mapstructure:"permissive"`
	Cache        bool          `mapstructure:"cache"`
}

type PlaybackConfig struct {
	SettleInterval time.Duration `mapstructure:"settle_interval"`
	AutoplayDelay  time.Duration `mapstructure:"autoplay_delay"`
	// PrefetchDistance widens the tail window that triggers pagination.
	// Zero means only the last index triggers a fetch.
	PrefetchDistance int `mapstructure:"prefetch_distance"`
	// MaxItems bounds the feed; older items are evicted once exceeded.
	// Zero keeps every item.
	MaxItems int `mapstructure:"max_items"`
}

type UIConfig struct {
	Colors UIColors   `mapstructure:"colors"`
	Card   CardConfig `mapstructure:"card"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type CardConfig struct {
	CommentsShown        int `mapstructure:"comments_shown"`
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
}

type MediaConfig struct {
	Darwin  MediaPlayers `mapstructure:"darwin"`
	Linux   MediaPlayers `mapstructure:"linux"`
	Windows MediaPlayers `mapstructure:"windows"`
	// Headless keeps playback state in memory without spawning a player.
	Headless bool `mapstructure:"headless"`
}

type MediaPlayers struct {
	Video []string `mapstructure:"video"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Next      string `mapstructure:"next"`
	Previous  string `mapstructure:"previous"`
	PlayPause string `mapstructure:"play_pause"`
	Search    string `mapstructure:"search"`
	Reload    string `mapstructure:"reload"`
	Back      string `mapstructure:"back"`
	Help      string `mapstructure:"help"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".reel", "reel.db")
	searchIndexPath := filepath.Join(homeDir, ".reel", "index.bleve")

	return &Config{
		Database: DatabaseConfig{
			Path:        dbPath,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		Source: SourceConfig{
			Kind:         SourceFixture,
			PageSize:     0,
			Loop:         true,
			HTTPTimeout:  30 * time.Second,
			FetchTimeout: 45 * time.Second,
			UserAgent:    "reel/1.0 (https://github.com/pders01/reel)",
			Cache:        true,
		},
		Playback: PlaybackConfig{
			SettleInterval:   250 * time.Millisecond,
			AutoplayDelay:    1 * time.Second,
			PrefetchDistance: 0,
			MaxItems:         0,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF0080",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Card: CardConfig{
				CommentsShown:        4,
				MaxDescriptionLength: 280,
				WordWrapMaxWidth:     100,
			},
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Video: []string{"iina", "mpv", "vlc"},
			},
			Linux: MediaPlayers{
				Video: []string{"mpv", "vlc", "mplayer"},
			},
			Windows: MediaPlayers{
				Video: []string{"mpv", "vlc"},
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "q",
				Next:      "j",
				Previous:  "k",
				PlayPause: " ",
				Search:    "/",
				Reload:    "r",
				Back:      "esc",
				Help:      "?",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".reel", "reel.log"),
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("source", cfg.Source)
	v.SetDefault("playback", cfg.Playback)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "reel")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("REEL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	expandPaths(&config)

	return &config, nil
}

// Validate rejects settings the coordinator cannot run with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceFixture, SourceHTTP, SourceRSS:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Source.Kind == SourceHTTP && c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required for the http source")
	}
	if c.Source.Kind == SourceRSS && len(c.Source.RSSFeeds) == 0 {
		return fmt.Errorf("source.rss_feeds is required for the rss source")
	}
	if c.Source.PageSize < 0 {
		return fmt.Errorf("source.page_size must not be negative")
	}
	if c.Playback.PrefetchDistance < 0 || c.Playback.MaxItems < 0 {
		return fmt.Errorf("playback window settings must not be negative")
	}
	if c.Playback.MaxItems > 0 && c.Playback.MaxItems <= c.Playback.PrefetchDistance+1 {
		return fmt.Errorf("playback.max_items must exceed prefetch_distance+1")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Source.FixturesDir = expandPath(cfg.Source.FixturesDir)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations are written as strings so the TOML stays readable
	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	sourceCfg := map[string]interface{}{
		"kind":          config.Source.Kind,
		"fixtures_dir":  config.Source.FixturesDir,
		"base_url":      config.Source.BaseURL,
		"rss_feeds":     config.Source.RSSFeeds,
		"page_size":     config.Source.PageSize,
		"loop":          config.Source.Loop,
		"http_timeout":  config.Source.HTTPTimeout.String(),
		"fetch_timeout": config.Source.FetchTimeout.String(),
		"user_agent":    config.Source.UserAgent,
		"permissive":    config.Source.Permissive,
		"cache":         config.Source.Cache,
	}

	playbackCfg := map[string]interface{}{
		"settle_interval":   config.Playback.SettleInterval.String(),
		"autoplay_delay":    config.Playback.AutoplayDelay.String(),
		"prefetch_distance": config.Playback.PrefetchDistance,
		"max_items":         config.Playback.MaxItems,
	}

	v.Set("database", dbCfg)
	v.Set("source", sourceCfg)
	v.Set("playback", playbackCfg)
	v.Set("ui", config.UI)
	v.Set("media", config.Media)
	v.Set("keys", config.Keys)
	v.Set("log", config.Log)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
