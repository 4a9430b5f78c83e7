package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pders01/reel/fixtures"
	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/feed"
	"github.com/pders01/reel/internal/media"
	"github.com/pders01/reel/internal/plugins"
	"github.com/pders01/reel/internal/plugins/user"
	"github.com/pders01/reel/internal/search"
	"github.com/pders01/reel/internal/storage"
)

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}
	if flags.fixtures != "" {
		dir, err := filepath.Abs(flags.fixtures)
		if err != nil {
			return nil, fmt.Errorf("resolving fixtures dir: %w", err)
		}
		cfg.Source.Kind = config.SourceFixture
		cfg.Source.FixturesDir = dir
	}
	if flags.source != "" {
		cfg.Source.Kind = flags.source
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.headless {
		cfg.Media.Headless = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	return debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
}

// openSearch prefers the persistent bleve index and falls back to the
// in-memory engine when it cannot be opened.
func openSearch(cfg *config.Config) (search.Searcher, io.Closer) {
	engine, err := search.NewBleveEngine(cfg.Database.SearchIndex)
	if err == nil {
		return engine, engine
	}
	debuglog.Warnf("opening search index %s: %v; using in-memory search", cfg.Database.SearchIndex, err)
	return search.NewEngine(), closerFunc(func() error { return nil })
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func buildSource(cfg *config.Config, store *storage.Store) (feed.Source, error) {
	fallback := feed.NewFixtureSource(fixtures.FS, cfg.Source.PageSize, cfg.Source.Loop)
	return feed.NewSource(cfg, fallback, store)
}

// buildLauncher wires the URI resolvers into a media launcher. Without an
// installed player it switches to headless playback and says so on w.
func buildLauncher(cfg *config.Config, w io.Writer) (*media.Launcher, error) {
	resolvers := plugins.NewRegistry(cfg.Source.HTTPTimeout)
	user.RegisterAll(resolvers)

	launcher, err := media.NewLauncher(cfg, resolvers)
	if err != nil {
		return nil, fmt.Errorf("creating media launcher: %w", err)
	}
	if cfg.Media.Headless || launcher.Player() != "" {
		return launcher, nil
	}

	fmt.Fprintf(w, "warning: %v; playback state is tracked without a player\n", media.ErrNoPlayer)
	headless := *cfg
	headless.Media.Headless = true
	return media.NewLauncher(&headless, resolvers)
}

func handleFactory(l *media.Launcher) feed.HandleFactory {
	return func(uri string) (feed.Handle, error) {
		h, err := l.NewHandle(uri)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reel", "config.toml")
}

func isNotFound(err error) bool {
	return errors.Is(err, feed.ErrNotFound) || errors.Is(err, storage.ErrNotFound)
}
