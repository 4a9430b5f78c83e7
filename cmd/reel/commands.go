package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/feed"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tui"
)

func runFeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer debuglog.Close()

	tui.ApplyColors(cfg.UI.Colors)
	if !flags.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
	}

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, searchCloser := openSearch(cfg)
	defer searchCloser.Close()

	src, err := buildSource(cfg, store)
	if err != nil {
		return err
	}
	launcher, err := buildLauncher(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	debuglog.WithFields(debuglog.Fields{"source": src.Name(), "player": launcher.Player()}).Infof("starting")

	coord := feed.NewCoordinator(src, handleFactory(launcher), &cfg.Playback, cfg.Source.FetchTimeout,
		feed.WithHistory(store),
		feed.WithIndexer(searcher),
	)
	defer coord.Close()

	app := tui.NewApp(coord, searcher, cfg)
	defer app.Close()

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "reel %s\n", Version)
		fmt.Fprintln(out, "Short-video feed player")
		fmt.Fprintln(out, "github.com/pders01/reel")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the first page of the configured source",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		var store *storage.Store
		if cfg.Source.Cache {
			if store, err = storage.NewStore(cfg.Database.Path, cfg.Database.Timeout); err != nil {
				return err
			}
			defer store.Close()
		}
		src, err := buildSource(cfg, store)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.FetchTimeout)
		defer cancel()
		page, err := src.FetchPage(ctx, "")
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%s has no videos: %w", src.Name(), err)
			}
			return err
		}
		printPage(cmd.OutOrStdout(), page)
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently watched videos",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.RecentWatches(historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached pages",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached pages and comments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ClearCache(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGenerateCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printPage(w io.Writer, page *storage.Page) {
	if len(page.Videos) == 0 {
		fmt.Fprintln(w, "No videos")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "USER", "TOPIC", "LIKES", "DESCRIPTION").
		StyleFunc(cellStyle)
	for _, v := range page.Videos {
		t.Row(strconv.FormatInt(v.ID, 10), "@"+v.Username, v.Topic, strconv.FormatInt(v.Likes, 10), clip(v.Description, 48))
	}
	fmt.Fprintln(w, t.String())
	if page.NextCursor != "" {
		fmt.Fprintf(w, "next cursor: %s\n", page.NextCursor)
	}
}

func printHistory(w io.Writer, entries []*storage.WatchEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Nothing watched yet")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WATCHED", "ID", "USER", "VIDEO").
		StyleFunc(cellStyle)
	for _, e := range entries {
		t.Row(e.StartedAt.Format("Jan 2 15:04"), strconv.FormatInt(e.VideoID, 10), "@"+e.Username, clip(e.Video, 56))
	}
	fmt.Fprintln(w, t.String())
}

func cellStyle(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return lipgloss.NewStyle().Padding(0, 1)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
