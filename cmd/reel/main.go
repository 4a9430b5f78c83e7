package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the version of the application, set at build time
var Version = "dev"

type rootFlags struct {
	configPath string
	dbPath     string
	source     string
	fixtures   string
	logLevel   string
	quiet      bool
	headless   bool
}

var flags rootFlags

var rootCmd = &cobra.Command{
	Use:           "reel",
	Short:         "Scroll a short-video feed in the terminal",
	Long:          "reel plays a vertical feed of short videos one at a time, pausing neighbors and fetching more as you scroll.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFeed,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&flags.dbPath, "db", "", "Path to database file (overrides config)")
	pf.StringVar(&flags.source, "source", "", "Feed source: fixture, http or rss (overrides config)")
	pf.StringVar(&flags.fixtures, "fixtures", "", "Directory holding videos.json and comments.json")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error or off")
	pf.BoolVar(&flags.headless, "headless", false, "Track playback without launching a player")
	rootCmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(versionCmd, configCmd, listCmd, historyCmd, cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
