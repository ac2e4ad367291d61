// Package commands provides CLI commands for sidebuddy.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sidebuddy/sidebuddy/internal/config"
)

var (
	// Global flags
	backendFlag string
	verboseFlag bool
	configFlag  string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sidebuddy",
	Short: "Sidebar assistant: page context, podcasts and sharing",
	Long: `sidebuddy turns the page you are reading into a two-voice podcast.
It reads page content through a context bridge, asks the podcast backend
for a transcript, lets you edit it, then generates the audio.

Examples:
  sidebuddy podcast https://example.com/article
  sidebuddy podcast -f notes.txt --edit
  cat article.txt | sidebuddy transcript -o script.json
  sidebuddy audio script.json
  sidebuddy host --listen 127.0.0.1:8765 https://example.com/article
  sidebuddy podcast --bridge --share
  sidebuddy history list`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "sidebuddy %s (built %s)\n", Version, BuildTime)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Podcast backend base URL (default from config)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (default ~/.sidebuddy/config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	deps := NewDependencies()

	// Add subcommands
	rootCmd.AddCommand(NewPodcastCmd(deps))
	rootCmd.AddCommand(NewTranscriptCmd(deps))
	rootCmd.AddCommand(NewAudioCmd(deps))
	rootCmd.AddCommand(NewHostCmd(deps))
	rootCmd.AddCommand(NewAskCmd(deps))
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and applies the global flags.
// A broken config file is reported and the defaults are used.
func loadConfig(stderr io.Writer) config.Config {
	cfg, err := config.Load(configFlag)
	if err != nil {
		printWarning(stderr, fmt.Sprintf("Using default configuration: %v", err))
		cfg = config.DefaultConfig()
	}

	if backendFlag != "" {
		cfg.BackendURL = strings.TrimSpace(backendFlag)
	}
	if verboseFlag {
		cfg.Verbose = true
	}

	setupLogging(stderr, cfg.Verbose)
	return cfg
}

// setupLogging installs the default slog logger. Only warnings are shown
// unless verbose is on.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// stdinPiped reports whether r carries piped input rather than a terminal
func stdinPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
