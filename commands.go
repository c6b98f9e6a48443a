package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nstehr/corridor/agent"
	"github.com/nstehr/corridor/config"
	"github.com/nstehr/corridor/journal"
)

var (
	configPath  string
	logLevel    string
	journalPath string
	maxTurns    int
	socketPath  string
	metricsAddr string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "corridor",
		Short: "Plans beacon networks toward contested resource cells",
		Long: `corridor reads a cell graph and per-turn unit counts, commits to
resource targets it can hold and answers every turn with beacon placements.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play one match over stdin/stdout using the referee text protocol",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve sessions over a unix socket and expose /metrics",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to corridor.yaml")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&journalPath, "journal", "", "SQLite decision journal path")

	playCmd.Flags().IntVar(&maxTurns, "max-turns", 0, "turns to play before exiting")

	serveCmd.Flags().StringVar(&socketPath, "socket", "", "unix socket path")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for /metrics, empty disables it")

	rootCmd.AddCommand(playCmd, serveCmd)
}

// loadConfig reads the config file, applies flag overrides and installs the
// default logger. Logs go to stderr because stdout carries directives.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("journal") {
		c.Journal = journalPath
	}
	if flags.Changed("max-turns") {
		c.MaxTurns = maxTurns
	}
	if flags.Changed("socket") {
		c.Socket = socketPath
	}
	if flags.Changed("metrics-addr") {
		c.MetricsAddr = metricsAddr
	}
	if err := c.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(c.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	cfg = c
	return nil
}

// openRecorder returns a nil Recorder when no journal is configured.
func openRecorder(path string) (agent.Recorder, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("journal opened", "path", path)
	return j, func() {
		if err := j.Close(); err != nil {
			slog.Warn("failed to close journal", "error", err)
		}
	}, nil
}
