package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/internal/logging"
	"github.com/jfmyers9/tuner/internal/monitor"
	"github.com/jfmyers9/tuner/internal/session"
	"github.com/jfmyers9/tuner/internal/tui"
)

var browseHealth bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the latest catalog snapshot in a terminal UI",
	Long: `Browse the playlists and stations of the latest snapshot taken by
'tuner sync'. Nothing is fetched from Pandora except health probes,
which are shown in the status bar.

Keys:
  tab  switch between playlists and stations
  p/s  show playlists / stations
  r    reload the snapshot
  q    quit`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().BoolVar(&browseHealth, "health", true, "Probe Pandora health while browsing")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI
	logger := zerolog.Nop()
	if logFile != "" {
		logger = logging.New(logFile, logLevel)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.New(store)
	if err := app.Load(ctx); err != nil {
		return err
	}

	var updates chan monitor.Update
	if browseHealth {
		s, err := session.New(cfg, logger, session.Options{})
		if err != nil {
			return err
		}
		interval := time.Duration(cfg.Monitor.Interval) * time.Second
		m, err := monitor.New(monitor.Config{PollInterval: interval}, s.Client(), nil, nil, logger)
		if err != nil {
			return fmt.Errorf("failed to create monitor: %w", err)
		}

		updates = make(chan monitor.Update, 1)
		m.OnUpdate(func(u monitor.Update, _ bool) {
			select {
			case updates <- u:
			default:
			}
		})
		go func() { _ = m.RunContext(ctx) }()
	}

	return app.Run(ctx, updates)
}
