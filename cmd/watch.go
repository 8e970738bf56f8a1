package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/internal/monitor"
	"github.com/jfmyers9/tuner/internal/session"
)

var (
	watchInterval time.Duration
	watchSync     time.Duration
	watchKeep     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor Pandora health and keep the catalog in sync",
	Long: `Run in the foreground, probing the radio health page on an interval and
logging every change between healthy and unhealthy.

With --sync, the catalog is also snapshotted on that interval. Expired
sessions are logged in again automatically.

The last known status is kept in monitor.json under the data directory.
Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Health poll interval (default from config)")
	watchCmd.Flags().DurationVar(&watchSync, "sync", 0, "Catalog sync interval (0 disables)")
	watchCmd.Flags().IntVar(&watchKeep, "keep", 30, "Number of snapshots to retain when syncing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	// Transitions are the point of this command
	if !cmd.Flags().Changed("log-level") {
		logger = logger.Level(zerolog.InfoLevel)
	}

	interval := watchInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Monitor.Interval) * time.Second
	}

	monitorCfg := monitor.Config{
		PollInterval: interval,
		StateFile:    filepath.Join(cfg.DataDir, "monitor.json"),
	}

	var (
		s       *session.Session
		syncFn  monitor.SyncFunc
		relogin monitor.ReloginFunc
	)
	if watchSync > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		s, err = session.Open(ctx, cfg, logger, session.Options{})
		cancel()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		monitorCfg.SyncInterval = watchSync
		syncFn = func(ctx context.Context) (*session.SyncResult, error) {
			return s.Sync(ctx, store, watchKeep)
		}
		relogin = s.Relogin
	} else {
		s, err = session.New(cfg, logger, session.Options{})
		if err != nil {
			return err
		}
	}

	m, err := monitor.New(monitorCfg, s.Client(), syncFn, relogin, logger)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	return m.Run()
}
