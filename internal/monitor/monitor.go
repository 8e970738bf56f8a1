// Package monitor watches Pandora liveness and keeps the catalog snapshot
// store current while running in the foreground.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/internal/session"
)

// Config holds monitor configuration
type Config struct {
	PollInterval time.Duration // How often to probe radio health
	SyncInterval time.Duration // How often to sync the catalog (0 disables)
	StateFile    string        // Path to status persistence file
}

// SyncFunc takes one catalog snapshot
type SyncFunc func(ctx context.Context) (*session.SyncResult, error)

// ReloginFunc restores an expired session
type ReloginFunc func(ctx context.Context) error

// Monitor coordinates the health poller and periodic catalog syncs
type Monitor struct {
	config  Config
	poller  *Poller
	state   *State
	sync    SyncFunc
	relogin ReloginFunc
	notify  func(Update, bool)
	logger  zerolog.Logger
}

// New creates a new Monitor instance. sync and relogin may be nil.
func New(cfg Config, checker HealthChecker, sync SyncFunc, relogin ReloginFunc, logger zerolog.Logger) (*Monitor, error) {
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}

	state, err := NewState(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return &Monitor{
		config:  cfg,
		poller:  NewPoller(checker, cfg.PollInterval, logger),
		state:   state,
		sync:    sync,
		relogin: relogin,
		logger:  logger.With().Str("component", "monitor").Logger(),
	}, nil
}

// OnUpdate registers a callback invoked for every probe with whether the
// healthy flag changed
func (m *Monitor) OnUpdate(fn func(u Update, changed bool)) {
	m.notify = fn
}

// Status returns the current status
func (m *Monitor) Status() Status {
	return m.state.Get()
}

// Run starts the monitor and blocks until a shutdown signal is received
func (m *Monitor) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		if _, ok := <-sigChan; !ok {
			return
		}
		m.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if _, ok := <-sigChan; ok {
			m.logger.Warn().Msg("Second shutdown signal received, forcing exit")
			os.Exit(1)
		}
	}()

	return m.RunContext(ctx)
}

// RunContext runs the monitor until ctx is cancelled
func (m *Monitor) RunContext(ctx context.Context) error {
	m.logger.Info().Msg("Starting monitor")

	var wg sync.WaitGroup
	updates := make(chan Update, 10)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.poller.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error().Err(err).Msg("Poller error")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.handleUpdates(ctx, updates)
	}()

	if m.sync != nil && m.config.SyncInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.syncLoop(ctx)
		}()
	}

	wg.Wait()

	m.logger.Info().Msg("Monitor stopped")
	return nil
}

func (m *Monitor) handleUpdates(ctx context.Context, updates <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			m.handleUpdate(u)
		}
	}
}

func (m *Monitor) handleUpdate(u Update) {
	changed, err := m.state.RecordHealth(u)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist status")
	}

	if changed {
		switch {
		case u.Healthy:
			m.logger.Info().Time("at", u.At).Msg("Pandora is healthy")
		case u.Unreachable():
			m.logger.Warn().Err(u.Err).Msg("Pandora is unreachable")
		default:
			m.logger.Warn().Err(u.Err).Msg("Pandora is unhealthy")
		}
	}

	if m.notify != nil {
		m.notify(u, changed)
	}
}

func (m *Monitor) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(m.config.SyncInterval)
	defer ticker.Stop()

	// Sync immediately on start
	m.syncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.syncOnce(ctx)
		}
	}
}

func (m *Monitor) syncOnce(ctx context.Context) {
	result, err := m.sync(ctx)
	if err != nil && session.Expired(err) && m.relogin != nil {
		if lerr := m.relogin(ctx); lerr != nil {
			m.logger.Error().Err(lerr).Msg("Failed to log in again")
			return
		}
		result, err = m.sync(ctx)
	}
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn().Err(err).Msg("Catalog sync failed")
		}
		return
	}

	if err := m.state.RecordSync(result.SnapshotID, time.Now()); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist status")
	}
	if !result.First && !result.Diff.Empty() {
		d := result.Diff
		m.logger.Info().
			Int("playlists_added", len(d.AddedPlaylists)).
			Int("playlists_removed", len(d.RemovedPlaylists)).
			Int("playlists_changed", len(d.ChangedPlaylists)).
			Int("stations_added", len(d.AddedStations)).
			Int("stations_removed", len(d.RemovedStations)).
			Msg("Catalog changed")
	}
}
