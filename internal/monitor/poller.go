package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

// HealthChecker probes service liveness. *pandora.Client satisfies it.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (string, error)
}

// Update represents the result of one health probe
type Update struct {
	Healthy bool      // Service reported OK
	Err     error     // Probe error (nil when healthy)
	At      time.Time // When the probe completed
}

// Unreachable reports whether the probe failed before the service answered
func (u Update) Unreachable() bool {
	return u.Err != nil && !errors.Is(u.Err, pandora.ErrUnhealthy)
}

// Poller polls the health page at regular intervals
type Poller struct {
	checker  HealthChecker
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPoller creates a new Poller instance
func NewPoller(checker HealthChecker, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		checker:  checker,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
		now:      time.Now,
	}
}

// Run starts the polling loop and sends updates to the provided channel.
// Blocks until context is cancelled.
func (p *Poller) Run(ctx context.Context, updates chan<- Update) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Starting poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll(ctx, updates)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx, updates)
		}
	}
}

func (p *Poller) poll(ctx context.Context, updates chan<- Update) {
	_, err := p.checker.CheckHealth(ctx)
	if ctx.Err() != nil {
		return
	}

	update := Update{Healthy: err == nil, Err: err, At: p.now()}
	if err != nil {
		p.logger.Debug().Err(err).Msg("Health probe failed")
	} else {
		p.logger.Debug().Msg("Health probe ok")
	}

	select {
	case updates <- update:
	case <-ctx.Done():
	}
}
