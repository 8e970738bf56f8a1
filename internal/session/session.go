// Package session builds a logged-in Pandora client from application
// configuration.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/internal/config"
	"github.com/jfmyers9/tuner/internal/logging"
	"github.com/jfmyers9/tuner/pkg/pandora"
)

// Options override endpoints and transport. Zero values use the defaults.
type Options struct {
	TunerURL   string
	BaseURL    string
	HTTPClient *http.Client
}

// Session wraps the Pandora client
type Session struct {
	client *pandora.Client
	logger zerolog.Logger
}

// New creates a client from configuration without contacting the service
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*Session, error) {
	partners := pandora.DefaultRegistry()
	if cfg.Pandora.PartnersFile != "" {
		r, err := pandora.LoadRegistryFile(cfg.Pandora.PartnersFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load partners: %w", err)
		}
		partners = r
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := time.Duration(cfg.Pandora.Timeout) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	client, err := pandora.NewClient(pandora.Config{
		Username:   cfg.Pandora.Username,
		Password:   cfg.Pandora.Password,
		Partner:    cfg.Pandora.Partner,
		Partners:   partners,
		HTTPClient: httpClient,
		TunerURL:   opts.TunerURL,
		BaseURL:    opts.BaseURL,
		Logger:     logging.NewSDKLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pandora client: %w", err)
	}

	return &Session{
		client: client,
		logger: logger.With().Str("component", "session").Logger(),
	}, nil
}

// Open creates a session and logs in
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Session, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("Pandora credentials not configured. Run 'tuner login' or set TUNER_PANDORA_USERNAME and TUNER_PANDORA_PASSWORD")
	}

	s, err := New(cfg, logger, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Login(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Login runs the login sequence and acquires a CSRF token
func (s *Session) Login(ctx context.Context) error {
	start := time.Now()
	if err := s.client.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	user := s.client.Auth().User()
	s.logger.Info().
		Str("user", user.Username).
		Str("partner_id", s.client.Auth().PartnerID()).
		Dur("clock_offset", s.client.Auth().ClockOffset()).
		Dur("elapsed", time.Since(start)).
		Msg("Logged in")
	return nil
}

// Relogin discards the auth and CSRF tokens and logs in again
func (s *Session) Relogin(ctx context.Context) error {
	s.client.Auth().Reset()
	s.client.ResetCSRF()
	s.logger.Info().Msg("Session expired, logging in again")
	return s.Login(ctx)
}

// Expired reports whether err means the user token is no longer accepted
func Expired(err error) bool {
	if errors.Is(err, pandora.ErrNotAuthenticated) {
		return true
	}
	var perr *pandora.Error
	return errors.As(err, &perr) && perr.Code == pandora.ErrCodeInvalidAuthToken
}

// Client returns the underlying Pandora client
func (s *Session) Client() *pandora.Client {
	return s.client
}

// IsAuthenticated checks if the session holds a user token
func (s *Session) IsAuthenticated() bool {
	return s.client.Auth().Authenticated()
}

// Catalog holds the playlists and stations fetched in one pass
type Catalog struct {
	FetchedAt  time.Time
	ListenerID int64
	Playlists  []pandora.Playlist
	Stations   []pandora.Station
}

// FetchCatalog retrieves the user's playlists and stations
func (s *Session) FetchCatalog(ctx context.Context) (*Catalog, error) {
	playlists, err := s.client.Collections().SortedPlaylists(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	stations, err := s.client.Stations().List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	s.logger.Debug().
		Int("playlists", len(playlists.Items)).
		Int("stations", len(stations.Stations)).
		Msg("Fetched catalog")

	return &Catalog{
		FetchedAt:  time.Now(),
		ListenerID: playlists.ListenerID,
		Playlists:  playlists.Items,
		Stations:   stations.Stations,
	}, nil
}
