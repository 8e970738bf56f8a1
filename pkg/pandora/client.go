package pandora

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corpix/uarand"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultTunerURL is the tuner JSON API endpoint used for login.
	DefaultTunerURL = "https://tuner.pandora.com/services/json/"

	// DefaultBaseURL is the web origin hosting the REST API.
	DefaultBaseURL = "https://www.pandora.com"
)

// Config holds client configuration.
type Config struct {
	Username   string       // Optional: user email, may also be passed to Login
	Password   string       // Optional: user password, may also be passed to Login
	Partner    string       // Optional: partner profile name (defaults to "android")
	Partners   *Registry    // Optional: partner profiles (defaults to DefaultRegistry)
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	TunerURL   string       // Optional: tuner endpoint (defaults to Pandora, used for testing)
	BaseURL    string       // Optional: web origin (defaults to Pandora, used for testing)
	UserAgent  string       // Optional: user agent (defaults to a random browser agent)
	Logger     Logger       // Optional: Logger interface for debug logging

	// Now returns the local time. Defaults to time.Now; tests substitute a
	// fake clock to simulate skew and latency.
	Now func() time.Time
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the session facade: it owns the login state machine, the CSRF
// token, the cookie jar and the per-instance identity, and issues every
// authenticated request.
type Client struct {
	httpClient *http.Client
	tunerURL   string
	baseURL    *url.URL
	partners   *Registry
	partner    string
	logger     Logger
	now        func() time.Time

	userAgent string
	clientID  string
	jar       *cookiejar.Jar
	healthy   atomic.Bool

	csrfMu sync.Mutex
	csrf   string

	auth        *AuthService
	collections *CollectionsService
	stations    *StationsService
	account     *AccountService
}

// NewClient creates a new client. It performs no network calls.
func NewClient(cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	tunerURL := cfg.TunerURL
	if tunerURL == "" {
		tunerURL = DefaultTunerURL
	}

	rawBase := cfg.BaseURL
	if rawBase == "" {
		rawBase = DefaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(rawBase, "/"))
	if err != nil {
		return nil, fmt.Errorf("pandora: invalid BaseURL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("pandora: invalid BaseURL %q", rawBase)
	}

	partners := cfg.Partners
	if partners == nil {
		partners = DefaultRegistry()
	}

	partner := cfg.Partner
	if partner == "" {
		partner = DefaultPartner
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = uarand.GetRandom()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("pandora: create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: httpClient,
		tunerURL:   tunerURL,
		baseURL:    baseURL,
		partners:   partners,
		partner:    partner,
		logger:     cfg.Logger,
		now:        now,
		userAgent:  userAgent,
		clientID:   uuid.NewString(),
		jar:        jar,
	}
	c.healthy.Store(true)

	c.auth = &AuthService{client: c, username: cfg.Username, password: cfg.Password}
	c.collections = &CollectionsService{client: c}
	c.stations = &StationsService{client: c}
	c.account = &AccountService{client: c}

	return c, nil
}

// Initialize creates a client and brings it to a ready state: logged in and
// holding a CSRF token.
func Initialize(ctx context.Context, cfg Config) (*Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize logs in if the session is not authenticated and acquires a CSRF
// token if none is cached. Preconditions that are already satisfied are not
// repeated.
func (c *Client) Initialize(ctx context.Context) error {
	if err := c.auth.ensureLogin(ctx); err != nil {
		return err
	}
	if c.CSRFToken() == "" {
		if _, err := c.AcquireCSRF(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Auth returns the login state machine.
func (c *Client) Auth() *AuthService {
	return c.auth
}

// Collections returns the collections service.
func (c *Client) Collections() *CollectionsService {
	return c.collections
}

// Stations returns the stations service.
func (c *Client) Stations() *StationsService {
	return c.stations
}

// Account returns the account service.
func (c *Client) Account() *AccountService {
	return c.account
}

// UserAgent returns the user agent sent with web requests.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// ClientID returns the random id generated for this client instance.
func (c *Client) ClientID() string {
	return c.clientID
}

// Cookies returns the cookies the jar would send to the web origin.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// Healthy reports the result of the most recent health probe. It is true
// until a probe fails.
func (c *Client) Healthy() bool {
	return c.healthy.Load()
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
