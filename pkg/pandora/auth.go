package pandora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// AuthState is a step of the login sequence.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateLicenseChecked
	StatePartnerAuthenticated
	StateUserAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLicenseChecked:
		return "license-checked"
	case StatePartnerAuthenticated:
		return "partner-authenticated"
	case StateUserAuthenticated:
		return "user-authenticated"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// AuthService runs the login sequence against the tuner API:
//
//  1. CheckLicensing confirms the service is available in this region
//  2. PartnerLogin authenticates a device profile and syncs the clock
//  3. UserLogin exchanges the user's credentials for an auth token
//
// Login runs all three. Each step can also be called on its own.
//
// Steps are serialized: a second caller blocks until the first finishes.
// A failed step leaves everything captured by earlier steps untouched.
type AuthService struct {
	client *Client

	mu       sync.Mutex   // serializes handshake steps
	stateMu  sync.RWMutex // guards the fields below for readers
	state    AuthState
	username string
	password string

	partner     *PartnerAuth
	codec       *Codec
	clockOffset time.Duration
	synced      bool

	user  *UserAuth
	token string
}

// partnerLoginRequest is the plaintext body of auth.partnerLogin.
type partnerLoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DeviceModel string `json:"deviceModel"`
	Version     string `json:"version"`
}

// userLoginRequest is the encrypted body of auth.userLogin.
type userLoginRequest struct {
	LoginType        string `json:"loginType"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	PartnerAuthToken string `json:"partnerAuthToken"`
	SyncTime         int64  `json:"syncTime"`
}

// SetCredentials sets the username and password used by UserLogin.
func (a *AuthService) SetCredentials(username, password string) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.username = username
	a.password = password
}

// CheckLicensing asks the tuner API whether the service is available from
// the caller's location.
//
// Returns ErrProtocol if the server does not answer ok, and
// ErrServiceUnavailable if it reports the region as not allowed.
func (a *AuthService) CheckLicensing(ctx context.Context) (*Licensing, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.checkLicensing(ctx)
}

func (a *AuthService) checkLicensing(ctx context.Context) (*Licensing, error) {
	const op = "test.checkLicensing"

	env, err := a.client.callTuner(ctx, tunerRequest{method: op})
	if err != nil {
		return nil, err
	}
	if env.Stat != statOK {
		return nil, env.failure(op, ErrProtocol)
	}

	var lic Licensing
	if err := env.decodeResult(op, ErrProtocol, &lic); err != nil {
		return nil, err
	}
	if !lic.IsAllowed {
		return nil, &Error{Op: op, Kind: ErrServiceUnavailable, Message: "licensing check reported region not allowed"}
	}

	a.advance(StateLicenseChecked)
	return &lic, nil
}

// PartnerLogin authenticates the named device profile.
//
// On success it captures the partner token and id, keys the codec with the
// profile's key pair, and computes the clock offset from the sync blob of
// this response: local time on receipt minus the decrypted server time.
//
// Returns ErrInvalidPartner for an unknown profile (no network call) and
// ErrPartnerLogin if the server rejects the login or the sync blob is
// unusable.
func (a *AuthService) PartnerLogin(ctx context.Context, profile string) (*PartnerAuth, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.partnerLogin(ctx, profile)
}

func (a *AuthService) partnerLogin(ctx context.Context, profile string) (*PartnerAuth, error) {
	const op = "auth.partnerLogin"

	p, err := a.client.partners.Lookup(profile)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(partnerLoginRequest{
		Username:    p.Username,
		Password:    p.Password,
		DeviceModel: p.DeviceModel,
		Version:     p.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("pandora: encode partner login: %w", err)
	}

	env, err := a.client.callTuner(ctx, tunerRequest{
		method:      op,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	received := a.client.now()

	if env.Stat != statOK {
		return nil, env.failure(op, ErrPartnerLogin)
	}

	var partner PartnerAuth
	if err := env.decodeResult(op, ErrPartnerLogin, &partner); err != nil {
		return nil, err
	}
	if partner.PartnerAuthToken == "" || partner.PartnerID == "" {
		return nil, &Error{Op: op, Kind: ErrPartnerLogin, Message: "response missing partner token or id"}
	}

	codec, err := NewCodec(p.EncryptKey, p.DecryptKey)
	if err != nil {
		return nil, newError(op, ErrPartnerLogin, err)
	}
	plain, err := codec.Decode(partner.SyncTime)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrPartnerLogin, Message: "undecodable sync time", Err: err}
	}
	serverTime, err := ParseSyncTime(plain, p.SyncHeader)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrPartnerLogin, Message: "invalid sync time", Err: err}
	}

	offset := received.Sub(serverTime)
	a.client.logDebugf("pandora: partner %s authenticated, clock offset %s", p.Name, offset)

	a.stateMu.Lock()
	a.partner = &partner
	a.codec = codec
	a.clockOffset = offset
	a.synced = true
	a.stateMu.Unlock()

	a.advance(StatePartnerAuthenticated)
	return &partner, nil
}

// UserLogin exchanges the stored credentials for a user auth token.
//
// The payload carries the partner token and the estimated server time
// (local time minus the clock offset) and is sent Blowfish-encrypted as an
// opaque hex body.
//
// Returns ErrSequence if no partner login has completed and
// ErrMissingCredentials if the username or password is empty; neither
// touches the network. Returns ErrUserLogin if the server rejects the login.
func (a *AuthService) UserLogin(ctx context.Context) (*UserAuth, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userLogin(ctx)
}

func (a *AuthService) userLogin(ctx context.Context) (*UserAuth, error) {
	const op = "auth.userLogin"

	a.stateMu.RLock()
	partner, codec, offset, synced := a.partner, a.codec, a.clockOffset, a.synced
	username, password := a.username, a.password
	a.stateMu.RUnlock()

	if partner == nil || codec == nil || !synced {
		return nil, &Error{Op: op, Kind: ErrSequence, Message: "partner login must complete before user login"}
	}
	if username == "" || password == "" {
		return nil, &Error{Op: op, Kind: ErrMissingCredentials}
	}

	plain, err := json.Marshal(userLoginRequest{
		LoginType:        "user",
		Username:         username,
		Password:         password,
		PartnerAuthToken: partner.PartnerAuthToken,
		SyncTime:         a.client.now().Add(-offset).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("pandora: encode user login: %w", err)
	}

	env, err := a.client.callTuner(ctx, tunerRequest{
		method: op,
		query: url.Values{
			"auth_token": {partner.PartnerAuthToken},
			"partner_id": {partner.PartnerID},
		},
		body:        []byte(codec.Encode(plain)),
		contentType: "text/plain",
	})
	if err != nil {
		return nil, err
	}
	if env.Stat != statOK {
		return nil, env.failure(op, ErrUserLogin)
	}

	var user UserAuth
	if err := env.decodeResult(op, ErrUserLogin, &user); err != nil {
		return nil, err
	}
	if user.UserAuthToken == "" {
		return nil, &Error{Op: op, Kind: ErrUserLogin, Message: "response missing user auth token"}
	}

	a.client.logDebugf("pandora: user %s authenticated", user.Username)

	a.stateMu.Lock()
	a.user = &user
	a.token = user.UserAuthToken
	a.stateMu.Unlock()

	a.advance(StateUserAuthenticated)
	return &user, nil
}

// Login runs the full login sequence with the client's configured partner
// profile. Non-empty arguments replace the stored credentials first.
//
// It stops at the first failing step and returns its error.
func (a *AuthService) Login(ctx context.Context, username, password string) (*UserAuth, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stateMu.Lock()
	if username != "" {
		a.username = username
	}
	if password != "" {
		a.password = password
	}
	a.stateMu.Unlock()

	return a.login(ctx)
}

// ensureLogin runs the login sequence unless a user token is already held.
// The check happens under the handshake lock, so callers racing on a fresh
// client share a single handshake.
func (a *AuthService) ensureLogin(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Token() != "" {
		return nil
	}
	_, err := a.login(ctx)
	return err
}

// login runs licensing, partner login and user login. a.mu must be held.
func (a *AuthService) login(ctx context.Context) (*UserAuth, error) {
	if _, err := a.checkLicensing(ctx); err != nil {
		return nil, err
	}
	if _, err := a.partnerLogin(ctx, a.client.partner); err != nil {
		return nil, err
	}
	return a.userLogin(ctx)
}

// Reset discards every token captured by the login sequence and returns
// to StateUnauthenticated. Credentials are kept.
func (a *AuthService) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.state = StateUnauthenticated
	a.partner = nil
	a.codec = nil
	a.clockOffset = 0
	a.synced = false
	a.user = nil
	a.token = ""
}

// State returns the furthest step completed.
func (a *AuthService) State() AuthState {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.state
}

// Authenticated reports whether a user auth token is held.
func (a *AuthService) Authenticated() bool {
	return a.Token() != ""
}

// Token returns the user auth token, or "" before UserLogin succeeds.
func (a *AuthService) Token() string {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.token
}

// User returns the user login result, or nil before UserLogin succeeds.
func (a *AuthService) User() *UserAuth {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.user
}

// PartnerID returns the partner id, or "" before PartnerLogin succeeds.
func (a *AuthService) PartnerID() string {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	if a.partner == nil {
		return ""
	}
	return a.partner.PartnerID
}

// ClockOffset returns local time minus server time as measured by the last
// partner login.
func (a *AuthService) ClockOffset() time.Duration {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.clockOffset
}

// ServerTime returns the current server time estimated from the clock
// offset.
func (a *AuthService) ServerTime() time.Time {
	return a.client.now().Add(-a.ClockOffset())
}

// advance moves the state forward to s. It never moves backward.
func (a *AuthService) advance(s AuthState) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if s > a.state {
		a.state = s
	}
}
