// Package pandoratest provides an in-process fake of the Pandora tuner and
// web APIs for tests.
//
// The fake speaks the real wire formats: partner login returns a sync blob
// encrypted with the partner's decrypt key, and user login bodies are
// decrypted with the partner's encrypt key. Every request is recorded.
package pandoratest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

// Defaults used by New.
const (
	DefaultUsername     = "u@example.com"
	DefaultPassword     = "secret"
	DefaultUserToken    = "abc123"
	DefaultPartnerID    = "42"
	DefaultPartnerToken = "VAP-partner-token"
	DefaultCSRF         = "XYZ"
	DefaultSyncTime     = 1700000000
)

// syncHeader prefixes the sync blob, as the real service does.
var syncHeader = []byte{0xa1, 0xb2, 0xc3, 0xd4}

// Call is a request received by the fake.
type Call struct {
	Method      string // HTTP method
	Path        string
	TunerMethod string // "method" query parameter of tuner calls
	Query       url.Values
	Header      http.Header
	Body        []byte
}

// UserLogin is a decrypted auth.userLogin payload.
type UserLogin struct {
	LoginType        string `json:"loginType"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	PartnerAuthToken string `json:"partnerAuthToken"`
	SyncTime         int64  `json:"syncTime"`
}

// Server is a fake Pandora.
type Server struct {
	srv      *httptest.Server
	partners *pandora.Registry

	mu           sync.Mutex
	calls        []Call
	licensed     bool
	healthy      bool
	syncTime     time.Time
	users        map[string]string
	userToken    string
	partnerID    string
	partnerToken string
	csrf         string
	responses    map[string]string
	partner      *pandora.Partner // partner of the last successful partner login
	lastLogin    *UserLogin
}

// New starts a fake with one user (DefaultUsername/DefaultPassword), the
// default partner registry, and canned responses for every REST endpoint
// the client wraps. Callers must Close it.
func New() *Server {
	s := &Server{
		partners:     pandora.DefaultRegistry(),
		licensed:     true,
		healthy:      true,
		syncTime:     time.Unix(DefaultSyncTime, 0),
		users:        map[string]string{DefaultUsername: DefaultPassword},
		userToken:    DefaultUserToken,
		partnerID:    DefaultPartnerID,
		partnerToken: DefaultPartnerToken,
		csrf:         DefaultCSRF,
		responses:    defaultResponses(),
	}
	s.srv = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.record)

	r.Get("/services/json/", s.handleTuner)
	r.Post("/services/json/", s.handleTuner)

	r.Head("/", s.handleCSRF)
	r.Get("/radio-health", s.handleHealth)
	r.Get("/web-version/{version}/sailthru.json", s.handleSailthru)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/*", s.handleREST)
		r.Post("/community/sso", s.handleSSO)
	})

	return r
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.srv.Close()
}

// URL returns the web origin of the fake.
func (s *Server) URL() string {
	return s.srv.URL
}

// TunerURL returns the tuner endpoint of the fake.
func (s *Server) TunerURL() string {
	return s.srv.URL + "/services/json/"
}

// Config returns a client config pointed at the fake, with the default
// user's credentials.
func (s *Server) Config() pandora.Config {
	return pandora.Config{
		Username:   DefaultUsername,
		Password:   DefaultPassword,
		HTTPClient: s.srv.Client(),
		TunerURL:   s.TunerURL(),
		BaseURL:    s.URL(),
		UserAgent:  "pandoratest",
	}
}

// SetLicensed sets the isAllowed answer of the licensing check.
func (s *Server) SetLicensed(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.licensed = ok
}

// SetHealthy sets whether /radio-health reports OK.
func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = ok
}

// SetSyncTime sets the server time sent in the partner login sync blob.
func (s *Server) SetSyncTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncTime = t
}

// AddUser registers a user.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// SetUserToken sets the user auth token issued by user login.
func (s *Server) SetUserToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userToken = token
}

// SetCSRF sets the csrftoken cookie value. Empty omits the cookie.
func (s *Server) SetCSRF(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csrf = token
}

// SetResponse sets the JSON body returned for a REST path.
func (s *Server) SetResponse(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = body
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of requests received so far.
func (s *Server) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// TunerMethods returns the tuner methods called, in order.
func (s *Server) TunerMethods() []string {
	var out []string
	for _, c := range s.Calls() {
		if c.TunerMethod != "" {
			out = append(out, c.TunerMethod)
		}
	}
	return out
}

// LastUserLogin returns the decrypted payload of the last accepted user
// login, or nil.
func (s *Server) LastUserLogin() *UserLogin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLogin
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:      r.Method,
			Path:        r.URL.Path,
			TunerMethod: r.URL.Query().Get("method"),
			Query:       r.URL.Query(),
			Header:      r.Header.Clone(),
			Body:        body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleTuner(w http.ResponseWriter, r *http.Request) {
	switch method := r.URL.Query().Get("method"); method {
	case "test.checkLicensing":
		s.mu.Lock()
		licensed := s.licensed
		s.mu.Unlock()
		writeOK(w, map[string]any{"isAllowed": licensed})
	case "auth.partnerLogin":
		s.handlePartnerLogin(w, r)
	case "auth.userLogin":
		s.handleUserLogin(w, r)
	default:
		writeFail(w, pandora.ErrCodeInternal, "unknown method "+method)
	}
}

func (s *Server) handlePartnerLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		DeviceModel string `json:"deviceModel"`
		Version     string `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, pandora.ErrCodeInternal, "malformed partner login")
		return
	}

	p, ok := s.findPartner(req.Username, req.Password, req.DeviceModel)
	if !ok {
		writeFail(w, pandora.ErrCodeInvalidLogin, "Invalid partner login")
		return
	}

	// The server encrypts with what the client calls the decrypt key.
	codec, err := pandora.NewCodec(p.DecryptKey, p.EncryptKey)
	if err != nil {
		writeFail(w, pandora.ErrCodeInternal, err.Error())
		return
	}

	s.mu.Lock()
	blob := append(append([]byte{}, syncHeader...), strconv.FormatInt(s.syncTime.Unix(), 10)...)
	s.partner = &p
	id, token := s.partnerID, s.partnerToken
	s.mu.Unlock()

	writeOK(w, map[string]any{
		"partnerId":        id,
		"partnerAuthToken": token,
		"syncTime":         codec.Encode(blob),
		"stationSkipLimit": 6,
		"stationSkipUnit":  "hour",
	})
}

func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	partner := s.partner
	id, token := s.partnerID, s.partnerToken
	s.mu.Unlock()

	q := r.URL.Query()
	if partner == nil || q.Get("auth_token") != token || q.Get("partner_id") != id {
		writeFail(w, pandora.ErrCodeInvalidAuthToken, "Invalid Auth Token")
		return
	}

	body, _ := io.ReadAll(r.Body)
	codec, err := pandora.NewCodec(partner.DecryptKey, partner.EncryptKey)
	if err != nil {
		writeFail(w, pandora.ErrCodeInternal, err.Error())
		return
	}
	plain, err := codec.Decode(strings.TrimSpace(string(body)))
	if err != nil {
		writeFail(w, pandora.ErrCodeInternal, "undecryptable request")
		return
	}

	var login UserLogin
	if err := json.Unmarshal(plain, &login); err != nil {
		writeFail(w, pandora.ErrCodeInternal, "undecryptable request")
		return
	}
	if login.PartnerAuthToken != token {
		writeFail(w, pandora.ErrCodeInvalidAuthToken, "Invalid Auth Token")
		return
	}

	s.mu.Lock()
	want, known := s.users[login.Username]
	userToken := s.userToken
	s.mu.Unlock()

	if login.LoginType != "user" || !known || want != login.Password {
		writeFail(w, pandora.ErrCodeInvalidLogin, "Invalid username and/or password")
		return
	}

	s.mu.Lock()
	s.lastLogin = &login
	s.mu.Unlock()

	writeOK(w, map[string]any{
		"username":           login.Username,
		"userId":             "1000001",
		"userAuthToken":      userToken,
		"canListen":          true,
		"maxStationsAllowed": 100,
	})
}

func (s *Server) findPartner(username, password, deviceModel string) (pandora.Partner, bool) {
	for _, name := range s.partners.Names() {
		p, err := s.partners.Lookup(name)
		if err != nil {
			continue
		}
		if p.Username == username && p.Password == password && p.DeviceModel == deviceModel {
			return p, true
		}
	}
	return pandora.Partner{}, false
}

func (s *Server) handleCSRF(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	csrf := s.csrf
	s.mu.Unlock()

	if csrf != "" {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: csrf, Path: "/"})
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	healthy := s.healthy
	s.mu.Unlock()

	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("DOWN"))
		return
	}
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleSailthru(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": chi.URLParam(r, "version")})
}

// requireAuth checks the headers and cookie the web API expects on every
// REST call.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		csrf, token := s.csrf, s.userToken
		s.mu.Unlock()

		cookie, err := r.Cookie("csrftoken")
		if r.Header.Get("X-CsrfToken") != csrf || err != nil || cookie.Value != csrf {
			writeJSON(w, http.StatusForbidden, map[string]any{"errorCode": 0, "message": "CSRF validation failed"})
			return
		}
		if r.Header.Get("X-AuthToken") != token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"errorCode": pandora.ErrCodeInvalidAuthToken, "message": "Auth Invalid"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleREST(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errorCode": 0, "message": "no such endpoint"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleSSO(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	token := s.userToken
	s.mu.Unlock()

	if r.URL.Query().Get("auth_token") != token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"errorCode": pandora.ErrCodeInvalidAuthToken, "message": "Auth Invalid"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "community_session", Value: "sso-" + token, Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func writeOK(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{"stat": "ok", "result": result})
}

func writeFail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, http.StatusOK, map[string]any{"stat": "fail", "code": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
