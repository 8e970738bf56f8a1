package pandora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// tunerResponse is the envelope every tuner JSON API response uses.
type tunerResponse struct {
	Stat    string          `json:"stat"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Result  json.RawMessage `json:"result"`
}

const (
	statOK   = "ok"
	statFail = "fail"
)

// tunerRequest describes a single tuner API call.
type tunerRequest struct {
	method      string     // Tuner method, e.g. "auth.partnerLogin"
	query       url.Values // Extra query parameters
	body        []byte     // Request body; nil issues a GET
	contentType string
}

// callTuner issues a tuner API call and returns the envelope.
//
// It handles:
// - URL construction with the method and extra query parameters
// - Transport errors, which are wrapped and returned unchanged in kind
// - Envelope decoding
//
// Interpreting stat is left to the caller, which knows which error kind a
// failure maps to.
func (c *Client) callTuner(ctx context.Context, req tunerRequest) (*tunerResponse, error) {
	u, err := url.Parse(c.tunerURL)
	if err != nil {
		return nil, fmt.Errorf("pandora: invalid tuner url: %w", err)
	}
	q := u.Query()
	q.Set("method", req.method)
	for k, vs := range req.query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	httpMethod := http.MethodGet
	var body io.Reader
	if req.body != nil {
		httpMethod = http.MethodPost
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, httpMethod, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.logDebugf("pandora: calling %s", req.method)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env tunerResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &Error{
			Op:      req.method,
			Kind:    ErrProtocol,
			Message: fmt.Sprintf("unexpected response (HTTP %d)", resp.StatusCode),
			Err:     err,
		}
	}
	if env.Stat == "" {
		return nil, &Error{Op: req.method, Kind: ErrProtocol, Message: "response has no stat"}
	}

	c.logDebugf("pandora: %s returned stat=%s", req.method, env.Stat)
	return &env, nil
}

// decodeResult decodes the result of a successful envelope into out.
func (env *tunerResponse) decodeResult(op string, kind error, out any) error {
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return &Error{Op: op, Kind: kind, Message: "response has no result"}
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &Error{Op: op, Kind: kind, Message: "malformed result", Err: err}
	}
	return nil
}

// failure converts a non-ok envelope into an error of the given kind.
func (env *tunerResponse) failure(op string, kind error) error {
	return &Error{Op: op, Kind: kind, Code: env.Code, Message: env.Message}
}

// restFailure is the subset of a REST body that signals failure. The web
// API uses two shapes: {"stat":"fail","message":...} and
// {"errorCode":...,"errorString":...,"message":...}.
type restFailure struct {
	Stat        string `json:"stat"`
	Message     string `json:"message"`
	ErrorCode   *int   `json:"errorCode"`
	ErrorString string `json:"errorString"`
}

// Request issues an authenticated POST to the web REST API and decodes the
// JSON response into out.
//
// path is appended to the web origin. body is JSON encoded (nil sends an
// empty object). headers override the defaults. query is added to the URL.
// out may be nil to discard the response.
//
// Returns ErrNotAuthenticated without touching the network unless both the
// CSRF token and the user auth token are set. A non-2xx status or a failure
// envelope is returned as ErrAPI carrying the server's message.
func (c *Client) Request(ctx context.Context, path string, body any, headers map[string]string, query url.Values, out any) error {
	csrf := c.CSRFToken()
	token := c.auth.Token()
	if csrf == "" || token == "" {
		return &Error{Op: path, Kind: ErrNotAuthenticated, Message: "csrf and auth tokens are required"}
	}

	if body == nil {
		body = struct{}{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("pandora: encode request body: %w", err)
	}

	u := c.endpoint(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-CsrfToken", csrf)
	req.Header.Set("X-AuthToken", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Connection", "keep-alive")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range c.jar.Cookies(u) {
		req.AddCookie(cookie)
	}

	c.logDebugf("pandora: POST %s", u.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.jar.SetCookies(u, cookies)
	}

	var fail restFailure
	decodeErr := json.Unmarshal(data, &fail)
	failed := fail.Stat == statFail || fail.ErrorCode != nil
	if resp.StatusCode < 200 || resp.StatusCode > 299 || failed {
		apiErr := &Error{Op: path, Kind: ErrAPI, Message: fail.Message}
		if fail.ErrorCode != nil {
			apiErr.Code = *fail.ErrorCode
		}
		if apiErr.Message == "" {
			apiErr.Message = fail.ErrorString
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return apiErr
	}

	// An empty body is a valid answer for endpoints that return nothing.
	if decodeErr != nil && len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
		return &Error{Op: path, Kind: ErrProtocol, Message: "malformed response", Err: decodeErr}
	}

	c.logDebugf("pandora: POST %s succeeded", u.Path)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: path, Kind: ErrProtocol, Message: "malformed response", Err: err}
	}
	return nil
}

// restCall issues a Request and validates the decoded response.
func restCall[T any, PT interface {
	*T
	validator
}](ctx context.Context, c *Client, path string, body any) (*T, error) {
	out := PT(new(T))
	if err := c.Request(ctx, path, body, nil, nil, out); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, &Error{Op: path, Kind: ErrProtocol, Message: err.Error()}
	}
	return (*T)(out), nil
}

// endpoint returns the absolute web url for path.
func (c *Client) endpoint(path string) *url.URL {
	u := *c.baseURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	return &u
}
