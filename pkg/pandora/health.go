package pandora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// CheckHealth probes the radio health page. It is advisory only: Request
// does not depend on it.
//
// If the page does not report OK, the client is marked unhealthy and
// ErrUnhealthy is returned. A later successful probe marks it healthy again.
// Transport errors leave the flag unchanged.
func (c *Client) CheckHealth(ctx context.Context) (string, error) {
	body, status, err := c.get(ctx, c.endpoint("/radio-health").String())
	if err != nil {
		return "", err
	}

	if status != http.StatusOK || !strings.Contains(strings.ToLower(body), "ok") {
		c.healthy.Store(false)
		return body, &Error{Op: "radio-health", Kind: ErrUnhealthy, Message: fmt.Sprintf("HTTP %d: %s", status, truncate(body, 64))}
	}

	if !c.healthy.Load() {
		c.logDebugf("pandora: radio health recovered")
	}
	c.healthy.Store(true)
	return body, nil
}

// Sailthru fetches the sailthru.json document of the given web client
// version. It needs no authentication and is mostly useful as a cheap
// reachability probe.
func (c *Client) Sailthru(ctx context.Context, version string) (*Sailthru, error) {
	if version == "" {
		version = "1.266.0"
	}
	u := c.endpoint("/web-version/" + version + "/sailthru.json")
	u.RawQuery = "v=" + strconv.FormatInt(c.now().UnixMilli(), 10)

	op := "sailthru"
	body, status, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &Error{Op: op, Kind: ErrAPI, Message: fmt.Sprintf("HTTP %d", status)}
	}

	var s Sailthru
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, &Error{Op: op, Kind: ErrProtocol, Message: "malformed response", Err: err}
	}
	if err := s.validate(); err != nil {
		return nil, &Error{Op: op, Kind: ErrProtocol, Message: err.Error()}
	}
	return &s, nil
}

// get issues an unauthenticated GET and returns the body as text.
func (c *Client) get(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("http request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}
	return string(data), resp.StatusCode, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
