package pandora

import (
	"context"
	"fmt"
	"net/http"
)

const csrfCookieName = "csrftoken"

// AcquireCSRF fetches the CSRF token from the web origin's csrftoken cookie
// and caches it for the life of the client.
//
// A HEAD probe does not let the jar see the cookie on its own, so on success
// the jar is seeded with it for the web origin. Once a token is cached,
// later calls return it without a network call; concurrent first calls
// issue a single probe.
func (c *Client) AcquireCSRF(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()

	if c.csrf != "" {
		return c.csrf, nil
	}

	u := c.endpoint("/")
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logDebugf("pandora: HEAD %s for csrf token", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	_ = resp.Body.Close()

	var token string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == csrfCookieName && cookie.Value != "" {
			token = cookie.Value
			break
		}
	}
	if token == "" {
		return "", &Error{Op: "csrf", Kind: ErrCSRFNotFound, Message: fmt.Sprintf("no %s cookie in HEAD %s (HTTP %d)", csrfCookieName, u, resp.StatusCode)}
	}

	c.jar.SetCookies(c.endpoint("/"), []*http.Cookie{{Name: csrfCookieName, Value: token, Path: "/"}})
	c.csrf = token
	return token, nil
}

// CSRFToken returns the cached CSRF token, or "" if none has been acquired.
func (c *Client) CSRFToken() string {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	return c.csrf
}

// ResetCSRF discards the cached CSRF token so the next AcquireCSRF probes
// again.
func (c *Client) ResetCSRF() {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	c.csrf = ""
}
