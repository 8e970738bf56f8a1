package pandora

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func newCSRFServer(t *testing.T, token string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var probes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD request, got %s", r.Method)
		}
		probes.Add(1)
		if token != "" {
			w.Header().Add("Set-Cookie", "csrftoken="+token+"; Path=/")
		}
		w.Header().Add("Set-Cookie", "v=1; Path=/")
	}))
	t.Cleanup(server.Close)
	return server, &probes
}

func TestClient_AcquireCSRF(t *testing.T) {
	server, probes := newCSRFServer(t, "XYZ")

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		token, err := client.AcquireCSRF(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "XYZ" {
			t.Errorf("expected token XYZ, got %q", token)
		}
	}

	if n := probes.Load(); n != 1 {
		t.Errorf("expected 1 probe, got %d", n)
	}
	if client.CSRFToken() != "XYZ" {
		t.Errorf("expected cached token XYZ, got %q", client.CSRFToken())
	}

	var found bool
	for _, c := range client.Cookies() {
		if c.Name == "csrftoken" {
			found = c.Value == "XYZ"
		}
	}
	if !found {
		t.Errorf("expected jar to hold csrftoken=XYZ, got %v", client.Cookies())
	}
}

func TestClient_AcquireCSRFConcurrent(t *testing.T) {
	server, probes := newCSRFServer(t, "XYZ")

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.AcquireCSRF(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := probes.Load(); n != 1 {
		t.Errorf("expected 1 probe, got %d", n)
	}
}

func TestClient_AcquireCSRFNotFound(t *testing.T) {
	server, _ := newCSRFServer(t, "")

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.AcquireCSRF(context.Background())
	if !errors.Is(err, ErrCSRFNotFound) {
		t.Fatalf("expected ErrCSRFNotFound, got %v", err)
	}
	if client.CSRFToken() != "" {
		t.Error("expected no cached token")
	}
}

func TestClient_ResetCSRF(t *testing.T) {
	server, probes := newCSRFServer(t, "XYZ")

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	ctx := context.Background()

	if _, err := client.AcquireCSRF(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.ResetCSRF()
	if _, err := client.AcquireCSRF(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := probes.Load(); n != 2 {
		t.Errorf("expected 2 probes after reset, got %d", n)
	}
}
