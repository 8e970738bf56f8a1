package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/internal/config"
	"github.com/jfmyers9/tuner/internal/pandoratest"
	"github.com/jfmyers9/tuner/pkg/pandora"
)

func testConfig() *config.Config {
	return &config.Config{
		Pandora: config.PandoraConfig{
			Username: pandoratest.DefaultUsername,
			Password: pandoratest.DefaultPassword,
			Partner:  "android",
			Timeout:  5,
		},
	}
}

func fakeOptions(fake *pandoratest.Server) Options {
	return Options{TunerURL: fake.TunerURL(), BaseURL: fake.URL()}
}

func TestOpen(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	s, err := Open(context.Background(), testConfig(), zerolog.Nop(), fakeOptions(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Error("expected session to be authenticated")
	}
	if s.Client().CSRFToken() != pandoratest.DefaultCSRF {
		t.Errorf("expected csrf token, got %q", s.Client().CSRFToken())
	}
}

func TestOpen_MissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Pandora.Password = ""

	_, err := Open(context.Background(), cfg, zerolog.Nop(), Options{})
	if err == nil || !strings.Contains(err.Error(), "credentials not configured") {
		t.Errorf("expected credentials error, got %v", err)
	}
}

func TestOpen_UnknownPartner(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	cfg := testConfig()
	cfg.Pandora.Partner = "blackberry"

	_, err := Open(context.Background(), cfg, zerolog.Nop(), fakeOptions(fake))
	if err == nil || !strings.Contains(err.Error(), "invalid partner") {
		t.Errorf("expected invalid partner error, got %v", err)
	}
}

func TestNew_PartnersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partners.yaml")
	doc := "partners:\n  test:\n    username: u\n    password: p\n    device_model: d\n    encrypt_key: e\n    decrypt_key: k\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cfg := testConfig()
	cfg.Pandora.PartnersFile = path
	cfg.Pandora.Partner = "test"

	if _, err := New(cfg, zerolog.Nop(), Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Pandora.PartnersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg, zerolog.Nop(), Options{}); err == nil {
		t.Error("expected error for missing partners file")
	}
}

func TestFetchCatalog(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(), zerolog.Nop(), fakeOptions(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cat, err := s.FetchCatalog(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.ListenerID != 1000001 {
		t.Errorf("expected listener 1000001, got %d", cat.ListenerID)
	}
	if len(cat.Playlists) != 2 || len(cat.Stations) != 2 {
		t.Errorf("expected 2 playlists and 2 stations, got %d and %d", len(cat.Playlists), len(cat.Stations))
	}
}

func TestFetchCatalog_NotLoggedIn(t *testing.T) {
	s, err := New(testConfig(), zerolog.Nop(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.FetchCatalog(context.Background())
	if !errors.Is(err, pandora.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestRelogin(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(), zerolog.Nop(), fakeOptions(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fake.SetUserToken("rotated")
	_, err = s.FetchCatalog(ctx)
	if !Expired(err) {
		t.Fatalf("expected expired token error, got %v", err)
	}

	if err := s.Relogin(ctx); err != nil {
		t.Fatalf("relogin failed: %v", err)
	}
	if s.Client().Auth().Token() != "rotated" {
		t.Errorf("expected new token, got %q", s.Client().Auth().Token())
	}
	if _, err := s.FetchCatalog(ctx); err != nil {
		t.Errorf("expected fetch to succeed after relogin: %v", err)
	}
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not authenticated", &pandora.Error{Kind: pandora.ErrNotAuthenticated}, true},
		{"invalid token", &pandora.Error{Kind: pandora.ErrAPI, Code: pandora.ErrCodeInvalidAuthToken}, true},
		{"other api error", &pandora.Error{Kind: pandora.ErrAPI, Code: pandora.ErrCodeInternal}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
