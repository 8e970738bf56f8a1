package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/internal/catalog"
	"github.com/jfmyers9/tuner/internal/config"
	"github.com/jfmyers9/tuner/internal/pandoratest"
	"github.com/jfmyers9/tuner/internal/session"
	"github.com/jfmyers9/tuner/pkg/pandora"
)

type fakeChecker struct {
	mu   sync.Mutex
	errs []error
	n    int
}

func (f *fakeChecker) CheckHealth(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.n < len(f.errs) {
		err = f.errs[f.n]
	}
	f.n++
	return "OK", err
}

func TestPoller_SendsUpdates(t *testing.T) {
	unhealthy := &pandora.Error{Kind: pandora.ErrUnhealthy}
	checker := &fakeChecker{errs: []error{nil, unhealthy}}
	p := NewPoller(checker, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Update)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, updates) }()

	first := <-updates
	if !first.Healthy || first.Err != nil || first.At.IsZero() {
		t.Errorf("unexpected first update: %+v", first)
	}
	second := <-updates
	if second.Healthy || !errors.Is(second.Err, pandora.ErrUnhealthy) {
		t.Errorf("unexpected second update: %+v", second)
	}
	if second.Unreachable() {
		t.Error("an unhealthy answer is not unreachable")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUpdate_Unreachable(t *testing.T) {
	u := Update{Err: errors.New("dial tcp: connection refused")}
	if !u.Unreachable() {
		t.Error("expected transport error to be unreachable")
	}
	if (Update{Healthy: true}).Unreachable() {
		t.Error("healthy update is not unreachable")
	}
}

func TestState_RecordHealth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "monitor.json")
	s, err := NewState(path)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	at := time.Unix(1700000000, 0).UTC()
	steps := []struct {
		update      Update
		wantChanged bool
		wantFails   int
	}{
		{Update{Healthy: true, At: at}, true, 0},
		{Update{Healthy: true, At: at.Add(time.Minute)}, false, 0},
		{Update{Err: errors.New("down"), At: at.Add(2 * time.Minute)}, true, 1},
		{Update{Err: errors.New("still down"), At: at.Add(3 * time.Minute)}, false, 2},
		{Update{Healthy: true, At: at.Add(4 * time.Minute)}, true, 0},
	}
	for i, step := range steps {
		changed, err := s.RecordHealth(step.update)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if changed != step.wantChanged {
			t.Errorf("step %d: expected changed=%v, got %v", i, step.wantChanged, changed)
		}
		if got := s.Get().Failures; got != step.wantFails {
			t.Errorf("step %d: expected %d failures, got %d", i, step.wantFails, got)
		}
	}

	if err := s.RecordSync("snap-1", at.Add(5*time.Minute)); err != nil {
		t.Fatalf("RecordSync: %v", err)
	}

	restored, err := NewState(path)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := restored.Get()
	if !got.Healthy || got.LastSnapshot != "snap-1" || got.LastError != "" {
		t.Errorf("unexpected restored status: %+v", got)
	}
	if !got.LastChange.Equal(at.Add(4 * time.Minute)) {
		t.Errorf("expected last change at recovery, got %s", got.LastChange)
	}
}

func TestNew_InvalidInterval(t *testing.T) {
	if _, err := New(Config{}, &fakeChecker{}, nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for zero poll interval")
	}
}

func sessionConfig() *config.Config {
	return &config.Config{
		Pandora: config.PandoraConfig{
			Username: pandoratest.DefaultUsername,
			Password: pandoratest.DefaultPassword,
			Partner:  "android",
			Timeout:  5,
		},
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMonitor_HealthTransitions(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	client, err := pandora.NewClient(fake.Config())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	m, err := New(Config{PollInterval: 10 * time.Millisecond}, client, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var transitions atomic.Int32
	m.OnUpdate(func(u Update, changed bool) {
		if changed {
			transitions.Add(1)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.RunContext(ctx) }()

	waitFor(t, func() bool { return transitions.Load() == 1 })
	if !m.Status().Healthy {
		t.Error("expected healthy after first probe")
	}

	fake.SetHealthy(false)
	waitFor(t, func() bool { return transitions.Load() == 2 })
	if st := m.Status(); st.Healthy || st.LastError == "" {
		t.Errorf("expected unhealthy status with error, got %+v", st)
	}

	fake.SetHealthy(true)
	waitFor(t, func() bool { return transitions.Load() == 3 })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("RunContext: %v", err)
	}
}

func TestMonitor_SyncsAndRelogins(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := fake.Config()
	sess, err := session.Open(ctx, sessionConfig(), zerolog.Nop(), session.Options{TunerURL: cfg.TunerURL, BaseURL: cfg.BaseURL})
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}

	// The token issued at login is no longer accepted
	fake.SetUserToken("rotated")

	var relogins atomic.Int32
	syncFn := func(ctx context.Context) (*session.SyncResult, error) {
		return sess.Sync(ctx, store, 0)
	}
	relogin := func(ctx context.Context) error {
		relogins.Add(1)
		return sess.Relogin(ctx)
	}

	m, err := New(Config{
		PollInterval: time.Hour,
		SyncInterval: time.Hour,
		StateFile:    filepath.Join(t.TempDir(), "monitor.json"),
	}, sess.Client(), syncFn, relogin, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.RunContext(ctx) }()

	waitFor(t, func() bool { return m.Status().LastSnapshot != "" })
	cancel()
	<-done

	if n := relogins.Load(); n != 1 {
		t.Errorf("expected 1 relogin, got %d", n)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 snapshot, got %d", count)
	}
}
