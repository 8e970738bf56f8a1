package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jfmyers9/tuner/internal/catalog"
	"github.com/jfmyers9/tuner/internal/monitor"
	"github.com/jfmyers9/tuner/pkg/pandora"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{95 * time.Second, "01:35"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%s): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestHealthText(t *testing.T) {
	tests := []struct {
		name   string
		update *monitor.Update
		want   string
	}{
		{"unknown", nil, "unknown"},
		{"healthy", &monitor.Update{Healthy: true, At: time.Now()}, "healthy"},
		{"unhealthy", &monitor.Update{Err: &pandora.Error{Kind: pandora.ErrUnhealthy}}, "unhealthy"},
		{"unreachable", &monitor.Update{Err: errors.New("connection refused")}, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := healthText(tt.update); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	p := pandora.Playlist{PandoraID: "PL:1", Name: "Morning [live]", TotalTracks: 12, IsPrivate: true}
	got := playlistDetail(p)
	for _, want := range []string{"Tracks:   12", "Private:  yes", "PL:1", "Added:    -"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in playlist detail:\n%s", want, got)
		}
	}

	st := pandora.Station{StationID: "4002", Name: "Thumbprint Radio", IsThumbprint: true, IsShuffle: true}
	got = stationDetail(st)
	if !strings.Contains(got, "Flags:    thumbprint, shuffle") {
		t.Errorf("expected flags in station detail:\n%s", got)
	}
}

func TestHeaderText(t *testing.T) {
	if got := headerText(nil, nil); !strings.Contains(got, "No snapshots") {
		t.Errorf("unexpected empty header: %q", got)
	}
	if got := headerText(nil, errors.New("disk gone")); !strings.Contains(got, "disk gone") {
		t.Errorf("unexpected error header: %q", got)
	}
	info := &catalog.SnapshotInfo{ID: "0123456789abcdef", TakenAt: time.Now(), PlaylistCount: 2, StationCount: 3}
	if got := headerText(info, nil); !strings.Contains(got, "01234567") || !strings.Contains(got, "2 playlists") {
		t.Errorf("unexpected header: %q", got)
	}
}

func TestLoad(t *testing.T) {
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	a := New(store)

	if err := a.Load(ctx); err != nil {
		t.Fatalf("empty store should load: %v", err)
	}
	if a.info != nil || len(a.playlists) != 0 {
		t.Error("expected empty catalog")
	}

	_, err = store.SaveSnapshot(ctx, &catalog.Snapshot{
		TakenAt:   time.Now(),
		Playlists: []pandora.Playlist{{PandoraID: "PL:1", Name: "Morning"}},
		Stations:  []pandora.Station{{StationID: "1", Name: "Jazz"}, {StationID: "2", Name: "Rock"}},
	})
	if err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}

	if err := a.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.info == nil || len(a.playlists) != 1 || len(a.stations) != 2 {
		t.Errorf("unexpected catalog: info=%+v playlists=%d stations=%d", a.info, len(a.playlists), len(a.stations))
	}

	a.setView(ViewStations)
	if got := a.table.GetRowCount(); got != 3 {
		t.Errorf("expected header plus 2 station rows, got %d", got)
	}
	a.switchView()
	if got := a.table.GetRowCount(); got != 2 {
		t.Errorf("expected header plus 1 playlist row, got %d", got)
	}
}
