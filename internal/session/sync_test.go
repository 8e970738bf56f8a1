package session

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/internal/catalog"
	"github.com/jfmyers9/tuner/internal/pandoratest"
)

func TestSync(t *testing.T) {
	fake := pandoratest.New()
	defer fake.Close()

	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(), zerolog.Nop(), fakeOptions(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := s.Sync(ctx, store, 2)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if !first.First {
		t.Error("expected first sync to be marked first")
	}
	if len(first.Diff.AddedPlaylists) != 2 || len(first.Diff.AddedStations) != 2 {
		t.Errorf("expected everything added on first sync, got %+v", first.Diff)
	}

	second, err := s.Sync(ctx, store, 2)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if second.First || !second.Diff.Empty() {
		t.Errorf("expected unchanged second sync, got %+v", second)
	}

	fake.SetResponse(pandoratest.PathStations, `{"totalStations":0,"stations":[]}`)
	third, err := s.Sync(ctx, store, 2)
	if err != nil {
		t.Fatalf("third sync failed: %v", err)
	}
	if len(third.Diff.RemovedStations) != 2 {
		t.Errorf("expected 2 removed stations, got %+v", third.Diff.RemovedStations)
	}
	if third.Pruned != 1 {
		t.Errorf("expected 1 pruned snapshot, got %d", third.Pruned)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 snapshots kept, got %d", count)
	}
}
