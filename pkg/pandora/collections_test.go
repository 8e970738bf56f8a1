package pandora

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const playlistsFixture = `{
  "view": "PL",
  "listenerId": 9,
  "listenerPandoraId": "LI:9",
  "totalCount": 2,
  "limit": 1000,
  "sortOrder": "MOST_RECENT_MODIFIED",
  "items": [
    {"pandoraId": "PL:9:1", "pandoraType": "PL", "linkedType": "TR", "addedTime": 1700000000000, "updatedTime": 1700000001500},
    {"pandoraId": "PL:9:2", "pandoraType": "PL", "linkedType": "TR", "addedTime": 0, "updatedTime": 0}
  ],
  "annotations": {
    "PL:9:1": {"pandoraId": "PL:9:1", "type": "PL", "name": "Morning", "totalTracks": 3, "duration": 600, "timeCreated": 1690000000000, "timeLastUpdated": 1700000001500, "listenerId": 9},
    "PL:9:2": {"pandoraId": "PL:9:2", "type": "PL", "name": "Empty", "isPrivate": true},
    "LI:9": {"pandoraId": "LI:9", "type": "LI", "listenerId": 9, "webname": "me", "fullname": "Me Myself"},
    "LI:8": {"pandoraId": "LI:8", "type": "LI", "listenerId": 8, "webname": "friend"},
    "TR:1": {"pandoraId": "TR:1", "type": "TR", "name": "Song"}
  }
}`

func decodePlaylists(t *testing.T, doc string) *RawPlaylists {
	t.Helper()
	var raw RawPlaylists
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	if err := raw.validate(); err != nil {
		t.Fatalf("fixture failed validation: %v", err)
	}
	return &raw
}

func TestParsePlaylists(t *testing.T) {
	got, err := parsePlaylists(decodePlaylists(t, playlistsFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ListenerID != 9 || got.TotalCount != 2 || got.SortOrder != "MOST_RECENT_MODIFIED" {
		t.Errorf("unexpected header fields: %+v", got)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(got.Items))
	}

	first := got.Items[0]
	if first.Name != "Morning" || first.TotalTracks != 3 {
		t.Errorf("unexpected first playlist: %+v", first)
	}
	if first.Duration != 10*time.Minute {
		t.Errorf("expected duration 10m, got %s", first.Duration)
	}
	if !first.AddedTime.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected added time 1700000000, got %s", first.AddedTime)
	}
	if !first.UpdatedTime.Equal(time.UnixMilli(1700000001500)) {
		t.Errorf("expected millisecond precision, got %s", first.UpdatedTime)
	}
	if !first.TimeCreated.Equal(time.Unix(1690000000, 0)) {
		t.Errorf("expected time created 1690000000, got %s", first.TimeCreated)
	}

	second := got.Items[1]
	if !second.AddedTime.IsZero() {
		t.Errorf("expected zero added time, got %s", second.AddedTime)
	}
	if !second.IsPrivate {
		t.Error("expected private playlist")
	}

	if len(got.Listeners) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(got.Listeners))
	}
	if got.Listeners[0].PandoraID != "LI:8" || got.Listeners[1].Webname != "me" {
		t.Errorf("unexpected listeners: %+v", got.Listeners)
	}
}

func TestParsePlaylists_MissingAnnotation(t *testing.T) {
	raw := decodePlaylists(t, playlistsFixture)
	delete(raw.Annotations, "PL:9:2")

	_, err := parsePlaylists(raw)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
}

func TestRawPlaylists_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "complete", doc: `{"items":[],"annotations":{}}`},
		{name: "no items", doc: `{"annotations":{}}`, wantErr: true},
		{name: "no annotations", doc: `{"items":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw RawPlaylists
			if err := json.Unmarshal([]byte(tt.doc), &raw); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if err := raw.validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
