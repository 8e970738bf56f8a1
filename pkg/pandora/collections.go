package pandora

import (
	"context"
	"sort"
	"time"
)

// CollectionsService reads the user's collection.
type CollectionsService struct {
	client *Client
}

// SortedPlaylistsRaw returns the getSortedPlaylists response as sent by the
// server. A nil req sends DefaultPlaylistsRequest.
func (s *CollectionsService) SortedPlaylistsRaw(ctx context.Context, req *PlaylistsRequest) (*RawPlaylists, error) {
	if req == nil {
		req = DefaultPlaylistsRequest()
	}
	return restCall[RawPlaylists](ctx, s.client, "/api/v6/collections/getSortedPlaylists", req)
}

// SortedPlaylists returns the user's playlists, each merged with its
// annotation and with timestamps converted to time.Time. Curator
// annotations are returned as Listeners.
//
// Returns ErrProtocol if a playlist has no annotation.
func (s *CollectionsService) SortedPlaylists(ctx context.Context, req *PlaylistsRequest) (*Playlists, error) {
	raw, err := s.SortedPlaylistsRaw(ctx, req)
	if err != nil {
		return nil, err
	}
	return parsePlaylists(raw)
}

// Items returns every item in the user's collection.
func (s *CollectionsService) Items(ctx context.Context) (*Items, error) {
	return restCall[Items](ctx, s.client, "/api/v6/collections/getItems", nil)
}

func parsePlaylists(raw *RawPlaylists) (*Playlists, error) {
	const op = "/api/v6/collections/getSortedPlaylists"

	out := &Playlists{
		ListenerID:        raw.ListenerID,
		ListenerPandoraID: raw.ListenerPandoraID,
		TotalCount:        raw.TotalCount,
		Offset:            raw.Offset,
		Limit:             raw.Limit,
		SortOrder:         raw.SortOrder,
		Items:             make([]Playlist, 0, len(raw.Items)),
	}

	for _, item := range raw.Items {
		a, ok := raw.Annotations[item.PandoraID]
		if !ok {
			return nil, &Error{Op: op, Kind: ErrProtocol, Message: "no annotation for playlist " + item.PandoraID}
		}
		name := a.Name
		if name == "" {
			name = item.Name
		}
		out.Items = append(out.Items, Playlist{
			PandoraID:        item.PandoraID,
			Name:             name,
			Description:      a.Description,
			LinkedType:       item.LinkedType,
			TotalTracks:      a.TotalTracks,
			Duration:         time.Duration(a.Duration) * time.Second,
			IsPrivate:        a.IsPrivate,
			ShareableURLPath: a.ShareableURLPath,
			ThorLayers:       a.ThorLayers,
			ListenerID:       a.ListenerID,
			AddedTime:        fromMillis(item.AddedTime),
			UpdatedTime:      fromMillis(item.UpdatedTime),
			TimeCreated:      fromMillis(a.TimeCreated),
			TimeLastUpdated:  fromMillis(a.TimeLastUpdated),
		})
	}

	for id, a := range raw.Annotations {
		if a.Type != TypePlaylistCurator {
			continue
		}
		out.Listeners = append(out.Listeners, Listener{
			PandoraID:   id,
			ListenerID:  a.ListenerID,
			Webname:     a.Webname,
			Fullname:    a.Fullname,
			Displayname: a.Displayname,
		})
	}
	sort.Slice(out.Listeners, func(i, j int) bool {
		return out.Listeners[i].PandoraID < out.Listeners[j].PandoraID
	})

	return out, nil
}

// fromMillis converts Unix milliseconds, leaving zero as the zero time.
func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
