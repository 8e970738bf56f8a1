package pandora

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultStationsPageSize is the page size the web client requests.
const DefaultStationsPageSize = 250

// StationsService reads the user's stations.
type StationsService struct {
	client *Client
}

type stationsRequest struct {
	PageSize int `json:"pageSize"`
}

// ListRaw returns the getStations response as sent by the server.
// pageSize <= 0 uses DefaultStationsPageSize.
func (s *StationsService) ListRaw(ctx context.Context, pageSize int) (*RawStations, error) {
	if pageSize <= 0 {
		pageSize = DefaultStationsPageSize
	}
	return restCall[RawStations](ctx, s.client, "/api/v1/station/getStations", stationsRequest{PageSize: pageSize})
}

// List returns the user's stations with their dates parsed.
func (s *StationsService) List(ctx context.Context, pageSize int) (*Stations, error) {
	raw, err := s.ListRaw(ctx, pageSize)
	if err != nil {
		return nil, err
	}
	return parseStations(raw)
}

func parseStations(raw *RawStations) (*Stations, error) {
	out := &Stations{
		TotalStations: raw.TotalStations,
		SortedBy:      raw.SortedBy,
		Index:         raw.Index,
		Stations:      make([]Station, 0, len(raw.Stations)),
	}

	for _, st := range raw.Stations {
		station := Station{
			StationID:     st.StationID,
			PandoraID:     st.PandoraID,
			Name:          st.Name,
			Art:           st.Art,
			TotalPlayTime: time.Duration(st.TotalPlayTime) * time.Second,
			IsShared:      st.IsShared,
			IsThumbprint:  st.IsThumbprint,
			IsShuffle:     st.IsShuffle,
			Deleted:       st.Deleted,
		}

		var err error
		for _, f := range []struct {
			dst  *time.Time
			src  string
			name string
		}{
			{&station.DateCreated, st.DateCreated, "dateCreated"},
			{&station.LastPlayed, st.LastPlayed, "lastPlayed"},
			{&station.TimeAdded, st.TimeAdded, "timeAdded"},
			{&station.LastUpdated, st.LastUpdated, "lastUpdated"},
		} {
			if *f.dst, err = parseDate(f.src); err != nil {
				return nil, &Error{
					Op:      "/api/v1/station/getStations",
					Kind:    ErrProtocol,
					Message: fmt.Sprintf("station %s: bad %s", st.StationID, f.name),
					Err:     err,
				}
			}
		}

		out.Stations = append(out.Stations, station)
	}
	return out, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate parses the date strings the web API returns. Empty is the zero
// time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
