package catalog

import "github.com/jfmyers9/tuner/pkg/pandora"

// Change describes how a playlist differs between two snapshots
type Change struct {
	PandoraID string
	Name      string
	OldTracks int
	NewTracks int
}

// Diff is the difference between two sets of playlists and stations
type Diff struct {
	AddedPlaylists   []pandora.Playlist
	RemovedPlaylists []pandora.Playlist
	ChangedPlaylists []Change
	AddedStations    []pandora.Station
	RemovedStations  []pandora.Station
}

// Empty reports whether nothing changed
func (d *Diff) Empty() bool {
	return len(d.AddedPlaylists) == 0 && len(d.RemovedPlaylists) == 0 &&
		len(d.ChangedPlaylists) == 0 && len(d.AddedStations) == 0 && len(d.RemovedStations) == 0
}

// Compare returns what changed from the old catalog to the new one.
// Playlists are matched by pandora id and stations by station id; a
// playlist whose track count or name changed is reported as changed.
func Compare(oldPlaylists, newPlaylists []pandora.Playlist, oldStations, newStations []pandora.Station) *Diff {
	d := &Diff{}

	before := make(map[string]pandora.Playlist, len(oldPlaylists))
	for _, p := range oldPlaylists {
		before[p.PandoraID] = p
	}
	seen := make(map[string]bool, len(newPlaylists))
	for _, p := range newPlaylists {
		seen[p.PandoraID] = true
		prev, ok := before[p.PandoraID]
		switch {
		case !ok:
			d.AddedPlaylists = append(d.AddedPlaylists, p)
		case prev.TotalTracks != p.TotalTracks || prev.Name != p.Name:
			d.ChangedPlaylists = append(d.ChangedPlaylists, Change{
				PandoraID: p.PandoraID,
				Name:      p.Name,
				OldTracks: prev.TotalTracks,
				NewTracks: p.TotalTracks,
			})
		}
	}
	for _, p := range oldPlaylists {
		if !seen[p.PandoraID] {
			d.RemovedPlaylists = append(d.RemovedPlaylists, p)
		}
	}

	stationsBefore := make(map[string]bool, len(oldStations))
	for _, st := range oldStations {
		stationsBefore[st.StationID] = true
	}
	stationsNow := make(map[string]bool, len(newStations))
	for _, st := range newStations {
		stationsNow[st.StationID] = true
		if !stationsBefore[st.StationID] {
			d.AddedStations = append(d.AddedStations, st)
		}
	}
	for _, st := range oldStations {
		if !stationsNow[st.StationID] {
			d.RemovedStations = append(d.RemovedStations, st)
		}
	}

	return d
}
