package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jfmyers9/tuner/internal/catalog"
	"github.com/jfmyers9/tuner/internal/monitor"
	"github.com/jfmyers9/tuner/pkg/pandora"
)

// View selects which half of the catalog the table shows
type View int

const (
	ViewPlaylists View = iota
	ViewStations
)

func (v View) String() string {
	if v == ViewStations {
		return "Stations"
	}
	return "Playlists"
}

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to redraw the status bar
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{RefreshRate: time.Second}
}

// App is the TUI application for browsing a catalog snapshot
type App struct {
	app    *tview.Application
	header *tview.TextView
	table  *tview.Table
	detail *tview.TextView
	status *tview.TextView

	config Config
	store  *catalog.Store

	// Guarded by mu: written by loaders and the update consumer, read
	// while drawing
	mu        sync.Mutex
	view      View
	info      *catalog.SnapshotInfo
	playlists []pandora.Playlist
	stations  []pandora.Station
	health    *monitor.Update
	loadErr   error

	lastStatus string

	cancelFunc context.CancelFunc
}

// New creates a new TUI application with default config
func New(store *catalog.Store) *App {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates a new TUI application with the given config
func NewWithConfig(store *catalog.Store, cfg Config) *App {
	a := &App{
		app:    tview.NewApplication(),
		config: cfg,
		store:  store,
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	a.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.table.SetBorder(true).
		SetTitleAlign(tview.AlignLeft)
	a.table.SetSelectionChangedFunc(func(row, _ int) {
		a.showDetail(row - 1)
	})

	a.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	a.detail.SetBorder(true).
		SetTitle(" Details ").
		SetTitleAlign(tview.AlignLeft)

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	// Header on top, table | details in the middle, status bar at the bottom
	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.table, 0, 3, true).
		AddItem(a.detail, 0, 2, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true).SetFocus(a.table)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyTab {
		a.switchView()
		return nil
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case 'p', 'P':
		a.setView(ViewPlaylists)
		return nil
	case 's', 'S':
		a.setView(ViewStations)
		return nil
	case 'r', 'R':
		go func() {
			_ = a.Load(context.Background())
			a.app.QueueUpdateDraw(a.render)
		}()
		return nil
	}
	return event
}

func (a *App) switchView() {
	a.mu.Lock()
	next := ViewStations
	if a.view == ViewStations {
		next = ViewPlaylists
	}
	a.mu.Unlock()
	a.setView(next)
}

// setView runs on the UI goroutine
func (a *App) setView(v View) {
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
	a.render()
}

// Load reads the newest snapshot from the store. A store without
// snapshots is not an error: the browser shows an empty catalog.
func (a *App) Load(ctx context.Context) error {
	info, playlists, stations, err := loadLatest(ctx, a.store)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadErr = err
	if err != nil {
		return err
	}
	a.info = info
	a.playlists = playlists
	a.stations = stations
	return nil
}

func loadLatest(ctx context.Context, store *catalog.Store) (*catalog.SnapshotInfo, []pandora.Playlist, []pandora.Station, error) {
	info, err := store.Latest(ctx)
	if errors.Is(err, catalog.ErrNoSnapshot) {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read latest snapshot: %w", err)
	}

	playlists, err := store.Playlists(ctx, info.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read playlists: %w", err)
	}
	stations, err := store.Stations(ctx, info.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read stations: %w", err)
	}
	return info, playlists, stations, nil
}

// Run starts the TUI. Health updates from a monitor are shown in the
// status bar; updates may be nil.
func (a *App) Run(ctx context.Context, updates <-chan monitor.Update) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	a.render()
	go a.handleUpdates(ctx, updates)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// handleUpdates records health updates; a single ticker drives redraws of
// the status bar
func (a *App) handleUpdates(ctx context.Context, updates <-chan monitor.Update) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				a.mu.Lock()
				a.health = &u
				a.mu.Unlock()
			}
		}
	}()

	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = time.Second
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.refreshStatus)
		}
	}
}

// render redraws everything. Must run on the UI goroutine.
func (a *App) render() {
	a.mu.Lock()
	view, info, loadErr := a.view, a.info, a.loadErr
	playlists, stations := a.playlists, a.stations
	a.lastStatus = ""
	a.mu.Unlock()

	a.header.SetText(headerText(info, loadErr))

	a.table.Clear()
	a.table.SetTitle(fmt.Sprintf(" %s ", view))
	switch view {
	case ViewStations:
		setHeaderRow(a.table, "Name", "Played", "Last played")
		for i, st := range stations {
			name := tview.Escape(st.Name)
			if st.IsThumbprint {
				name += " [::d](thumbprint)[::-]"
			}
			a.table.SetCell(i+1, 0, tview.NewTableCell(name).SetExpansion(1))
			a.table.SetCell(i+1, 1, tview.NewTableCell(formatDuration(st.TotalPlayTime)).SetAlign(tview.AlignRight))
			a.table.SetCell(i+1, 2, tview.NewTableCell(formatDate(st.LastPlayed)))
		}
	default:
		setHeaderRow(a.table, "Name", "Tracks", "Length")
		for i, p := range playlists {
			a.table.SetCell(i+1, 0, tview.NewTableCell(tview.Escape(p.Name)).SetExpansion(1))
			a.table.SetCell(i+1, 1, tview.NewTableCell(fmt.Sprintf("%d", p.TotalTracks)).SetAlign(tview.AlignRight))
			a.table.SetCell(i+1, 2, tview.NewTableCell(formatDuration(p.Duration)).SetAlign(tview.AlignRight))
		}
	}
	a.table.ScrollToBeginning()
	a.table.Select(1, 0)
	a.showDetail(0)

	a.refreshStatus()
}

func setHeaderRow(table *tview.Table, titles ...string) {
	for col, title := range titles {
		table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
}

// showDetail fills the details panel with the i-th entry of the current view
func (a *App) showDetail(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var text string
	switch a.view {
	case ViewStations:
		if i >= 0 && i < len(a.stations) {
			text = stationDetail(a.stations[i])
		}
	default:
		if i >= 0 && i < len(a.playlists) {
			text = playlistDetail(a.playlists[i])
		}
	}
	if text == "" {
		text = "[gray]Nothing selected[-]"
	}
	a.detail.SetText(text)
}

func (a *App) refreshStatus() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updateStatus()
}

// updateStatus must be called with a.mu held
func (a *App) updateStatus() {
	text := healthText(a.health) + "  [gray]tab:switch  p:playlists  s:stations  r:reload  q:quit[-]"
	if text != a.lastStatus {
		a.lastStatus = text
		a.status.SetText(text)
	}
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

func headerText(info *catalog.SnapshotInfo, err error) string {
	if err != nil {
		return fmt.Sprintf("[red]%s[-]", tview.Escape(err.Error()))
	}
	if info == nil {
		return "[gray]No snapshots yet. Run 'tuner sync' first.[-]"
	}
	return fmt.Sprintf("[white::b]Snapshot[-:-:-] %s  [gray]%s  %d playlists  %d stations[-]",
		info.ID[:min(8, len(info.ID))],
		info.TakenAt.Local().Format("2006-01-02 15:04"),
		info.PlaylistCount, info.StationCount)
}

func healthText(u *monitor.Update) string {
	switch {
	case u == nil:
		return "[gray]health: unknown[-]"
	case u.Healthy:
		return fmt.Sprintf("[green]● healthy[-] [gray]%s[-]", u.At.Local().Format("15:04:05"))
	case u.Unreachable():
		return "[red]● unreachable[-]"
	default:
		return "[yellow]● unhealthy[-]"
	}
}

func playlistDetail(p pandora.Playlist) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(p.Name)))
	if p.Description != "" {
		sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", tview.Escape(p.Description)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Tracks:   %d\n", p.TotalTracks))
	sb.WriteString(fmt.Sprintf("Length:   %s\n", formatDuration(p.Duration)))
	if p.IsPrivate {
		sb.WriteString("Private:  yes\n")
	}
	sb.WriteString(fmt.Sprintf("Added:    %s\n", formatDate(p.AddedTime)))
	sb.WriteString(fmt.Sprintf("Updated:  %s\n", formatDate(p.TimeLastUpdated)))
	sb.WriteString(fmt.Sprintf("\n[gray]%s[-]", p.PandoraID))
	return sb.String()
}

func stationDetail(s pandora.Station) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n\n", tview.Escape(s.Name)))
	sb.WriteString(fmt.Sprintf("Played:   %s\n", formatDuration(s.TotalPlayTime)))
	sb.WriteString(fmt.Sprintf("Created:  %s\n", formatDate(s.DateCreated)))
	sb.WriteString(fmt.Sprintf("Last:     %s\n", formatDate(s.LastPlayed)))

	var flags []string
	if s.IsThumbprint {
		flags = append(flags, "thumbprint")
	}
	if s.IsShuffle {
		flags = append(flags, "shuffle")
	}
	if s.IsShared {
		flags = append(flags, "shared")
	}
	if len(flags) > 0 {
		sb.WriteString(fmt.Sprintf("Flags:    %s\n", strings.Join(flags, ", ")))
	}
	sb.WriteString(fmt.Sprintf("\n[gray]%s[-]", s.StationID))
	return sb.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// formatDuration formats a duration as MM:SS or HH:MM:SS for longer durations
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
