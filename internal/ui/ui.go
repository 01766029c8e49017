package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vibes/internal/models"
	"vibes/internal/player"
	"vibes/internal/shared"
	"vibes/internal/spotify"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlayerView ViewState = iota
	SearchView
	LibraryView
	PlaylistListView
	PlaylistTracksView
	QueueView
	HelpView
)

const (
	pageSize      = 50
	playBatchSize = 50
	barWidth      = 30
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	engine  *player.Dispatcher
	gateway *spotify.Gateway
	library *spotify.Library

	belief player.Belief
	view   ViewState
	width  int
	height int

	searchInput  textinput.Model
	typing       bool
	searchList   list.Model
	searchTracks []models.Track

	libraryList list.Model
	libSaved    []models.SavedTrack

	playlistList list.Model
	playlists    []models.Playlist

	trackList      list.Model
	selected       models.Playlist
	playlistTracks []models.Track

	queueList list.Model

	volumeStep int
	seekStepMS int

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates the TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *player.Dispatcher, gateway *spotify.Gateway, library *spotify.Library) *Model {
	input := textinput.New()
	input.Placeholder = "search tracks..."
	input.CharLimit = 120

	return &Model{
		ctx:         ctx,
		engine:      engine,
		gateway:     gateway,
		library:     library,
		view:        PlayerView,
		searchInput: input,
		volumeStep:  5,
		seekStepMS:  10000,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// SetSteps overrides the volume and seek increments bound to the +/- and
// f/b keys. Non-positive values keep the defaults.
func (m *Model) SetSteps(volumeStep, seekStepMS int) {
	if volumeStep > 0 {
		m.volumeStep = volumeStep
	}
	if seekStepMS > 0 {
		m.seekStepMS = seekStepMS
	}
}

// Init starts consuming the engine's belief feed.
func (m *Model) Init() tea.Cmd {
	return m.waitForBelief()
}

func (m *Model) waitForBelief() tea.Cmd {
	return func() tea.Msg {
		select {
		case b := <-m.engine.Beliefs():
			return beliefMsg(b)
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.searchList, &m.libraryList, &m.playlistList, &m.trackList, &m.queueList} {
			if l.Width() != 0 {
				l.SetSize(msg.Width-4, msg.Height-10)
			}
		}
		return m, nil

	case beliefMsg:
		m.belief = player.Belief(msg)
		return m, m.waitForBelief()

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case searchResultsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.searchTracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, t := range msg.tracks {
			items[i] = trackItem{track: t}
		}
		m.searchList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.searchList.Title = fmt.Sprintf("Results for '%s'", msg.query)
		return m, nil

	case likedFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.libSaved = msg.saved
		items := make([]list.Item, len(msg.saved))
		for i, s := range msg.saved {
			items[i] = savedTrackItem{saved: s}
		}
		m.libraryList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.libraryList.Title = fmt.Sprintf("Liked Songs (%d)", msg.total)
		m.view = LibraryView
		return m, nil

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, p := range msg.playlists {
			items[i] = playlistItem{playlist: p}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.playlistList.Title = "Playlists"
		m.view = PlaylistListView
		return m, nil

	case playlistTracksMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.selected = msg.playlist
		m.playlistTracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, t := range msg.tracks {
			items[i] = trackItem{track: t}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", msg.playlist.Name)
		m.view = PlaylistTracksView
		return m, nil

	case queueFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.tracks))
		for i, t := range msg.tracks {
			items[i] = trackItem{track: t}
		}
		m.queueList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.queueList.Title = "Up Next"
		m.view = QueueView
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While typing, keys belong to the search input.
	if m.view == SearchView && m.typing {
		switch msg.String() {
		case "enter":
			m.typing = false
			query := strings.TrimSpace(m.searchInput.Value())
			if query == "" {
				return m, nil
			}
			return m, m.runSearch(query)
		case "esc":
			m.typing = false
			m.view = PlayerView
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.engine.Submit(player.Command{Kind: player.CmdToggle})
		return m, nil
	case "n":
		m.engine.Submit(player.Command{Kind: player.CmdNext})
		return m, nil
	case "p":
		m.engine.Submit(player.Command{Kind: player.CmdPrevious})
		return m, nil
	case "+", "=":
		m.engine.VolumeBy(m.volumeStep)
		return m, nil
	case "-", "_":
		m.engine.VolumeBy(-m.volumeStep)
		return m, nil
	case "l":
		m.engine.ToggleLike()
		return m, nil
	case "f", "right":
		m.engine.SeekBy(m.seekStepMS)
		return m, nil
	case "b", "left":
		m.engine.SeekBy(-m.seekStepMS)
		return m, nil
	case "s":
		m.view = SearchView
		m.typing = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "a", "2":
		return m, m.fetchLiked()
	case "3":
		return m, m.fetchPlaylists()
	case "4":
		return m, m.fetchQueue()
	case "1", "esc":
		m.view = PlayerView
		return m, nil
	case "?":
		if m.view == HelpView {
			m.view = PlayerView
		} else {
			m.view = HelpView
		}
		return m, nil
	}

	switch m.view {
	case SearchView:
		return m.handleSearchKeys(msg)
	case LibraryView:
		return m.handleLibraryKeys(msg)
	case PlaylistListView:
		return m.handlePlaylistListKeys(msg)
	case PlaylistTracksView:
		return m.handlePlaylistTracksKeys(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if cmd, ok := playCommand("search", m.searchTracks, m.searchList.Index()); ok {
			m.engine.Submit(cmd)
			m.view = PlayerView
		}
		return m, nil
	case "e":
		if i := m.searchList.Index(); i >= 0 && i < len(m.searchTracks) {
			m.engine.Submit(player.Command{Kind: player.CmdEnqueue, Track: m.searchTracks[i]})
		}
		return m, nil
	case "/":
		m.typing = true
		m.searchInput.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.searchList, cmd = m.searchList.Update(msg)
	return m, cmd
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		tracks := make([]models.Track, len(m.libSaved))
		for i, s := range m.libSaved {
			tracks[i] = s.Track
		}
		if cmd, ok := playCommand("liked", tracks, m.libraryList.Index()); ok {
			m.engine.Submit(cmd)
			m.view = PlayerView
		}
		return m, nil
	case "e":
		if i := m.libraryList.Index(); i >= 0 && i < len(m.libSaved) {
			m.engine.Submit(player.Command{Kind: player.CmdEnqueue, Track: m.libSaved[i].Track})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.libraryList, cmd = m.libraryList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if selected := m.playlistList.SelectedItem(); selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.fetchPlaylistTracks(pl.playlist)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistTracksKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		origin := "playlist:" + m.selected.ID
		if cmd, ok := playCommand(origin, m.playlistTracks, m.trackList.Index()); ok {
			m.engine.Submit(cmd)
			m.view = PlayerView
		}
		return m, nil
	case "e":
		if i := m.trackList.Index(); i >= 0 && i < len(m.playlistTracks) {
			m.engine.Submit(player.Command{Kind: player.CmdEnqueue, Track: m.playlistTracks[i]})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.searchList, cmd = m.searchList.Update(msg)
	case LibraryView:
		m.libraryList, cmd = m.libraryList.Update(msg)
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case PlaylistTracksView:
		m.trackList, cmd = m.trackList.Update(msg)
	case QueueView:
		m.queueList, cmd = m.queueList.Update(msg)
	}
	return m, cmd
}

// playCommand builds a play command that submits up to playBatchSize tracks
// starting at index, seeding the engine's look-ahead buffer with the rest of
// the window.
func playCommand(origin string, tracks []models.Track, index int) (player.Command, bool) {
	if index < 0 || index >= len(tracks) {
		return player.Command{}, false
	}

	end := index + playBatchSize
	if end > len(tracks) {
		end = len(tracks)
	}
	window := tracks[index:end]

	uris := make([]string, len(window))
	for i, t := range window {
		uris[i] = t.URI
	}
	upcoming := make([]models.Track, len(window)-1)
	copy(upcoming, window[1:])

	return player.Command{
		Kind:       player.CmdPlay,
		Track:      window[0],
		URIs:       uris,
		Origin:     origin,
		Upcoming:   upcoming,
		NextOffset: end,
	}, true
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.gateway.SearchTracks(m.ctx, query, pageSize)
		return searchResultsMsg{query: query, tracks: tracks, err: err}
	}
}

func (m *Model) fetchLiked() tea.Cmd {
	return func() tea.Msg {
		saved, total, err := m.library.SavedTracks(m.ctx, pageSize, 0)
		return likedFetchedMsg{saved: saved, total: total, err: err}
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, _, err := m.library.Playlists(m.ctx, pageSize, 0)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchPlaylistTracks(pl models.Playlist) tea.Cmd {
	return func() tea.Msg {
		tracks, _, err := m.library.PlaylistItems(m.ctx, pl.ID, pageSize, 0)
		return playlistTracksMsg{playlist: pl, tracks: tracks, err: err}
	}
}

func (m *Model) fetchQueue() tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.gateway.Queue(m.ctx)
		return queueFetchedMsg{tracks: tracks, err: err}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SearchView:
		body = m.renderSearch()
	case LibraryView:
		body = m.libraryList.View()
	case PlaylistListView:
		body = m.playlistList.View()
	case PlaylistTracksView:
		body = m.trackList.View()
	case QueueView:
		body = m.queueList.View()
	case HelpView:
		body = m.renderHelp()
	default:
		body = m.renderPlayer()
	}

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}

	return fmt.Sprintf("%s\n%s%s", body, errLine, m.renderPlayerBar())
}

func (m *Model) renderPlayer() string {
	title := styles.title.Render("vibes")

	if !m.belief.HasTrack {
		idle := styles.dim.Render("nothing playing — press s to search, a for liked songs")
		return fmt.Sprintf("%s\n\n%s\n", title, idle)
	}

	t := m.belief.Track
	track := styles.accent.Render(t.Title)
	artist := styles.help.Render(t.Artist)
	album := styles.dim.Render(t.Album)

	liked := ""
	if m.belief.Liked {
		liked = styles.err.Render(" ♥")
	}

	return fmt.Sprintf("%s\n%s%s\n%s\n%s\n", title, track, liked, artist, album)
}

func (m *Model) renderSearch() string {
	if m.typing {
		return fmt.Sprintf("%s\n\n%s\n", styles.title.Render("Search"), m.searchInput.View())
	}
	if m.searchList.Width() == 0 {
		return styles.dim.Render("no results yet — press / to type a query")
	}
	return m.searchList.View()
}

func (m *Model) renderHelp() string {
	m.help.ShowAll = true
	return fmt.Sprintf("%s\n\n%s\n", styles.title.Render("Keys"), m.help.View(m.keys))
}

// renderPlayerBar renders the persistent bottom bar: transport state,
// progress, volume, and the active notification.
func (m *Model) renderPlayerBar() string {
	var sb strings.Builder

	if m.belief.HasTrack {
		icon := "⏸"
		if m.belief.Playing {
			icon = "▶"
		}
		pendingMark := ""
		if m.belief.Pending {
			pendingMark = styles.dim.Render(" …")
		}

		fmt.Fprintf(&sb, "%s %s — %s%s\n",
			styles.accent.Render(icon),
			m.belief.Track.Title,
			m.belief.Track.Artist,
			pendingMark,
		)
		fmt.Fprintf(&sb, "%s %s  vol %d%%",
			renderProgressBar(m.belief.ProgressMS, m.belief.Track.DurationMS),
			styles.help.Render(shared.FormatProgress(m.belief.ProgressMS, m.belief.Track.DurationMS)),
			m.belief.Volume,
		)
	} else {
		sb.WriteString(styles.dim.Render("∅ idle"))
	}

	if m.belief.Notification != "" {
		sb.WriteString("\n" + styles.warn.Render(m.belief.Notification))
	}

	sb.WriteString("\n" + m.help.ShortHelpView(m.keys.ShortHelp()))
	return sb.String()
}

func renderProgressBar(progressMS, durationMS int) string {
	filled := 0
	if durationMS > 0 {
		filled = progressMS * barWidth / durationMS
	}
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	return styles.accent.Render("[") +
		styles.accent.Render(strings.Repeat("█", filled)) +
		styles.dim.Render(strings.Repeat("─", barWidth-filled)) +
		styles.accent.Render("]")
}
