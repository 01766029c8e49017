// Package ui implements the interactive terminal player using bubbletea's
// Elm architecture.
//
// The TUI is a thin projection of the playback engine: it renders the
// belief feed from [vibes/internal/player.Dispatcher] and translates
// keystrokes into commands. It never calls the remote API for playback
// control directly; browsing screens (search, liked songs, playlists,
// queue) fetch their listings through the gateway on tea commands.
//
// Views:
//  1. [PlayerView] : now playing, progress, volume
//  2. [SearchView] : track search and play/enqueue
//  3. [LibraryView] : liked songs
//  4. [PlaylistListView] / [PlaylistTracksView] : playlist browsing
//  5. [QueueView] : upcoming tracks
//
// Keyboard control uses single-key bindings (space, n, p, +/-, f/b, l) with
// contextual help via charmbracelet/bubbles/help.
package ui
