package ui

import (
	"vibes/internal/models"
	"vibes/internal/player"
)

// beliefMsg carries the newest engine belief to the view.
type beliefMsg player.Belief

// searchResultsMsg carries track search results.
type searchResultsMsg struct {
	query  string
	tracks []models.Track
	err    error
}

// likedFetchedMsg carries a page of the user's liked songs.
type likedFetchedMsg struct {
	saved []models.SavedTrack
	total int
	err   error
}

// playlistsFetchedMsg carries the user's playlists.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// playlistTracksMsg carries one playlist's tracks.
type playlistTracksMsg struct {
	playlist models.Playlist
	tracks   []models.Track
	err      error
}

// queueFetchedMsg carries the server-side queue.
type queueFetchedMsg struct {
	tracks []models.Track
	err    error
}
