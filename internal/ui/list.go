package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"vibes/internal/models"
	"vibes/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
	_ list.Item = savedTrackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.DurationMS))
}

// savedTrackItem wraps [models.SavedTrack] to implement [list.Item].
type savedTrackItem struct {
	saved models.SavedTrack
}

func (i savedTrackItem) FilterValue() string { return i.saved.Track.Title }
func (i savedTrackItem) Title() string       { return i.saved.Track.Title }
func (i savedTrackItem) Description() string {
	date := i.saved.AddedAt
	if len(date) >= 10 {
		date = date[:10]
	}
	return fmt.Sprintf("%s • added %s", i.saved.Track.Artist, date)
}
