// Package formatter renders engine state and library listings as plain text
// for the one-shot CLI commands. The interactive UI styles its own output;
// everything here must stay pipe-friendly.
package formatter

import (
	"fmt"
	"strings"

	"vibes/internal/models"
	"vibes/internal/player"
	"vibes/internal/shared"
)

// Status renders a one-line playback summary.
func Status(b player.Belief) string {
	if !b.HasTrack {
		return "nothing playing"
	}

	icon := "⏸"
	if b.Playing {
		icon = "▶"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s — %s", icon, b.Track.Title, b.Track.Artist)
	if b.Track.Album != "" {
		fmt.Fprintf(&sb, " (%s)", b.Track.Album)
	}
	fmt.Fprintf(&sb, " [%s]", shared.FormatProgress(b.ProgressMS, b.Track.DurationMS))
	fmt.Fprintf(&sb, " vol %d%%", b.Volume)
	if b.Liked {
		sb.WriteString(" ♥")
	}
	return sb.String()
}

// TrackList renders a numbered track listing.
func TrackList(tracks []models.Track) string {
	if len(tracks) == 0 {
		return "no tracks"
	}

	var sb strings.Builder
	for i, t := range tracks {
		fmt.Fprintf(&sb, "%3d. %s — %s [%s]\n", i+1, t.Title, t.Artist, shared.FormatDuration(t.DurationMS))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SavedTrackList renders liked songs with their save dates.
func SavedTrackList(saved []models.SavedTrack, total int) string {
	if len(saved) == 0 {
		return "no liked songs"
	}

	var sb strings.Builder
	for i, s := range saved {
		date := s.AddedAt
		if len(date) >= 10 {
			date = date[:10]
		}
		fmt.Fprintf(&sb, "%3d. %s — %s [%s]  added %s\n",
			i+1, s.Track.Title, s.Track.Artist, shared.FormatDuration(s.Track.DurationMS), date)
	}
	fmt.Fprintf(&sb, "showing %d of %d", len(saved), total)
	return sb.String()
}

// PlaylistList renders the user's playlists.
func PlaylistList(playlists []models.Playlist) string {
	if len(playlists) == 0 {
		return "no playlists"
	}

	var sb strings.Builder
	for i, p := range playlists {
		visibility := "private"
		if p.Public {
			visibility = "public"
		}
		fmt.Fprintf(&sb, "%3d. %s (%d tracks, %s)\n", i+1, p.Name, p.TrackCount, visibility)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// QueueList renders the upcoming queue under the current track.
func QueueList(b player.Belief, upcoming []models.Track) string {
	var sb strings.Builder
	sb.WriteString("now: ")
	if b.HasTrack {
		fmt.Fprintf(&sb, "%s — %s\n", b.Track.Title, b.Track.Artist)
	} else {
		sb.WriteString("nothing playing\n")
	}

	if len(upcoming) == 0 {
		sb.WriteString("queue is empty")
		return sb.String()
	}
	sb.WriteString(TrackList(upcoming))
	return sb.String()
}

// DeviceList renders available playback devices, marking the active one.
func DeviceList(devices []models.Device) string {
	if len(devices) == 0 {
		return "no devices"
	}

	var sb strings.Builder
	for _, d := range devices {
		marker := " "
		if d.Active {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %s (%s) vol %d%%\n", marker, d.Name, d.Type, d.VolumePercent)
	}
	return strings.TrimRight(sb.String(), "\n")
}
