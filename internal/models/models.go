package models

import (
	"strings"
	"time"
)

// Credential is the persisted OAuth token pair.
//
// Created on first successful authorization, overwritten on every refresh,
// deleted only by explicit cache invalidation (logout).
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scopes       []string  `json:"scopes"`
}

// Fresh reports whether the access token is still usable given a safety
// margin. ExpiresAt is never compared directly against now: the margin
// triggers a refresh before true expiry, not at it.
func (c Credential) Fresh(margin time.Duration, now time.Time) bool {
	if c.AccessToken == "" {
		return false
	}
	return now.Add(margin).Before(c.ExpiresAt)
}

// HasScope reports whether the credential carries the given scope.
func (c Credential) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Track is an immutable track record.
type Track struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMS int    `json:"duration_ms"`
}

// ArtistLine joins multiple artist names the way the player bar displays them.
func ArtistLine(names []string) string {
	return strings.Join(names, ", ")
}

// Playlist is an immutable playlist record.
type Playlist struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// SavedTrack is a track in the user's liked songs, with the save timestamp.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// Device is a Spotify Connect playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Active        bool   `json:"active"`
	VolumePercent int    `json:"volume_percent"`
}

// PlaybackSnapshot is the remote server's last known truth about playback.
//
// Replaced wholesale on each successful poll; never partially mutated.
type PlaybackSnapshot struct {
	Track      Track  `json:"track"`
	ProgressMS int    `json:"progress_ms"`
	IsPlaying  bool   `json:"is_playing"`
	Volume     int    `json:"volume"`
	DeviceID   string `json:"device_id"`
	ContextURI string `json:"context_uri"`
}
