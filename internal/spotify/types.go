package spotify

import (
	"fmt"

	"vibes/internal/models"
)

// APIError is a non-retryable rejection from the API, preserved with the
// status and reason the server reported.
type APIError struct {
	Status  int
	Message string
	Reason  string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("spotify api error %d (%s): %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("spotify api error %d: %s", e.Status, e.Message)
}

// apiErrorBody is the error envelope the API wraps failures in.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

const reasonNoActiveDevice = "NO_ACTIVE_DEVICE"

type artistObject struct {
	Name string `json:"name"`
}

type albumObject struct {
	Name string `json:"name"`
}

type trackObject struct {
	ID         string         `json:"id"`
	URI        string         `json:"uri"`
	Name       string         `json:"name"`
	DurationMS int            `json:"duration_ms"`
	Artists    []artistObject `json:"artists"`
	Album      albumObject    `json:"album"`
}

type deviceObject struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

type contextObject struct {
	URI string `json:"uri"`
}

type playbackResponse struct {
	Device     deviceObject   `json:"device"`
	ProgressMS int            `json:"progress_ms"`
	IsPlaying  bool           `json:"is_playing"`
	Item       *trackObject   `json:"item"`
	Context    *contextObject `json:"context"`
}

type devicesResponse struct {
	Devices []deviceObject `json:"devices"`
}

type queueResponse struct {
	CurrentlyPlaying *trackObject  `json:"currently_playing"`
	Queue            []trackObject `json:"queue"`
}

type savedTrackObject struct {
	AddedAt string      `json:"added_at"`
	Track   trackObject `json:"track"`
}

type savedTracksPage struct {
	Items  []savedTrackObject `json:"items"`
	Total  int                `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

type playlistObject struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type playlistsPage struct {
	Items []playlistObject `json:"items"`
	Total int              `json:"total"`
}

type playlistItemsPage struct {
	Items []struct {
		Track *trackObject `json:"track"`
	} `json:"items"`
	Total int `json:"total"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackObject `json:"items"`
		Total int           `json:"total"`
	} `json:"tracks"`
}

func toTrack(t trackObject) models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return models.Track{
		ID:         t.ID,
		URI:        t.URI,
		Title:      t.Name,
		Artist:     models.ArtistLine(names),
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
	}
}

func toDevice(d deviceObject) models.Device {
	return models.Device{
		ID:            d.ID,
		Name:          d.Name,
		Type:          d.Type,
		Active:        d.IsActive,
		VolumePercent: d.VolumePercent,
	}
}

func toSnapshot(p playbackResponse) models.PlaybackSnapshot {
	snapshot := models.PlaybackSnapshot{
		ProgressMS: p.ProgressMS,
		IsPlaying:  p.IsPlaying,
		Volume:     p.Device.VolumePercent,
		DeviceID:   p.Device.ID,
	}
	if p.Item != nil {
		snapshot.Track = toTrack(*p.Item)
	}
	if p.Context != nil {
		snapshot.ContextURI = p.Context.URI
	}
	return snapshot
}
