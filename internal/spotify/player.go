package spotify

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"vibes/internal/models"
)

// CurrentPlayback fetches the server's current playback snapshot.
//
// Returns (nil, nil) when nothing is playing: the API answers 204 with no
// body, and the caller treats an absent snapshot as idle rather than as an
// error.
func (g *Gateway) CurrentPlayback(ctx context.Context) (*models.PlaybackSnapshot, error) {
	var resp playbackResponse
	if err := g.do(ctx, http.MethodGet, "/me/player", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, nil
	}
	snapshot := toSnapshot(resp)
	return &snapshot, nil
}

// Devices lists the user's available playback devices.
func (g *Gateway) Devices(ctx context.Context) ([]models.Device, error) {
	var resp devicesResponse
	if err := g.do(ctx, http.MethodGet, "/me/player/devices", nil, nil, &resp); err != nil {
		return nil, err
	}
	devices := make([]models.Device, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		devices = append(devices, toDevice(d))
	}
	return devices, nil
}

type playRequest struct {
	URIs   []string `json:"uris,omitempty"`
	Offset *struct {
		Position int `json:"position"`
	} `json:"offset,omitempty"`
}

// Play starts playback of the given track URIs, beginning at position.
// An empty deviceID targets the active device.
func (g *Gateway) Play(ctx context.Context, deviceID string, uris []string, position int) error {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}

	body := playRequest{URIs: uris}
	if position > 0 {
		body.Offset = &struct {
			Position int `json:"position"`
		}{Position: position}
	}

	return g.do(ctx, http.MethodPut, "/me/player/play", query, body, nil)
}

// Resume continues playback from the current position.
func (g *Gateway) Resume(ctx context.Context) error {
	return g.do(ctx, http.MethodPut, "/me/player/play", nil, nil, nil)
}

// Pause pauses playback.
func (g *Gateway) Pause(ctx context.Context) error {
	return g.do(ctx, http.MethodPut, "/me/player/pause", nil, nil, nil)
}

// Next skips to the next track.
func (g *Gateway) Next(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/me/player/next", nil, nil, nil)
}

// Previous skips to the previous track.
func (g *Gateway) Previous(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/me/player/previous", nil, nil, nil)
}

// Seek moves the playhead to positionMS, clamped at zero.
func (g *Gateway) Seek(ctx context.Context, positionMS int) error {
	if positionMS < 0 {
		positionMS = 0
	}
	query := url.Values{"position_ms": {strconv.Itoa(positionMS)}}
	return g.do(ctx, http.MethodPut, "/me/player/seek", query, nil, nil)
}

// SetVolume sets the playback volume, clamped to [0, 100].
func (g *Gateway) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	query := url.Values{"volume_percent": {strconv.Itoa(percent)}}
	return g.do(ctx, http.MethodPut, "/me/player/volume", query, nil, nil)
}
