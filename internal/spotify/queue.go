package spotify

import (
	"context"
	"net/http"
	"net/url"

	"vibes/internal/models"
)

// Queue fetches the server-side playback queue, excluding the currently
// playing track.
func (g *Gateway) Queue(ctx context.Context) ([]models.Track, error) {
	var resp queueResponse
	if err := g.do(ctx, http.MethodGet, "/me/player/queue", nil, nil, &resp); err != nil {
		return nil, err
	}
	tracks := make([]models.Track, 0, len(resp.Queue))
	for _, t := range resp.Queue {
		tracks = append(tracks, toTrack(t))
	}
	return tracks, nil
}

// Enqueue appends a track to the server-side playback queue.
func (g *Gateway) Enqueue(ctx context.Context, uri string) error {
	query := url.Values{"uri": {uri}}
	return g.do(ctx, http.MethodPost, "/me/player/queue", query, nil, nil)
}
