package spotify

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"vibes/internal/models"
)

// SearchTracks runs a track search and returns up to limit results.
func (g *Gateway) SearchTracks(ctx context.Context, q string, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := url.Values{
		"q":     {q},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}

	var resp searchResponse
	if err := g.do(ctx, http.MethodGet, "/search", query, nil, &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Tracks.Items))
	for _, t := range resp.Tracks.Items {
		tracks = append(tracks, toTrack(t))
	}
	return tracks, nil
}
