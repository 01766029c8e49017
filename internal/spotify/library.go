package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"vibes/internal/models"
)

const libraryCacheSize = 64

// page is a cached slice of a paginated listing, together with the total the
// server reported for the full collection.
type page struct {
	saved     []models.SavedTrack
	playlists []models.Playlist
	tracks    []models.Track
	total     int
}

// Library reads the user's saved tracks and playlists through the gateway.
//
// Pages are held in a small LRU cache so screen redraws and adjacent
// scrolling don't refetch; any library mutation drops the affected pages.
type Library struct {
	gateway *Gateway
	pages   *lru.Cache[string, page]
}

// NewLibrary creates a Library backed by the given gateway.
func NewLibrary(gateway *Gateway) (*Library, error) {
	pages, err := lru.New[string, page](libraryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create library cache: %w", err)
	}
	return &Library{gateway: gateway, pages: pages}, nil
}

// SavedTracks fetches one page of the user's liked songs, newest first.
// Returns the page and the total number of saved tracks.
func (l *Library) SavedTracks(ctx context.Context, limit, offset int) ([]models.SavedTrack, int, error) {
	key := fmt.Sprintf("liked:%d:%d", limit, offset)
	if cached, ok := l.pages.Get(key); ok {
		return cached.saved, cached.total, nil
	}

	var resp savedTracksPage
	query := pageQuery(limit, offset)
	if err := l.gateway.do(ctx, http.MethodGet, "/me/tracks", query, nil, &resp); err != nil {
		return nil, 0, err
	}

	saved := make([]models.SavedTrack, 0, len(resp.Items))
	for _, item := range resp.Items {
		saved = append(saved, models.SavedTrack{AddedAt: item.AddedAt, Track: toTrack(item.Track)})
	}

	l.pages.Add(key, page{saved: saved, total: resp.Total})
	return saved, resp.Total, nil
}

// SaveTrack adds a track to the user's liked songs.
func (l *Library) SaveTrack(ctx context.Context, trackID string) error {
	query := url.Values{"ids": {trackID}}
	if err := l.gateway.do(ctx, http.MethodPut, "/me/tracks", query, nil, nil); err != nil {
		return err
	}
	l.dropPrefix("liked:")
	return nil
}

// RemoveSavedTrack removes a track from the user's liked songs.
func (l *Library) RemoveSavedTrack(ctx context.Context, trackID string) error {
	query := url.Values{"ids": {trackID}}
	if err := l.gateway.do(ctx, http.MethodDelete, "/me/tracks", query, nil, nil); err != nil {
		return err
	}
	l.dropPrefix("liked:")
	return nil
}

// TracksSaved reports, per input ID, whether the track is in the user's
// liked songs. Not cached: it backs the like toggle, which must see the
// latest state.
func (l *Library) TracksSaved(ctx context.Context, trackIDs []string) ([]bool, error) {
	query := url.Values{"ids": {strings.Join(trackIDs, ",")}}
	var saved []bool
	if err := l.gateway.do(ctx, http.MethodGet, "/me/tracks/contains", query, nil, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Playlists fetches one page of the user's playlists.
func (l *Library) Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, int, error) {
	key := fmt.Sprintf("playlists:%d:%d", limit, offset)
	if cached, ok := l.pages.Get(key); ok {
		return cached.playlists, cached.total, nil
	}

	var resp playlistsPage
	query := pageQuery(limit, offset)
	if err := l.gateway.do(ctx, http.MethodGet, "/me/playlists", query, nil, &resp); err != nil {
		return nil, 0, err
	}

	playlists := make([]models.Playlist, 0, len(resp.Items))
	for _, p := range resp.Items {
		playlists = append(playlists, models.Playlist{
			ID:          p.ID,
			URI:         p.URI,
			Name:        p.Name,
			Description: p.Description,
			TrackCount:  p.Tracks.Total,
			Public:      p.Public,
		})
	}

	l.pages.Add(key, page{playlists: playlists, total: resp.Total})
	return playlists, resp.Total, nil
}

// PlaylistItems fetches one page of a playlist's tracks. Unplayable entries
// (local files, removed tracks) are skipped.
func (l *Library) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) ([]models.Track, int, error) {
	key := fmt.Sprintf("playlist:%s:%d:%d", playlistID, limit, offset)
	if cached, ok := l.pages.Get(key); ok {
		return cached.tracks, cached.total, nil
	}

	var resp playlistItemsPage
	query := pageQuery(limit, offset)
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := l.gateway.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, 0, err
	}

	tracks := make([]models.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Track == nil || item.Track.URI == "" {
			continue
		}
		tracks = append(tracks, toTrack(*item.Track))
	}

	l.pages.Add(key, page{tracks: tracks, total: resp.Total})
	return tracks, resp.Total, nil
}

// dropPrefix evicts all cached pages whose key starts with prefix.
func (l *Library) dropPrefix(prefix string) {
	for _, key := range l.pages.Keys() {
		if strings.HasPrefix(key, prefix) {
			l.pages.Remove(key)
		}
	}
}

func pageQuery(limit, offset int) url.Values {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}
