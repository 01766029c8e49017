package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestLibrary(t *testing.T, baseURL string) *Library {
	t.Helper()
	lib, err := NewLibrary(newTestGateway(t, baseURL, &staticTokens{tokens: []string{"tok-1"}}))
	if err != nil {
		t.Fatalf("failed to create library: %v", err)
	}
	return lib
}

func TestSavedTracksPageCached(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("expected limit 20, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 132, "offset": 0, "limit": 20, "items": [
			{"added_at": "2026-08-01T10:00:00Z", "track": {"id": "tr-1", "uri": "spotify:track:tr-1", "name": "One"}},
			{"added_at": "2026-07-30T09:00:00Z", "track": {"id": "tr-2", "uri": "spotify:track:tr-2", "name": "Two"}}
		]}`)
	}))
	defer srv.Close()

	lib := newTestLibrary(t, srv.URL)

	saved, total, err := lib.SavedTracks(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 132 || len(saved) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(saved))
	}
	if saved[0].Track.Title != "One" || saved[0].AddedAt != "2026-08-01T10:00:00Z" {
		t.Errorf("unexpected first item: %+v", saved[0])
	}

	if _, _, err := lib.SavedTracks(context.Background(), 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected second read served from cache, got %d requests", hits)
	}
}

func TestSaveTrackInvalidatesLikedPages(t *testing.T) {
	var listHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listHits++
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"total": 1, "items": []}`)
		case http.MethodPut:
			if got := r.URL.Query().Get("ids"); got != "tr-9" {
				t.Errorf("expected ids tr-9, got %q", got)
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	lib := newTestLibrary(t, srv.URL)

	if _, _, err := lib.SavedTracks(context.Background(), 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lib.SaveTrack(context.Background(), "tr-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := lib.SavedTracks(context.Background(), 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listHits != 2 {
		t.Errorf("expected save to drop cached pages, got %d list requests", listHits)
	}
}

func TestTracksSaved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "tr-1,tr-2" {
			t.Errorf("expected ids tr-1,tr-2, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[true, false]`)
	}))
	defer srv.Close()

	lib := newTestLibrary(t, srv.URL)
	saved, err := lib.TracksSaved(context.Background(), []string{"tr-1", "tr-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 2 || !saved[0] || saved[1] {
		t.Errorf("unexpected contains result: %v", saved)
	}
}

func TestPlaylistItemsSkipsUnplayable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl-1/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 3, "items": [
			{"track": {"id": "tr-1", "uri": "spotify:track:tr-1", "name": "Keep"}},
			{"track": null},
			{"track": {"id": "", "uri": "", "name": "Local File"}}
		]}`)
	}))
	defer srv.Close()

	lib := newTestLibrary(t, srv.URL)
	tracks, total, err := lib.PlaylistItems(context.Background(), "pl-1", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(tracks) != 1 || tracks[0].Title != "Keep" {
		t.Errorf("expected only playable tracks, got %+v", tracks)
	}
}

func TestPlaylists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 2, "items": [
			{"id": "pl-1", "uri": "spotify:playlist:pl-1", "name": "Focus", "public": false, "tracks": {"total": 42}},
			{"id": "pl-2", "uri": "spotify:playlist:pl-2", "name": "Running", "public": true, "tracks": {"total": 18}}
		]}`)
	}))
	defer srv.Close()

	lib := newTestLibrary(t, srv.URL)
	playlists, total, err := lib.Playlists(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(playlists) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(playlists))
	}
	if playlists[0].Name != "Focus" || playlists[0].TrackCount != 42 {
		t.Errorf("unexpected playlist: %+v", playlists[0])
	}
}
