package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const playbackJSON = `{
	"device": {"id": "dev-1", "name": "Desk Speaker", "type": "Computer", "is_active": true, "volume_percent": 65},
	"progress_ms": 45210,
	"is_playing": true,
	"context": {"uri": "spotify:playlist:pl-1"},
	"item": {
		"id": "tr-1",
		"uri": "spotify:track:tr-1",
		"name": "Midnight City",
		"duration_ms": 243960,
		"artists": [{"name": "M83"}],
		"album": {"name": "Hurry Up, We're Dreaming"}
	}
}`

func TestCurrentPlayback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/player" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, playbackJSON)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	snapshot, err := g.CurrentPlayback(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot == nil {
		t.Fatal("expected a snapshot")
	}
	if snapshot.Track.Title != "Midnight City" || snapshot.Track.Artist != "M83" {
		t.Errorf("unexpected track: %+v", snapshot.Track)
	}
	if snapshot.ProgressMS != 45210 || !snapshot.IsPlaying {
		t.Errorf("unexpected playback state: %+v", snapshot)
	}
	if snapshot.Volume != 65 || snapshot.DeviceID != "dev-1" {
		t.Errorf("unexpected device state: %+v", snapshot)
	}
	if snapshot.ContextURI != "spotify:playlist:pl-1" {
		t.Errorf("unexpected context: %q", snapshot.ContextURI)
	}
}

func TestCurrentPlaybackIdle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	snapshot, err := g.CurrentPlayback(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot != nil {
		t.Errorf("expected nil snapshot for idle playback, got %+v", snapshot)
	}
}

func TestPlaySubmitsURIsAndPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/me/player/play" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("device_id"); got != "dev-1" {
			t.Errorf("expected device_id dev-1, got %q", got)
		}

		var body playRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(body.URIs) != 3 {
			t.Errorf("expected 3 uris, got %d", len(body.URIs))
		}
		if body.Offset == nil || body.Offset.Position != 1 {
			t.Errorf("expected offset position 1, got %+v", body.Offset)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	uris := []string{"spotify:track:a", "spotify:track:b", "spotify:track:c"}
	if err := g.Play(context.Background(), "dev-1", uris, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSeekAndVolumeClamping(t *testing.T) {
	var gotPosition, gotVolume string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/player/seek":
			gotPosition = r.URL.Query().Get("position_ms")
		case "/me/player/volume":
			gotVolume = r.URL.Query().Get("volume_percent")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})

	if err := g.Seek(context.Background(), -500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPosition != "0" {
		t.Errorf("expected negative seek clamped to 0, got %q", gotPosition)
	}

	if err := g.SetVolume(context.Background(), 120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotVolume != "100" {
		t.Errorf("expected volume clamped to 100, got %q", gotVolume)
	}
}

func TestQueueAndEnqueue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me/player/queue":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"currently_playing": {"id": "tr-0", "uri": "spotify:track:tr-0", "name": "Now"},
				"queue": [
					{"id": "tr-1", "uri": "spotify:track:tr-1", "name": "First", "artists": [{"name": "A"}]},
					{"id": "tr-2", "uri": "spotify:track:tr-2", "name": "Second", "artists": [{"name": "B"}]}
				]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/me/player/queue":
			if got := r.URL.Query().Get("uri"); got != "spotify:track:tr-9" {
				t.Errorf("expected uri spotify:track:tr-9, got %q", got)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})

	tracks, err := g.Queue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 2 || tracks[0].Title != "First" || tracks[1].Title != "Second" {
		t.Errorf("unexpected queue: %+v", tracks)
	}

	if err := g.Enqueue(context.Background(), "spotify:track:tr-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "midnight city" || q.Get("type") != "track" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tracks": {"total": 1, "items": [
			{"id": "tr-1", "uri": "spotify:track:tr-1", "name": "Midnight City",
			 "duration_ms": 243960, "artists": [{"name": "M83"}], "album": {"name": "Hurry Up, We're Dreaming"}}
		]}}`)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	tracks, err := g.SearchTracks(context.Background(), "midnight city", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Album != "Hurry Up, We're Dreaming" {
		t.Errorf("unexpected results: %+v", tracks)
	}
}
