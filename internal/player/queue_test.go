package player

import (
	"fmt"
	"testing"

	"vibes/internal/models"
)

func makeTracks(n, start int) []models.Track {
	tracks := make([]models.Track, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("tr-%d", start+i)
		tracks = append(tracks, models.Track{ID: id, URI: "spotify:track:" + id, Title: id})
	}
	return tracks
}

func TestPrefetcherAdvancesOnPredictedTrack(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(5, 0), 5)

	head, ok := p.Peek()
	if !ok || head.ID != "tr-0" {
		t.Fatalf("unexpected head: %+v", head)
	}

	if external := p.TrackStarted(head); external {
		t.Error("predicted track must not be treated as an external jump")
	}
	if head, _ = p.Peek(); head.ID != "tr-1" {
		t.Errorf("expected head tr-1 after advance, got %s", head.ID)
	}
}

func TestPrefetcherSkipsWithinBuffer(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(5, 0), 5)

	// Playback lands three tracks ahead; the skipped entries are consumed.
	track := models.Track{ID: "tr-3", URI: "spotify:track:tr-3"}
	if external := p.TrackStarted(track); external {
		t.Error("a track inside the buffer is not an external jump")
	}
	if head, _ := p.Peek(); head.ID != "tr-4" {
		t.Errorf("expected head tr-4, got %s", head.ID)
	}
}

func TestPrefetcherInvalidatesOnExternalJump(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(5, 0), 5)

	stranger := models.Track{ID: "tr-99", URI: "spotify:track:tr-99"}
	if external := p.TrackStarted(stranger); !external {
		t.Error("expected external jump detection")
	}
	if p.Origin() != "" || p.Len() != 0 {
		t.Errorf("expected invalidated buffer, origin=%q len=%d", p.Origin(), p.Len())
	}
	if p.NeedsRefill() {
		t.Error("an invalidated buffer has no origin to refill from")
	}
}

func TestPrefetcherRefillCycle(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(12, 0), 12)

	if p.NeedsRefill() {
		t.Fatal("expected no refill above the low-water mark")
	}

	for i := 0; i < 3; i++ {
		head, _ := p.Peek()
		p.TrackStarted(head)
	}
	if !p.NeedsRefill() {
		t.Fatalf("expected refill below low-water mark, len=%d", p.Len())
	}

	offset := p.BeginRefill()
	if offset != 12 {
		t.Errorf("expected refill offset 12, got %d", offset)
	}
	if p.NeedsRefill() {
		t.Error("expected at most one replenish in flight")
	}

	p.CompleteRefill(makeTracks(20, 12))
	if p.Len() != 29 {
		t.Errorf("expected 29 buffered tracks, got %d", p.Len())
	}
	if got := p.BeginRefill(); got != 32 {
		t.Errorf("expected next offset 32, got %d", got)
	}
}

func TestPrefetcherCapacityBound(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(80, 0), 80)
	if p.Len() != 50 {
		t.Errorf("expected rebuild truncated to capacity, got %d", p.Len())
	}

	p.tracks = p.tracks[:45]
	p.BeginRefill()
	p.CompleteRefill(makeTracks(20, 80))
	if p.Len() != 50 {
		t.Errorf("expected refill capped at capacity, got %d", p.Len())
	}
}

func TestPrefetcherExhaustedOrigin(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(3, 0), 3)

	p.BeginRefill()
	p.CompleteRefill(nil)

	if p.NeedsRefill() {
		t.Error("expected no further refills from an exhausted origin")
	}
}

func TestPrefetcherFailedRefillRetries(t *testing.T) {
	p := NewPrefetcher(50, 10)
	p.Rebuild("spotify:playlist:pl-1", makeTracks(3, 0), 3)

	p.BeginRefill()
	p.FailRefill()

	if !p.NeedsRefill() {
		t.Error("expected a failed refill to be retryable")
	}
}
