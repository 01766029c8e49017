package player

import "vibes/internal/models"

// Prefetcher is the engine's look-ahead buffer over the playback origin
// (a playlist, the liked songs list, or a search result set).
//
// It exists so "next" can be optimistic: the buffer's head is the predicted
// next track. The buffer is capacity-bounded, replenished from the origin
// when it runs low (at most one replenish in flight), and invalidated
// whenever playback jumps somewhere the buffer didn't predict.
type Prefetcher struct {
	capacity int
	lowWater int

	origin     string
	tracks     []models.Track
	nextOffset int
	refilling  bool
	exhausted  bool
}

// NewPrefetcher creates a buffer with the given bounds. Non-positive bounds
// fall back to the defaults in the embedded example config.
func NewPrefetcher(capacity, lowWater int) *Prefetcher {
	if capacity <= 0 {
		capacity = 50
	}
	if lowWater <= 0 || lowWater >= capacity {
		lowWater = 10
	}
	return &Prefetcher{capacity: capacity, lowWater: lowWater}
}

// Rebuild replaces the buffer with upcoming tracks from a new origin.
// nextOffset is the position in the origin listing right after the supplied
// tracks, where replenishment resumes.
func (p *Prefetcher) Rebuild(origin string, upcoming []models.Track, nextOffset int) {
	if len(upcoming) > p.capacity {
		upcoming = upcoming[:p.capacity]
	}
	p.origin = origin
	p.tracks = append(p.tracks[:0], upcoming...)
	p.nextOffset = nextOffset
	p.refilling = false
	p.exhausted = false
}

// Invalidate empties the buffer. Called when playback jumps outside the
// buffer's prediction, such as a device takeover or a track started from
// another client.
func (p *Prefetcher) Invalidate() {
	p.origin = ""
	p.tracks = p.tracks[:0]
	p.refilling = false
	p.exhausted = false
}

// Origin returns the current playback origin, empty when invalidated.
func (p *Prefetcher) Origin() string { return p.origin }

// Len returns the number of buffered tracks.
func (p *Prefetcher) Len() int { return len(p.tracks) }

// Peek returns the predicted next track.
func (p *Prefetcher) Peek() (models.Track, bool) {
	if len(p.tracks) == 0 {
		return models.Track{}, false
	}
	return p.tracks[0], true
}

// Upcoming returns a copy of the buffered tracks, in play order.
func (p *Prefetcher) Upcoming() []models.Track {
	out := make([]models.Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// TrackStarted advances the buffer past the track that just started playing.
// A track the buffer didn't predict invalidates it; the return value reports
// that external jump.
func (p *Prefetcher) TrackStarted(track models.Track) (external bool) {
	if p.origin == "" || track.URI == "" {
		return false
	}

	for i, t := range p.tracks {
		if t.URI == track.URI {
			p.tracks = p.tracks[i+1:]
			return false
		}
	}

	p.Invalidate()
	return true
}

// NeedsRefill reports whether a replenish should start: the buffer is below
// its low-water mark, bound to an origin with tracks left, and no replenish
// is already in flight.
func (p *Prefetcher) NeedsRefill() bool {
	return p.origin != "" && !p.refilling && !p.exhausted && len(p.tracks) < p.lowWater
}

// BeginRefill marks a replenish in flight and returns the origin offset to
// fetch from.
func (p *Prefetcher) BeginRefill() int {
	p.refilling = true
	return p.nextOffset
}

// CompleteRefill appends fetched tracks up to capacity and returns the slice
// it accepted, in play order. An empty fetch marks the origin exhausted so no
// further replenishes start.
func (p *Prefetcher) CompleteRefill(fetched []models.Track) []models.Track {
	p.refilling = false
	if len(fetched) == 0 {
		p.exhausted = true
		return nil
	}
	p.nextOffset += len(fetched)
	room := p.capacity - len(p.tracks)
	if room <= 0 {
		return nil
	}
	if len(fetched) > room {
		fetched = fetched[:room]
	}
	p.tracks = append(p.tracks, fetched...)
	return fetched
}

// FailRefill clears the in-flight flag so a later low-water check can retry.
func (p *Prefetcher) FailRefill() {
	p.refilling = false
}
