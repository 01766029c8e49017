package player

import (
	"vibes/internal/models"
)

// field is one optimistically-updated piece of playback state.
//
// It remembers the last remotely-confirmed value separately from the
// displayed value: a failed command reverts to exactly what the server last
// confirmed, not to a guess. The generation tags which command produced the
// current optimistic value, so a stale completion can never revert a newer
// write.
type field[T comparable] struct {
	confirmed T
	value     T
	pending   bool
	gen       uint64
}

// Value returns the displayed value.
func (f field[T]) Value() T { return f.value }

// Pending reports whether the value awaits remote confirmation.
func (f field[T]) Pending() bool { return f.pending }

// Set records a remotely-confirmed value.
func (f *field[T]) Set(v T) {
	f.confirmed = v
	f.value = v
	f.pending = false
}

// Optimistic applies a local prediction tagged with the command generation
// that produced it. A newer write supersedes any older pending one.
func (f *field[T]) Optimistic(v T, gen uint64) {
	f.value = v
	f.pending = true
	f.gen = gen
}

// Revert undoes the optimistic value of the given generation. Ignored when a
// newer write superseded it or the field was already confirmed.
func (f *field[T]) Revert(gen uint64) {
	if f.pending && f.gen == gen {
		f.value = f.confirmed
		f.pending = false
	}
}

// Reconcile folds in a polled remote value. A confirmed field always adopts
// the remote truth. A pending field confirms when the remote matches the
// prediction; when it doesn't, the prediction survives only while its
// command is still in flight.
func (f *field[T]) Reconcile(remote T, outstanding bool) {
	if !f.pending {
		f.Set(remote)
		return
	}
	if f.value == remote {
		f.Set(remote)
		return
	}
	if !outstanding {
		f.Set(remote)
	}
}

// Belief is the engine's published view of playback: what the UI renders.
type Belief struct {
	HasTrack   bool
	Track      models.Track
	ProgressMS int
	Playing    bool
	Volume     int
	Liked      bool
	DeviceID   string
	ContextURI string

	// Pending reports whether any field awaits remote confirmation.
	Pending bool

	// Notification is a short-lived status line, empty when expired.
	Notification string
}
