package player

import (
	"time"

	"vibes/internal/models"
)

// notificationTicks is how many engine ticks a notification stays visible.
// At the 80ms tick cadence this is roughly three seconds.
const notificationTicks = 38

// Machine holds the local belief about playback and reconciles it against
// remote snapshots. It is not safe for concurrent use: the [Dispatcher]
// serializes all access onto its event loop.
type Machine struct {
	hasTrack field[bool]
	track    field[models.Track]
	playing  field[bool]
	volume   field[int]
	liked    field[bool]

	// Progress is special-cased: it changes continuously, so equality
	// reconciliation is meaningless. The remote value wins unless a seek is
	// still in flight.
	progressMS        int
	progressConfirmed int
	progressPending   bool
	progressGen       uint64

	deviceID   string
	contextURI string
	lastTick   time.Time

	note      string
	noteTicks int

	nextGen     uint64
	outstanding map[uint64]struct{}
}

// NewMachine creates an idle Machine anchored at now.
func NewMachine(now time.Time) *Machine {
	return &Machine{
		lastTick:    now,
		outstanding: map[uint64]struct{}{},
	}
}

func (m *Machine) isOutstanding(gen uint64) bool {
	_, ok := m.outstanding[gen]
	return ok
}

// Apply mutates the belief optimistically for the given command and returns
// the generation the eventual completion must carry.
func (m *Machine) Apply(cmd Command) uint64 {
	m.nextGen++
	gen := m.nextGen
	m.outstanding[gen] = struct{}{}

	switch cmd.Kind {
	case CmdToggle:
		m.playing.Optimistic(!m.playing.Value(), gen)
	case CmdPause:
		m.playing.Optimistic(false, gen)
	case CmdResume:
		m.playing.Optimistic(true, gen)
	case CmdNext, CmdPrevious:
		if cmd.Track.URI != "" {
			m.hasTrack.Optimistic(true, gen)
			m.track.Optimistic(cmd.Track, gen)
			m.liked.Optimistic(false, gen)
		}
		m.playing.Optimistic(true, gen)
		m.setProgressOptimistic(0, gen)
	case CmdSeek:
		m.setProgressOptimistic(cmd.SeekMS, gen)
	case CmdVolume:
		m.volume.Optimistic(clampVolume(cmd.Volume), gen)
	case CmdPlay:
		if cmd.Track.URI != "" {
			m.hasTrack.Optimistic(true, gen)
			m.track.Optimistic(cmd.Track, gen)
			m.liked.Optimistic(false, gen)
		}
		m.playing.Optimistic(true, gen)
		m.setProgressOptimistic(0, gen)
	case CmdSetLike:
		m.liked.Optimistic(cmd.Liked, gen)
	case CmdEnqueue:
		// No belief change; the queue lives server-side.
	}

	return gen
}

// Resolve settles a command completion. On failure every field still tagged
// with gen reverts to its last confirmed value; on success the fields stay
// pending until a poll confirms or overrides them.
func (m *Machine) Resolve(gen uint64, err error) {
	delete(m.outstanding, gen)
	if err == nil {
		return
	}

	m.hasTrack.Revert(gen)
	m.track.Revert(gen)
	m.playing.Revert(gen)
	m.volume.Revert(gen)
	m.liked.Revert(gen)
	if m.progressPending && m.progressGen == gen {
		m.progressMS = m.progressConfirmed
		m.progressPending = false
	}
}

// ApplySnapshot reconciles the belief against a remote poll. A nil snapshot
// means nothing is playing.
func (m *Machine) ApplySnapshot(s *models.PlaybackSnapshot, now time.Time) {
	if s == nil {
		m.hasTrack.Reconcile(false, m.isOutstanding(m.hasTrack.gen))
		m.playing.Reconcile(false, m.isOutstanding(m.playing.gen))
		if !m.hasTrack.Value() {
			m.track.Set(models.Track{})
			m.progressMS = 0
			m.progressConfirmed = 0
			m.progressPending = false
		}
		return
	}

	m.hasTrack.Reconcile(true, m.isOutstanding(m.hasTrack.gen))
	m.track.Reconcile(s.Track, m.isOutstanding(m.track.gen))
	m.playing.Reconcile(s.IsPlaying, m.isOutstanding(m.playing.gen))
	m.volume.Reconcile(s.Volume, m.isOutstanding(m.volume.gen))
	m.deviceID = s.DeviceID
	m.contextURI = s.ContextURI

	m.progressConfirmed = s.ProgressMS
	if !m.progressPending || !m.isOutstanding(m.progressGen) {
		m.progressMS = s.ProgressMS
		m.progressPending = false
		m.lastTick = now
	}
}

// SetLiked records the confirmed like state for a track. Ignored when the
// belief has moved on to a different track or a like toggle is in flight.
func (m *Machine) SetLiked(trackID string, liked bool) {
	if m.track.Value().ID != trackID {
		return
	}
	if m.liked.Pending() && m.isOutstanding(m.liked.gen) {
		return
	}
	m.liked.Set(liked)
}

// Tick advances the playhead by wall-clock time while playing and ages the
// active notification.
func (m *Machine) Tick(now time.Time) {
	if m.playing.Value() && m.hasTrack.Value() {
		m.progressMS += int(now.Sub(m.lastTick).Milliseconds())
		if d := m.track.Value().DurationMS; d > 0 && m.progressMS > d {
			m.progressMS = d
		}
	}
	m.lastTick = now

	if m.noteTicks > 0 {
		m.noteTicks--
		if m.noteTicks == 0 {
			m.note = ""
		}
	}
}

// Notify sets a short-lived status line.
func (m *Machine) Notify(text string) {
	m.note = text
	m.noteTicks = notificationTicks
}

// View builds the published belief.
func (m *Machine) View() Belief {
	pending := m.hasTrack.Pending() || m.track.Pending() || m.playing.Pending() ||
		m.volume.Pending() || m.liked.Pending() || m.progressPending

	return Belief{
		HasTrack:     m.hasTrack.Value(),
		Track:        m.track.Value(),
		ProgressMS:   m.progressMS,
		Playing:      m.playing.Value(),
		Volume:       m.volume.Value(),
		Liked:        m.liked.Value(),
		DeviceID:     m.deviceID,
		ContextURI:   m.contextURI,
		Pending:      pending,
		Notification: m.note,
	}
}

func (m *Machine) setProgressOptimistic(ms int, gen uint64) {
	if ms < 0 {
		ms = 0
	}
	if !m.progressPending {
		m.progressConfirmed = m.progressMS
	}
	m.progressMS = ms
	m.progressPending = true
	m.progressGen = gen
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
