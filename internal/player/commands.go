package player

import "vibes/internal/models"

// Kind identifies a playback command.
type Kind int

const (
	CmdToggle Kind = iota
	CmdPause
	CmdResume
	CmdNext
	CmdPrevious
	CmdSeek
	CmdVolume
	CmdPlay
	CmdEnqueue
	CmdSetLike
)

func (k Kind) String() string {
	switch k {
	case CmdToggle:
		return "toggle"
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdNext:
		return "next"
	case CmdPrevious:
		return "previous"
	case CmdSeek:
		return "seek"
	case CmdVolume:
		return "volume"
	case CmdPlay:
		return "play"
	case CmdEnqueue:
		return "enqueue"
	case CmdSetLike:
		return "like"
	default:
		return "unknown"
	}
}

// Command is one user intention submitted to the engine.
//
// Seek and Volume carry absolute targets; [Dispatcher.SeekBy] and
// [Dispatcher.VolumeBy] resolve relative steps against the current belief
// before submission.
type Command struct {
	Kind Kind

	SeekMS int
	Volume int

	// Play: the track list to submit and the index to start from.
	URIs     []string
	Position int
	DeviceID string

	// The track the command concerns: the expected next track for CmdNext,
	// the chosen track for CmdPlay, the enqueued track for CmdEnqueue.
	Track models.Track

	// SetLike: the target state for Track.
	Liked bool

	// Origin describes where the track list came from, for queue
	// replenishment ("spotify:playlist:..." or a search/library origin).
	Origin string

	// Play: the tracks after Position, seeding the look-ahead buffer, and
	// the origin offset where replenishment resumes.
	Upcoming   []models.Track
	NextOffset int
}
