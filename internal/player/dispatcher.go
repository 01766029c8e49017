package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"vibes/internal/models"
	"vibes/internal/shared"
)

// API is the slice of the remote gateway the engine drives. Implemented by
// [vibes/internal/spotify.Gateway].
type API interface {
	CurrentPlayback(ctx context.Context) (*models.PlaybackSnapshot, error)
	Play(ctx context.Context, deviceID string, uris []string, position int) error
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, positionMS int) error
	SetVolume(ctx context.Context, percent int) error
	Enqueue(ctx context.Context, uri string) error
}

// LikeStore is the slice of the library the engine uses for the like toggle.
// Implemented by [vibes/internal/spotify.Library].
type LikeStore interface {
	SaveTrack(ctx context.Context, trackID string) error
	RemoveSavedTrack(ctx context.Context, trackID string) error
	TracksSaved(ctx context.Context, trackIDs []string) ([]bool, error)
}

// ReplenishFunc fetches more tracks from a playback origin, starting at
// offset, to refill the look-ahead buffer.
type ReplenishFunc func(ctx context.Context, origin string, offset int) ([]models.Track, error)

type completion struct {
	gen  uint64
	kind Kind
	cmd  Command
	err  error
}

type pollResult struct {
	seq      uint64
	snapshot *models.PlaybackSnapshot
	err      error
}

type likeResult struct {
	trackID string
	liked   bool
}

type refillResult struct {
	tracks []models.Track
	err    error
}

// Dispatcher is the engine's single-writer event loop.
//
// Everything that touches the [Machine] or [Prefetcher] — commands, poll
// results, command completions, ticks — arrives on the loop's channels and
// is handled by the one goroutine inside [Dispatcher.Run]. Remote calls
// themselves run on short-lived goroutines and report back as events.
type Dispatcher struct {
	api       API
	likes     LikeStore
	replenish ReplenishFunc
	machine   *Machine
	prefetch  *Prefetcher
	logger    *log.Logger

	pollInterval time.Duration
	tickInterval time.Duration

	commands    chan Command
	completions chan completion
	polls       chan pollResult
	likeResults chan likeResult
	refills     chan refillResult
	beliefs     chan Belief

	// Loop-private poll bookkeeping. A poll whose sequence predates the
	// barrier was issued before the latest command and is discarded.
	pollSeq     uint64
	pollBarrier uint64
	lastApplied uint64

	mu     sync.Mutex
	latest Belief

	now func() time.Time
}

// NewDispatcher creates a Dispatcher. likes and replenish may be nil; the
// like toggle and queue replenishment are then disabled.
func NewDispatcher(api API, likes LikeStore, replenish ReplenishFunc, cfg shared.PlayerConfig, logger *log.Logger) *Dispatcher {
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 2000
	}
	if cfg.TickIntervalMS <= 0 {
		cfg.TickIntervalMS = 80
	}

	return &Dispatcher{
		api:          api,
		likes:        likes,
		replenish:    replenish,
		machine:      NewMachine(time.Now()),
		prefetch:     NewPrefetcher(cfg.QueueCapacity, cfg.QueueLowWater),
		logger:       logger,
		pollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		tickInterval: time.Duration(cfg.TickIntervalMS) * time.Millisecond,
		commands:     make(chan Command, 16),
		completions:  make(chan completion, 16),
		polls:        make(chan pollResult, 4),
		likeResults:  make(chan likeResult, 4),
		refills:      make(chan refillResult, 1),
		beliefs:      make(chan Belief, 1),
		now:          time.Now,
	}
}

// Beliefs returns the belief feed. The channel holds only the newest belief;
// slow consumers see the latest state, never a backlog.
func (d *Dispatcher) Beliefs() <-chan Belief {
	return d.beliefs
}

// Latest returns the most recently published belief.
func (d *Dispatcher) Latest() Belief {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Submit hands a command to the loop without blocking. It reports false when
// the loop is saturated and the command was dropped.
func (d *Dispatcher) Submit(cmd Command) bool {
	select {
	case d.commands <- cmd:
		return true
	default:
		return false
	}
}

// SeekBy submits a seek relative to the current playhead.
func (d *Dispatcher) SeekBy(deltaMS int) bool {
	b := d.Latest()
	if !b.HasTrack {
		return false
	}
	target := b.ProgressMS + deltaMS
	if max := b.Track.DurationMS; max > 0 && target > max {
		target = max
	}
	return d.Submit(Command{Kind: CmdSeek, SeekMS: target})
}

// VolumeBy submits a volume change relative to the current volume.
func (d *Dispatcher) VolumeBy(delta int) bool {
	return d.Submit(Command{Kind: CmdVolume, Volume: d.Latest().Volume + delta})
}

// ToggleLike submits a like toggle for the current track.
func (d *Dispatcher) ToggleLike() bool {
	b := d.Latest()
	if !b.HasTrack || b.Track.ID == "" {
		return false
	}
	return d.Submit(Command{Kind: CmdSetLike, Track: b.Track, Liked: !b.Liked})
}

// Run drives the event loop until ctx is cancelled. It polls immediately on
// entry so the first belief reflects the remote state, not the zero value.
func (d *Dispatcher) Run(ctx context.Context) {
	pollTicker := time.NewTicker(d.pollInterval)
	defer pollTicker.Stop()
	tickTicker := time.NewTicker(d.tickInterval)
	defer tickTicker.Stop()

	d.startPoll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-d.commands:
			d.handleCommand(ctx, cmd)
		case c := <-d.completions:
			d.handleCompletion(ctx, c)
		case p := <-d.polls:
			d.handlePoll(ctx, p)
		case r := <-d.likeResults:
			d.machine.SetLiked(r.trackID, r.liked)
			d.publish()
		case r := <-d.refills:
			d.handleRefill(ctx, r)
		case <-pollTicker.C:
			d.startPoll(ctx)
		case <-tickTicker.C:
			d.machine.Tick(d.now())
			d.publish()
		}
	}
}

// startPoll launches one snapshot fetch tagged with the next poll sequence.
func (d *Dispatcher) startPoll(ctx context.Context) {
	d.pollSeq++
	seq := d.pollSeq

	go func() {
		snapshot, err := d.api.CurrentPlayback(ctx)
		select {
		case d.polls <- pollResult{seq: seq, snapshot: snapshot, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (d *Dispatcher) handlePoll(ctx context.Context, p pollResult) {
	if p.seq <= d.pollBarrier || p.seq <= d.lastApplied {
		d.logger.Debug("discarding stale poll", "seq", p.seq, "barrier", d.pollBarrier)
		return
	}

	if p.err != nil {
		// The belief stays as-is; the next poll gets a fresh chance.
		d.logger.Warn("playback poll failed", "error", p.err)
		return
	}

	before := d.machine.View()
	d.machine.ApplySnapshot(p.snapshot, d.now())
	d.lastApplied = p.seq
	after := d.machine.View()

	if after.HasTrack && after.Track.URI != before.Track.URI {
		if external := d.prefetch.TrackStarted(after.Track); external {
			d.logger.Debug("external track jump, look-ahead invalidated", "track", after.Track.Title)
		}
		d.requestLiked(ctx, after.Track.ID)
	}

	d.maybeRefill(ctx)
	d.publish()
}

func (d *Dispatcher) handleCommand(ctx context.Context, cmd Command) {
	// A toggle resolves to a concrete direction against the belief as of
	// submission, so the remote call can never race a later poll.
	if cmd.Kind == CmdToggle {
		if d.machine.View().Playing {
			cmd.Kind = CmdPause
		} else {
			cmd.Kind = CmdResume
		}
	}

	// "Next" predicts from the look-ahead buffer when the caller didn't
	// name the expected track.
	if cmd.Kind == CmdNext && cmd.Track.URI == "" {
		if expected, ok := d.prefetch.Peek(); ok {
			cmd.Track = expected
		}
	}

	gen := d.machine.Apply(cmd)

	// Polls already in flight predate this command; their snapshots must
	// not be mistaken for its outcome.
	d.pollBarrier = d.pollSeq

	switch cmd.Kind {
	case CmdPlay:
		d.prefetch.Rebuild(cmd.Origin, cmd.Upcoming, cmd.NextOffset)
	case CmdNext:
		if cmd.Track.URI != "" {
			d.prefetch.TrackStarted(cmd.Track)
		}
	case CmdPrevious:
		// Going backwards leaves the buffer's predictions wrong.
		d.prefetch.Invalidate()
	}

	go func() {
		err := d.execute(ctx, cmd)
		select {
		case d.completions <- completion{gen: gen, kind: cmd.Kind, cmd: cmd, err: err}:
		case <-ctx.Done():
		}
	}()

	d.maybeRefill(ctx)
	d.publish()
}

func (d *Dispatcher) execute(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdPause:
		return d.api.Pause(ctx)
	case CmdResume:
		return d.api.Resume(ctx)
	case CmdNext:
		return d.api.Next(ctx)
	case CmdPrevious:
		return d.api.Previous(ctx)
	case CmdSeek:
		return d.api.Seek(ctx, cmd.SeekMS)
	case CmdVolume:
		return d.api.SetVolume(ctx, cmd.Volume)
	case CmdPlay:
		return d.api.Play(ctx, cmd.DeviceID, cmd.URIs, cmd.Position)
	case CmdEnqueue:
		return d.api.Enqueue(ctx, cmd.Track.URI)
	case CmdSetLike:
		if d.likes == nil {
			return fmt.Errorf("%w: library unavailable", shared.ErrInvalidInput)
		}
		if cmd.Liked {
			return d.likes.SaveTrack(ctx, cmd.Track.ID)
		}
		return d.likes.RemoveSavedTrack(ctx, cmd.Track.ID)
	default:
		return fmt.Errorf("%w: unknown command %d", shared.ErrInvalidInput, cmd.Kind)
	}
}

func (d *Dispatcher) handleCompletion(ctx context.Context, c completion) {
	d.machine.Resolve(c.gen, c.err)

	if c.err != nil {
		d.logger.Warn("command failed", "command", c.kind, "error", c.err)
		d.machine.Notify(commandFailureText(c.kind, c.err))
		d.publish()
		return
	}

	switch c.kind {
	case CmdEnqueue:
		d.machine.Notify("queued: " + c.cmd.Track.Title)
	case CmdSetLike:
		if c.cmd.Liked {
			d.machine.Notify("added to liked songs")
		} else {
			d.machine.Notify("removed from liked songs")
		}
	case CmdNext, CmdPrevious, CmdPlay:
		// Converge quickly after a track transition instead of waiting out
		// the poll interval.
		d.startPoll(ctx)
	}

	d.publish()
}

func (d *Dispatcher) handleRefill(ctx context.Context, r refillResult) {
	if r.err != nil {
		d.logger.Warn("queue replenish failed", "error", r.err)
		d.prefetch.FailRefill()
		return
	}
	accepted := d.prefetch.CompleteRefill(r.tracks)
	d.logger.Debug("queue replenished", "buffered", d.prefetch.Len())
	d.pushRemoteQueue(ctx, accepted)
}

// pushRemoteQueue mirrors freshly buffered tracks into the remote queue. The
// remote's next/previous behavior is only well-defined while its own queue
// has entries, so every replenish batch is also enqueued remotely, in order.
// One goroutine submits the batch sequentially to preserve that order.
func (d *Dispatcher) pushRemoteQueue(ctx context.Context, tracks []models.Track) {
	if len(tracks) == 0 {
		return
	}
	batch := make([]models.Track, len(tracks))
	copy(batch, tracks)

	go func() {
		for _, t := range batch {
			if t.URI == "" {
				continue
			}
			if err := d.api.Enqueue(ctx, t.URI); err != nil {
				d.logger.Warn("failed to mirror track into remote queue", "track", t.Title, "error", err)
				return
			}
		}
	}()
}

func (d *Dispatcher) maybeRefill(ctx context.Context) {
	if d.replenish == nil || !d.prefetch.NeedsRefill() {
		return
	}

	origin := d.prefetch.Origin()
	offset := d.prefetch.BeginRefill()

	go func() {
		tracks, err := d.replenish(ctx, origin, offset)
		select {
		case d.refills <- refillResult{tracks: tracks, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (d *Dispatcher) requestLiked(ctx context.Context, trackID string) {
	if d.likes == nil || trackID == "" {
		return
	}

	go func() {
		saved, err := d.likes.TracksSaved(ctx, []string{trackID})
		if err != nil || len(saved) == 0 {
			return
		}
		select {
		case d.likeResults <- likeResult{trackID: trackID, liked: saved[0]}:
		case <-ctx.Done():
		}
	}()
}

func (d *Dispatcher) publish() {
	b := d.machine.View()

	d.mu.Lock()
	d.latest = b
	d.mu.Unlock()

	// Latest-wins: drop the unread belief, if any, then publish.
	select {
	case <-d.beliefs:
	default:
	}
	select {
	case d.beliefs <- b:
	default:
	}
}

func commandFailureText(kind Kind, err error) string {
	switch {
	case errors.Is(err, shared.ErrNoActiveDevice):
		return "no active device: start playback on a device first"
	case errors.Is(err, shared.ErrRateLimited):
		return "rate limited, slow down"
	case errors.Is(err, shared.ErrAuthExpired), errors.Is(err, shared.ErrNotAuthenticated):
		return "session expired: run `vibes auth login`"
	default:
		return kind.String() + " failed"
	}
}
