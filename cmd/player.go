package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"vibes/internal/formatter"
	"vibes/internal/shared"
)

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show current playback",
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output as JSON"}},
		Action: r.Status,
	}
}

func pauseCommand(r *Runner) *cli.Command {
	return &cli.Command{Name: "pause", Usage: "Pause playback", Action: r.Pause}
}

func resumeCommand(r *Runner) *cli.Command {
	return &cli.Command{Name: "resume", Usage: "Resume playback", Action: r.Resume}
}

func nextCommand(r *Runner) *cli.Command {
	return &cli.Command{Name: "next", Usage: "Skip to the next track", Action: r.Next}
}

func prevCommand(r *Runner) *cli.Command {
	return &cli.Command{Name: "prev", Usage: "Skip to the previous track", Action: r.Previous}
}

func volumeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "volume",
		Usage:     "Set volume: an absolute percent or a signed step (+5, -10)",
		ArgsUsage: "<percent|+n|-n>",
		Action:    r.Volume,
	}
}

func seekCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "seek",
		Usage:     "Seek: absolute seconds or a signed step (+10, -10)",
		ArgsUsage: "<seconds|+n|-n>",
		Action:    r.Seek,
	}
}

func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{Name: "like", Usage: "Save the current track to liked songs", Action: r.Like}
}

func unlikeCommand(r *Runner) *cli.Command {
	return &cli.Command{Name: "unlike", Usage: "Remove the current track from liked songs", Action: r.Unlike}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search tracks",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum results", Value: 20},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: r.Search,
	}
}

func likedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "liked",
		Usage: "List liked songs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Page size", Value: 20},
			&cli.IntFlag{Name: "offset", Usage: "Page offset", Value: 0},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: r.Liked,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "playlists",
		Usage:  "List your playlists",
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output as JSON"}},
		Action: r.Playlists,
	}
}

func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "queue",
		Usage:  "Show the playback queue",
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output as JSON"}},
		Action: r.Queue,
	}
}

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "devices",
		Usage:  "List available playback devices",
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output as JSON"}},
		Action: r.Devices,
	}
}

// Status prints a one-line playback summary, including the like state of the
// current track.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	snapshot, err := sess.gateway.CurrentPlayback(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, true)
	}

	belief := beliefFromSnapshot(snapshot)
	if belief.HasTrack && belief.Track.ID != "" {
		if saved, err := sess.library.TracksSaved(ctx, []string{belief.Track.ID}); err == nil && len(saved) == 1 {
			belief.Liked = saved[0]
		}
	}

	return r.writePlain("%s\n", formatter.Status(belief))
}

// Pause pauses playback on the active device.
func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.gateway.Pause(ctx); err != nil {
		return err
	}
	return r.writePlain("⏸ paused\n")
}

// Resume continues playback on the active device.
func (r *Runner) Resume(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.gateway.Resume(ctx); err != nil {
		return err
	}
	return r.writePlain("▶ resumed\n")
}

// Next skips forward.
func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.gateway.Next(ctx); err != nil {
		return err
	}
	return r.writePlain("⏭ next\n")
}

// Previous skips backward.
func (r *Runner) Previous(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.gateway.Previous(ctx); err != nil {
		return err
	}
	return r.writePlain("⏮ previous\n")
}

// Volume sets an absolute volume or applies a signed step against the
// current volume.
func (r *Runner) Volume(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	arg := cmd.Args().First()
	current := 0
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		snapshot, err := sess.gateway.CurrentPlayback(ctx)
		if err != nil {
			return err
		}
		if snapshot == nil {
			return shared.ErrNothingPlaying
		}
		current = snapshot.Volume
	}

	target, err := parseStep(arg, current)
	if err != nil {
		return err
	}

	if err := sess.gateway.SetVolume(ctx, target); err != nil {
		return err
	}
	return r.writePlain("vol %d%%\n", clamp(target, 0, 100))
}

// Seek moves the playhead to an absolute position in seconds, or by a signed
// step against the current position.
func (r *Runner) Seek(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	arg := cmd.Args().First()
	current := 0
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		snapshot, err := sess.gateway.CurrentPlayback(ctx)
		if err != nil {
			return err
		}
		if snapshot == nil {
			return shared.ErrNothingPlaying
		}
		current = snapshot.ProgressMS / 1000
	}

	seconds, err := parseStep(arg, current)
	if err != nil {
		return err
	}
	if seconds < 0 {
		seconds = 0
	}

	if err := sess.gateway.Seek(ctx, seconds*1000); err != nil {
		return err
	}
	return r.writePlain("seek → %s\n", shared.FormatDuration(seconds*1000))
}

// Like saves the currently playing track.
func (r *Runner) Like(ctx context.Context, cmd *cli.Command) error {
	return r.setLike(ctx, true)
}

// Unlike removes the currently playing track from liked songs.
func (r *Runner) Unlike(ctx context.Context, cmd *cli.Command) error {
	return r.setLike(ctx, false)
}

func (r *Runner) setLike(ctx context.Context, liked bool) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	snapshot, err := sess.gateway.CurrentPlayback(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil || snapshot.Track.ID == "" {
		return shared.ErrNothingPlaying
	}

	if liked {
		if err := sess.library.SaveTrack(ctx, snapshot.Track.ID); err != nil {
			return err
		}
		return r.writePlain("♥ %s\n", snapshot.Track.Title)
	}

	if err := sess.library.RemoveSavedTrack(ctx, snapshot.Track.ID); err != nil {
		return err
	}
	return r.writePlain("removed: %s\n", snapshot.Track.Title)
}

// Search runs a track search and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	tracks, err := sess.gateway.SearchTracks(ctx, query, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.writePlain("%s\n", formatter.TrackList(tracks))
}

// Liked lists a page of the user's liked songs.
func (r *Runner) Liked(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	saved, total, err := sess.library.SavedTracks(ctx, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(saved, true)
	}
	return r.writePlain("%s\n", formatter.SavedTrackList(saved, total))
}

// Playlists lists the user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	playlists, _, err := sess.library.Playlists(ctx, 50, 0)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}
	return r.writePlain("%s\n", formatter.PlaylistList(playlists))
}

// Queue shows the current track and the server-side queue.
func (r *Runner) Queue(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	snapshot, err := sess.gateway.CurrentPlayback(ctx)
	if err != nil {
		return err
	}
	upcoming, err := sess.gateway.Queue(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"current": snapshot, "queue": upcoming}, true)
	}
	return r.writePlain("%s\n", formatter.QueueList(beliefFromSnapshot(snapshot), upcoming))
}

// Devices lists playback devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	devices, err := sess.gateway.Devices(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, true)
	}
	return r.writePlain("%s\n", formatter.DeviceList(devices))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
