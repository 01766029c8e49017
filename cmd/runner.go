package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"vibes/internal/auth"
	"vibes/internal/models"
	"vibes/internal/player"
	"vibes/internal/repositories"
	"vibes/internal/shared"
	"vibes/internal/spotify"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a
// file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tuiCommand,
		statusCommand, pauseCommand, resumeCommand, nextCommand, prevCommand,
		volumeCommand, seekCommand, likeCommand, unlikeCommand,
		searchCommand, likedCommand, playlistsCommand, queueCommand, devicesCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session bundles the wired-up service graph a command needs to talk to the
// API: credential store, token lifecycle, gateway, and library.
type session struct {
	db      *sql.DB
	store   *repositories.CredentialRepository
	manager *auth.Manager
	gateway *spotify.Gateway
	library *spotify.Library
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openSession wires the service graph. When acquire is set it blocks until a
// valid credential exists, running the browser flow if necessary.
func (r *Runner) openSession(ctx context.Context, acquire bool) (*session, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential cache: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := repositories.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repositories.NewCredentialRepository(db)
	manager, err := auth.NewManager(r.config.Credentials.Spotify, store, r.logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	if acquire {
		if _, err := manager.Acquire(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	gateway := spotify.NewGateway(r.config.Gateway, manager, r.logger)
	library, err := spotify.NewLibrary(gateway)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &session{db: db, store: store, manager: manager, gateway: gateway, library: library}, nil
}

// replenisher adapts the library into the engine's queue replenish hook.
// Origins: "liked", "playlist:<id>"; anything else (search results) has no
// backing listing and reports exhaustion.
func replenisher(library *spotify.Library) player.ReplenishFunc {
	return func(ctx context.Context, origin string, offset int) ([]models.Track, error) {
		switch {
		case origin == "liked":
			saved, _, err := library.SavedTracks(ctx, 50, offset)
			if err != nil {
				return nil, err
			}
			tracks := make([]models.Track, 0, len(saved))
			for _, s := range saved {
				tracks = append(tracks, s.Track)
			}
			return tracks, nil
		case strings.HasPrefix(origin, "playlist:"):
			tracks, _, err := library.PlaylistItems(ctx, strings.TrimPrefix(origin, "playlist:"), 50, offset)
			return tracks, err
		default:
			return nil, nil
		}
	}
}

// beliefFromSnapshot builds a belief for one-shot status rendering, outside
// the engine loop.
func beliefFromSnapshot(s *models.PlaybackSnapshot) player.Belief {
	if s == nil {
		return player.Belief{}
	}
	return player.Belief{
		HasTrack:   s.Track.URI != "",
		Track:      s.Track,
		ProgressMS: s.ProgressMS,
		Playing:    s.IsPlaying,
		Volume:     s.Volume,
		DeviceID:   s.DeviceID,
		ContextURI: s.ContextURI,
	}
}

// parseStep parses an absolute value or a signed relative step ("65", "+5",
// "-10") against the current value.
func parseStep(arg string, current int) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: value required", shared.ErrMissingArgument)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(arg, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidArgument, arg)
	}

	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		return current + n, nil
	}
	return n, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
