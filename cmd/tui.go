package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"vibes/internal/player"
	"vibes/internal/shared"
	"vibes/internal/ui"
)

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"t"},
		Usage:   "Launch the interactive player",
		Action:  r.TUI,
	}
}

// TUI launches the interactive terminal player. The sync engine runs in the
// background for the lifetime of the program.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vibes-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	engine := player.NewDispatcher(
		sess.gateway,
		sess.library,
		replenisher(sess.library),
		r.config.Player,
		fileLogger,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go engine.Run(runCtx)

	model := ui.NewModel(runCtx, engine, sess.gateway, sess.library)
	model.SetSteps(r.config.Player.VolumeStep, r.config.Player.SeekStepMS)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
