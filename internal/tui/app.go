package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"streamview/internal/render"
)

// Options configures Run.
type Options struct {
	Source         Source
	Renderer       *render.Renderer
	RevealInterval time.Duration
	RevealBatch    int
	Title          string
	Version        string
	Logger         *slog.Logger
	// Inline keeps the program in the normal screen buffer.
	Inline bool
}

// Run launches the viewer and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Source == nil {
		return errors.New("no event source")
	}
	if opts.Renderer == nil {
		r, err := render.New(render.DefaultOptions())
		if err != nil {
			return err
		}
		opts.Renderer = r
	}
	if opts.Title == "" {
		opts.Title = "streamview"
	}

	m := initialModel(ctx, opts)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !opts.Inline {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, progOpts...)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
