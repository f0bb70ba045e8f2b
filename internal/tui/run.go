package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoLookup is returned when the explorer is started without a dataset.
var ErrNoLookup = errors.New("explorer requires an indexed dataset")

// Run starts the explorer and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Lookup == nil {
		return ErrNoLookup
	}

	p := tea.NewProgram(
		newModel(cfg),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}
