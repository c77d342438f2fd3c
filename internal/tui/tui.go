// Package tui is the interactive session engine: one bubbletea model owns the mode, the
// selection and the transient message, and every vault call re-enters it as a message.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks until the session ends. The vault is locked before Run returns on every path,
// including termination signals.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	stop := m.coord.WatchSignals(ctx, func(os.Signal) { p.Kill() })
	defer stop()
	defer func() {
		_ = m.coord.Lock(context.Background())
		_ = m.clip.ClearPending()
	}()

	_, err := p.Run()
	// Signal exits surface as ErrProgramKilled (our handler) or ErrInterrupted
	// (bubbletea's); the vault is locked either way.
	if err != nil && ctx.Err() == nil && !isSignalExit(err) {
		return err
	}
	return nil
}

func isSignalExit(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)
}
