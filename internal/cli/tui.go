package cli

import (
	"errors"
	"os"

	"bwtui/internal/secret"
	"bwtui/internal/session"
	"bwtui/internal/tui"
	"bwtui/internal/vault"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("bwtui needs an interactive terminal; use a subcommand for scripted use")

var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !isTerminal() {
		return errNotTerminal
	}
	cfg, path, err := app.loadConfig()
	if err != nil {
		return err
	}

	agent := vault.NewBW(app.BWBinary, app.log)
	coord := session.NewCoordinator(agent, app.log)

	app.log.Info().Str("config", path).Str("bw", app.BWBinary).Msg("starting session")
	return tui.Run(cmd.Context(), tui.Options{
		Agent:       agent,
		Coordinator: coord,
		Config:      cfg,
		ConfigPath:  path,
		Session:     os.Getenv("BW_SESSION"),
		Clipboard:   secret.NewClipboard(nil),
		Editor:      secret.NewEditor(""),
		Log:         app.log,
	})
}
