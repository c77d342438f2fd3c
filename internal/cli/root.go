package cli

import (
	"fmt"
	"os"
	"strings"

	"bwtui/internal/format"
	"bwtui/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X bwtui/internal/cli.Version=...".
var Version = "dev"

type App struct {
	ConfigPath string
	LogFile    string
	Debug      bool
	BWBinary   string
	PrettyJSON bool
	Format     string

	log     zerolog.Logger
	logFile *os.File
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "bwtui",
		Short:        "Terminal client for a Bitwarden vault",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive client (unlocks via the bw CLI)
  bwtui

  # Generate a passphrase and copy it
  bwtui generate --passphrase --words 5 --copy

  # Where is my config?
  bwtui config path
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setupLogging()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.closeLog()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.yaml (default: $BWTUI_CONFIG_DIR or the user config dir)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("BWTUI_DEBUG_LOG", ""), "Write logs to this file (the TUI owns the terminal)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&app.BWBinary, "bw", envOr("BWTUI_BW_BINARY", "bw"), "Vault agent binary")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BWTUI_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newGenerateCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// setupLogging sends logs to a file when one is configured and discards them otherwise.
func (app *App) setupLogging() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if app.Debug {
		level = zerolog.DebugLevel
	}
	path := strings.TrimSpace(app.LogFile)
	if path == "" {
		app.log = zerolog.Nop()
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	app.logFile = f
	app.log = zerolog.New(f).Level(level).With().Timestamp().Str("pid", fmt.Sprint(os.Getpid())).Logger()
	app.log.Debug().Msg("debug logging enabled")
	return nil
}

func (app *App) closeLog() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

func (app *App) configPath() (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return store.ConfigPath()
}

// loadConfig never fails hard: a broken file yields defaults plus a logged warning.
func (app *App) loadConfig() (store.Config, string, error) {
	path, err := app.configPath()
	if err != nil {
		return store.DefaultConfig(), "", err
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		app.log.Warn().Err(err).Str("path", path).Msg("config loaded with errors; using defaults where invalid")
	}
	return cfg, path, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}
