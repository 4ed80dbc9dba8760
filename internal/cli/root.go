package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"curator-cli/internal/store"
	"curator-cli/internal/tui"
)

type App struct {
	Dir        string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "curator",
		Short:        "Curator: organize prompt context into projects and cells, copy it out",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  curator

  # Scriptable commands
  curator projects list
  curator cells add
  curator copy --main --cells 1,2 | less
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CURATOR_DIR", ""), "Path to data dir (default: the user config dir)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newCellsCmd(app))
	cmd.AddCommand(newPromptCmd(app))
	cmd.AddCommand(newCopyCmd(app))
	cmd.AddCommand(newActivityCmd(app))

	return cmd
}

// session is an opened store plus its collaborators. Close releases the
// activity log.
type session struct {
	store *store.Store
	elog  *store.EventLog
	log   zerolog.Logger
}

func (s *session) Close() {
	if s.elog != nil {
		_ = s.elog.Close()
	}
}

func openSession(app *App) (*session, error) {
	dir, err := resolveDataDir(app)
	if err != nil {
		return nil, err
	}

	log := newLogger()
	dataPath := filepath.Join(dir, store.DataFileName)
	store.SeedIfMissing(dataPath, log)

	st := store.New(store.FilePersister{Path: dataPath}, log)

	sess := &session{store: st, log: log}
	elog, err := store.OpenEventLog(filepath.Join(dir, store.EventLogFileName), log)
	if err != nil {
		// Activity logging is best-effort; the store works without it.
		log.Warn().Err(err).Msg("activity log unavailable")
	} else {
		sess.elog = elog
		elog.Attach(st)
	}

	st.Load()
	return sess, nil
}

func resolveDataDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	if cfg, err := store.LoadConfig(); err == nil && cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return store.DefaultDataDir()
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if os.Getenv("CURATOR_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func runTUI(app *App) error {
	sess, err := openSession(app)
	if err != nil {
		return err
	}
	defer sess.Close()

	var prefs store.TUIConfig
	if cfg, err := store.LoadConfig(); err == nil && cfg.TUI != nil {
		prefs = *cfg.TUI
	}
	return tui.Run(sess.store, prefs)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
