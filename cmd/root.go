// Package cmd wires configuration, persistence, and the terminal UI
// into the coffer command tree.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gfbarbieri/coffer/internal/config"
	"github.com/gfbarbieri/coffer/internal/fund"
	"github.com/gfbarbieri/coffer/internal/infrastructure/sqlite"
	"github.com/gfbarbieri/coffer/internal/log"
	"github.com/gfbarbieri/coffer/internal/session"
	"github.com/gfbarbieri/coffer/internal/trace"
	"github.com/gfbarbieri/coffer/internal/ui"
	"github.com/gfbarbieri/coffer/internal/workflow"
)

var (
	cfgFile   string
	dbPath    string
	noPersist bool

	// cfg is the loaded configuration, available to subcommands after
	// the root PersistentPreRunE has run.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "coffer",
	Short: "Plan sinking fund contributions for upcoming bills",
	Long: `Coffer is a terminal sinking fund planner: define a fund window and
starting balance, add one-time and recurring bills, then generate a plan
of envelopes, contribution dates, and scheduled amounts with a cash flow
report over the fund window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
	RunE: runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <user config dir>/coffer/config.yaml)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "session database path (default: <user config dir>/coffer/coffer.db)")
	rootCmd.Flags().BoolVar(&noPersist, "no-persist", false, "run without snapshotting the session to the database")
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if noPersist {
		cfg.Persist = false
	}

	if cfg.LogFile != "" {
		if err := log.Init(cfg.LogFile, parseLogLevel(cfg.LogLevel)); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer func() { _ = log.Close() }()
	}

	if cfg.Trace {
		tracePath := filepath.Join(filepath.Dir(resolveDBPathOrDot()), "coffer-trace.json")
		provider, err := trace.Init(tracePath)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() { _ = provider.Shutdown(cmd.Context()) }()
	}

	orch := workflow.NewOrchestrator(newFundStore)

	var repo session.Repository
	if cfg.Persist {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		db, err := sqlite.NewDB(path)
		if err != nil {
			return fmt.Errorf("opening session database: %w", err)
		}
		defer func() { _ = db.Close() }()
		repo = db.SnapshotRepository()
	}

	// Restore the most recent session before the first frame so the
	// dashboard comes up directly when a fund exists.
	var restored *session.Snapshot
	if repo != nil {
		snap, err := repo.Latest()
		switch {
		case err == nil:
			if err := session.Restore(orch, snap); err != nil {
				log.ErrorErr(log.CatDB, "Failed to restore session", err, "guid", snap.GUID)
			} else {
				restored = snap
			}
		case errors.As(err, new(*session.NotFoundError)):
			// First run, nothing to restore.
		default:
			log.ErrorErr(log.CatDB, "Failed to load latest session", err)
		}
	}

	model := ui.New(cfg, orch, repo)
	if restored != nil {
		model = model.AdoptSnapshot(restored)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func newFundStore(startDate, endDate time.Time, balance decimal.Decimal) (workflow.FundStore, error) {
	return fund.New(startDate, endDate, balance)
}

func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return config.DefaultDBPath()
}

// resolveDBPathOrDot is resolveDBPath for callers that only need a
// directory to place a sibling file in.
func resolveDBPathOrDot() string {
	path, err := resolveDBPath()
	if err != nil {
		return "."
	}
	return path
}
