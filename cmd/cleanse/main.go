// Package main provides the CLI entrypoint for cleanse.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/config"
	"github.com/verte-zerg/cleanse369/internal/logging"
	"github.com/verte-zerg/cleanse369/internal/model"
	"github.com/verte-zerg/cleanse369/internal/session"
	"github.com/verte-zerg/cleanse369/internal/store"
)

const (
	defaultProgram  = "original"
	defaultStart    = "today"
	defaultAddr     = "127.0.0.1:8369"
	defaultLogLevel = "warn"
)

var (
	rootUser    string
	rootDB      string
	rootVerbose bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cleanse",
		Short:         "Track a 9-day 369 cleanse",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackerCmd,
	}

	rootCmd.PersistentFlags().StringVar(&rootUser, "user", "", "sign in as this user id (progress is kept in the user store)")
	rootCmd.PersistentFlags().StringVar(&rootDB, "db", "", "database path (default: $XDG_DATA_HOME/cleanse369/cleanse.db)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newBeginCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCheckCmd(true))
	rootCmd.AddCommand(newCheckCmd(false))
	rootCmd.AddCommand(newFinishCmd())
	rootCmd.AddCommand(newStartOverCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newProgramsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// loadConfig merges the config file with flags; flags win.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := model.Config{
		Program:  defaultProgram,
		Start:    defaultStart,
		User:     rootUser,
		DBPath:   rootDB,
		SlotPath: config.DefaultTokenPath(),
		Addr:     defaultAddr,
		LogLevel: defaultLogLevel,
		Verbose:  rootVerbose,
	}
	applyStringConfig(cmd, "user", &cfg.User, fileCfg.Tracker.User)
	applyStringConfig(cmd, "db", &cfg.DBPath, fileCfg.Tracker.DB)
	if fileCfg.Tracker.Program != nil {
		cfg.Program = *fileCfg.Tracker.Program
	}
	if fileCfg.Tracker.Start != nil {
		cfg.Start = *fileCfg.Tracker.Start
	}
	if fileCfg.Server.Addr != nil {
		cfg.Addr = *fileCfg.Server.Addr
	}
	if fileCfg.Log.Level != nil {
		cfg.LogLevel = *fileCfg.Log.Level
	}
	if cfg.DBPath == "" {
		cfg.DBPath = config.DefaultDBPath()
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// app holds what a tracker command needs: the loaded session and the
// backends behind it.
type app struct {
	cfg    model.Config
	logger *zap.Logger
	store  *store.Store
	slot   *store.TokenFile
	coord  *session.Coordinator
	sess   *session.Session
}

// openApp loads the caller's session. Persistence warnings are logged and
// the command carries on.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Verbose, true)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	slot := store.NewTokenFile(cfg.SlotPath)
	coord := session.NewCoordinator(st, slot, logger, session.WithMedals(st))
	sess, err := coord.Load(withContext(cmd), cfg.User)
	if err != nil && !session.IsWarning(err) {
		_ = st.Close()
		return nil, err
	}
	logger.Debug("session loaded",
		zap.String("user", cfg.User),
		zap.Stringer("source", sess.Source),
		zap.Int("medals", sess.CompletedCycles))
	return &app{cfg: cfg, logger: logger, store: st, slot: slot, coord: coord, sess: sess}, nil
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	// Best-effort flush of buffered log entries.
	_ = a.logger.Sync()
}

// check drops persistence warnings (already logged by the coordinator)
// and returns anything else.
func check(err error) error {
	if err != nil && !session.IsWarning(err) {
		return err
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cleanse configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# program = %q       # Program used by "cleanse begin" (original, simplified, advanced)
# start = %q            # Default start: yesterday, today, tomorrow or YYYY-MM-DD
# user = ""                # Sign in as this user id
# db = %q

[server]
# addr = %q  # Listen address for "cleanse serve"

[log]
# level = %q              # debug, info, warn, error
`,
		defaultProgram,
		defaultStart,
		config.DefaultDBPath(),
		defaultAddr,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if _, ok := catalog.Lookup(cfg.Program); !ok {
		return fmt.Errorf("tracker.program %q is not one of %v", cfg.Program, catalog.Keys())
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("--db must not be empty")
	}
	return nil
}

func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
