package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/config"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/logging"
	"github.com/verte-zerg/cleanse369/internal/model"
	"github.com/verte-zerg/cleanse369/internal/server"
	"github.com/verte-zerg/cleanse369/internal/session"
	"github.com/verte-zerg/cleanse369/internal/stats"
	"github.com/verte-zerg/cleanse369/internal/statsui"
	"github.com/verte-zerg/cleanse369/internal/store"
	"github.com/verte-zerg/cleanse369/internal/tui"
)

var (
	beginStart string

	statusDay int

	finishForce bool

	exportOut string

	tokenSet string

	historyLast      int
	historyCompleted bool
	historyBrowse    bool

	serveAddr string
)

func runTrackerCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	m := tui.NewModel(withContext(cmd), a.coord, a.sess, a.logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newBeginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "begin [PROGRAM]",
		Short: "Start a new cycle (replaces the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBeginCmd,
	}
	cmd.Flags().StringVar(&beginStart, "start", "", "start date: yesterday, today, tomorrow or YYYY-MM-DD")
	return cmd
}

func runBeginCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	programKey := a.cfg.Program
	if len(args) == 1 {
		programKey = args[0]
	}
	choice := a.cfg.Start
	if cmd.Flags().Changed("start") {
		choice = beginStart
	}
	start, err := cycle.ParseStart(choice, a.coord.Now())
	if err != nil {
		return err
	}
	if err := check(a.coord.Begin(withContext(cmd), a.sess, programKey, start)); err != nil {
		return err
	}
	return renderStatus(cmd.OutOrStdout(), a)
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progress of the active cycle",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().IntVar(&statusDay, "day", 0, "print the numbered checklist of this day (1-9)")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if statusDay != 0 {
		if a.sess.Active == nil {
			return session.ErrNoActiveCycle
		}
		return stats.RenderDay(cmd.OutOrStdout(), a.sess.Active, statusDay)
	}
	return renderStatus(cmd.OutOrStdout(), a)
}

func renderStatus(w io.Writer, a *app) error {
	return stats.RenderStatus(w, a.sess.Active, a.sess.CompletedCycles, a.coord.Now(), stats.ShouldUseColor(w, false))
}

func newCheckCmd(done bool) *cobra.Command {
	use, short := "check", "Mark a task done"
	if !done {
		use, short = "uncheck", "Clear a task"
	}
	return &cobra.Command{
		Use:   use + " DAY SECTION ITEM",
		Short: short + " (numbers as shown by status --day)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCmd(cmd, args, done)
		},
	}
}

func runCheckCmd(cmd *cobra.Command, args []string, done bool) error {
	nums := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid number %q", arg)
		}
		nums[i] = n
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	changed, err := a.coord.ToggleItem(withContext(cmd), a.sess, nums[0], nums[1]-1, nums[2]-1, done)
	if err := check(err); err != nil {
		return err
	}
	total, count := cycle.CountTasks(a.sess.Active)
	state := "unchanged"
	if changed {
		state = "saved"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d tasks done (%d%%)\n",
		state, count, total, cycle.Percent(cycle.CompletionRatio(a.sess.Active)))
	return err
}

func newFinishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Finish the active cycle and earn a medal",
		Args:  cobra.NoArgs,
		RunE:  runFinishCmd,
	}
	cmd.Flags().BoolVar(&finishForce, "force", false, "finish even when less than 80% is done")
	return cmd
}

func runFinishCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.coord.Finish(withContext(cmd), a.sess, finishForce)
	if err := check(err); err != nil {
		return err
	}
	if res.NeedsConfirm {
		return fmt.Errorf("only %d%% of the cycle is done; re-run with --force to finish anyway", cycle.Percent(res.Ratio))
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cycle finished at %d%%. Medals: %s (%d)\n",
		cycle.Percent(res.Ratio), stats.Medals(a.sess.CompletedCycles), a.sess.CompletedCycles)
	return err
}

func newStartOverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start-over",
		Short: "Discard the active cycle without a medal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := check(a.coord.StartOver(withContext(cmd), a.sess)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Active cycle discarded.")
			return err
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active cycle as JSON",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.coord.Export(a.sess)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if exportOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(exportOut), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a cycle from an exported JSON file ('-' for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := check(a.coord.Import(withContext(cmd), a.sess, data)); err != nil {
		return fmt.Errorf("this file does not look like a saved 369 state: %w", err)
	}
	return renderStatus(cmd.OutOrStdout(), a)
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print or restore the shareable state token",
		Args:  cobra.NoArgs,
		RunE:  runTokenCmd,
	}
	cmd.Flags().StringVar(&tokenSet, "set", "", "restore state from a token")
	return cmd
}

func runTokenCmd(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("set") {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := store.NewTokenFile(cfg.SlotPath).Write(strings.TrimSpace(tokenSet)); err != nil {
			return fmt.Errorf("failed to write token: %w", err)
		}
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if a.sess.Active == nil {
		if cmd.Flags().Changed("set") {
			return fmt.Errorf("token does not contain a valid cycle")
		}
		return session.ErrNoActiveCycle
	}
	if a.sess.Authenticated() {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Progress of %s is kept in the user store (cycle %s).\n", a.sess.UserID, a.sess.Active.ID)
		return err
	}
	token, err := a.slot.Read()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored cycles of the signed-in user",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N cycles")
	cmd.Flags().BoolVar(&historyCompleted, "completed", false, "only finished cycles")
	cmd.Flags().BoolVar(&historyBrowse, "browse", false, "browse cycles and their days interactively")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.User == "" {
		return fmt.Errorf("history is kept for signed-in users; pass --user")
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	filter := model.CycleFilter{UserID: cfg.User, Last: historyLast}
	if historyCompleted {
		done := true
		filter.Completed = &done
	}
	if historyBrowse {
		m := statsui.NewModel(withContext(cmd), st, filter)
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history browser: %w", err)
		}
		return nil
	}
	entries, err := stats.BuildHistory(withContext(cmd), st, filter)
	if err != nil {
		return err
	}
	return stats.RenderHistory(cmd.OutOrStdout(), entries)
}

func newProgramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "programs [PROGRAM]",
		Short: "List programs or print one program's checklist",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProgramsCmd,
	}
}

func runProgramsCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, p := range catalog.All() {
			total := 0
			for _, ph := range p.Phases {
				total += ph.ItemCount() * len(ph.Days())
			}
			if _, err := fmt.Fprintf(out, "%-11s %s (%d tasks)\n", p.Key, p.Label, total); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}
	p, ok := catalog.Lookup(args[0])
	if !ok {
		return &cycle.InvalidProgramError{Key: args[0]}
	}
	if _, err := fmt.Fprintln(out, p.Label); err != nil {
		return err
	}
	for _, ph := range p.Phases {
		if _, err := fmt.Fprintf(out, "\n%s\n", ph.TabLabel()); err != nil {
			return err
		}
		for _, section := range ph.Sections {
			if _, err := fmt.Fprintf(out, "  %s\n", section.Name); err != nil {
				return err
			}
			for _, item := range section.Items {
				if _, err := fmt.Fprintf(out, "    - %s\n", item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	level := cfg.LogLevel
	if level == defaultLogLevel {
		level = "info"
	}
	logger, err := logging.New(level, cfg.Verbose, false)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush of buffered log entries.
		_ = logger.Sync()
	}()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx, stop := signal.NotifyContext(withContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(st, logger).Run(ctx, cfg.Addr)
}
