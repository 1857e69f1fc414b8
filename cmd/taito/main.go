// Package main provides the CLI entrypoint for taito.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ilkkao/taito/internal/config"
	"github.com/ilkkao/taito/internal/corpus"
	"github.com/ilkkao/taito/internal/progress"
	"github.com/ilkkao/taito/internal/stats"
	"github.com/ilkkao/taito/internal/store"
	"github.com/ilkkao/taito/internal/tui"
)

const defaultHistory = 20

var (
	practiceShuffle bool

	statsHistory int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taito",
		Short:         "Finnish language drill trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle", false, "randomize drill order")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "shuffle", &practiceShuffle, fileCfg.Practice.Shuffle)

	c, err := corpus.Load()
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	tracker, err := loadTracker(context.Background(), st)
	if err != nil {
		return fmt.Errorf("failed to load player state: %w", err)
	}

	model := tui.NewModel(c, tracker, practiceShuffle)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show best times and recent sessions",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsHistory, "last", defaultHistory, "number of recent sessions to show")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "last", &statsHistory, fileCfg.Practice.History)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	bestTimes, err := st.ListBestTimes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load best times: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderBestTimes(out, bestTimes); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	records, err := st.ListSessions(ctx, statsHistory)
	if err != nil {
		return fmt.Errorf("failed to load session history: %w", err)
	}
	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	if err := stats.RenderHistory(out, records, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export best times as text",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	bestTimes, err := st.ListBestTimes(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load best times: %w", err)
	}
	if err := stats.RenderExport(cmd.OutOrStdout(), bestTimes); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear best times, unlocks, and history",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	tracker, err := loadTracker(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load player state: %w", err)
	}
	if err := tracker.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	logErrln("Progress cleared.")
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

func loadTracker(ctx context.Context, st *store.Store) (*progress.Tracker, error) {
	bestTimes, err := st.ListBestTimes(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := st.ListUnlocked(ctx)
	if err != nil {
		return nil, err
	}
	return progress.NewTracker(st, bestTimes, unlocked), nil
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# taito configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# shuffle = false   # Randomize drill order
# history = %d      # Recent sessions shown by 'taito stats'
`, defaultHistory)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
