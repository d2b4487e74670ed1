// Package main provides the CLI entrypoint for starcatch.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/starcatch/internal/backend"
	"github.com/verte-zerg/starcatch/internal/config"
	"github.com/verte-zerg/starcatch/internal/game"
	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
	"github.com/verte-zerg/starcatch/internal/server"
	"github.com/verte-zerg/starcatch/internal/stats"
	"github.com/verte-zerg/starcatch/internal/store"
	"github.com/verte-zerg/starcatch/internal/tui"
)

const (
	defaultAddr        = "127.0.0.1:8080"
	defaultTrendWindow = 5
	defaultRecent      = 10
	shutdownTimeout    = 5 * time.Second
)

var (
	playMode     string
	playDuration int
	playLives    int
	playMaxCombo int
	playSeed     int64

	boardBackend string
	boardSize    int
	boardURL     string
	boardDB      string
	boardKV      string

	statsMode   string
	statsSince  string
	statsLast   int
	statsWindow int
	statsRecent int

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	def := game.DefaultConfig()
	rootCmd := &cobra.Command{
		Use:           "starcatch",
		Short:         "Catch falling stars in your terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", string(def.Mode), "game mode: catch or classic")
	rootCmd.Flags().IntVar(&playDuration, "duration", def.Duration, "round length in seconds")
	rootCmd.Flags().IntVar(&playLives, "lives", def.Lives, "starting lives (0 = unlimited)")
	rootCmd.Flags().IntVar(&playMaxCombo, "max-combo", def.MaxCombo, "highest combo multiplier")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 = clock)")

	rootCmd.PersistentFlags().StringVar(&boardBackend, "backend", backend.Memory, "leaderboard backend: "+strings.Join(backend.Names, ", "))
	rootCmd.PersistentFlags().IntVar(&boardSize, "size", leaderboard.DefaultSize, "leaderboard size")
	rootCmd.PersistentFlags().StringVar(&boardURL, "url", "", "leaderboard service url (remote backend)")
	rootCmd.PersistentFlags().StringVar(&boardDB, "db", config.DefaultDBPath(), "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&boardKV, "kv", config.DefaultKVPath(), "bbolt file path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	gameCfg := applyGameConfig(cmd, fileCfg.Game)
	boardCfg := applyLeaderboardConfig(cmd, fileCfg.Leaderboard)
	if err := validateGameConfig(gameCfg); err != nil {
		return err
	}
	if err := validateLeaderboardConfig(boardCfg); err != nil {
		return err
	}

	opened, err := backend.Open(boardCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := opened.Close(); cerr != nil {
			logErrf("failed to close leaderboard: %v\n", cerr)
		}
	}()

	var history tui.RoundRecorder
	if st, ok := opened.Store.(*store.Store); ok {
		history = st
	} else {
		st, err := store.Open(boardCfg.DBPath, boardCfg.Size)
		if err != nil {
			logErrf("round history disabled: %v\n", err)
		} else {
			history = st
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close db: %v\n", cerr)
				}
			}()
		}
	}

	submitter := leaderboard.NewSubmitter(opened.Store, boardCfg.Size, leaderboard.Seed())
	engine := game.New(gameCfg, nil)
	program := tea.NewProgram(tui.NewModel(engine, submitter, history), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top scores",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	boardCfg := applyLeaderboardConfig(cmd, fileCfg.Leaderboard)
	if err := validateLeaderboardConfig(boardCfg); err != nil {
		return err
	}
	opened, err := backend.Open(boardCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := opened.Close(); cerr != nil {
			logErrf("failed to close leaderboard: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	entries, err := opened.Store.TopScores(ctx, boardCfg.Size)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), entries)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show round history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window for the score trend")
	cmd.Flags().IntVar(&statsRecent, "recent", defaultRecent, "number of recent rounds listed")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsMode != "" && !validMode(statsMode) {
		return fmt.Errorf("--mode must be %s or %s", model.ModeCatch, model.ModeClassic)
	}
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	boardCfg := applyLeaderboardConfig(cmd, fileCfg.Leaderboard)

	st, err := store.Open(boardCfg.DBPath, boardCfg.Size)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, model.StatsConfig{
		Mode:  model.Mode(statsMode),
		Since: sinceTime,
		Last:  statsLast,
	})
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), statsWindow, statsRecent)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	boardCfg := applyLeaderboardConfig(cmd, fileCfg.Leaderboard)
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	if err := validateLeaderboardConfig(boardCfg); err != nil {
		return err
	}

	st, err := store.Open(boardCfg.DBPath, boardCfg.Size)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           server.New(st, boardCfg.Size).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logErrf("listening on %s\n", serveAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
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
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
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

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
