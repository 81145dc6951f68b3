// Package main provides the CLI entrypoint for codetutor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/config"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
	"github.com/verte-zerg/codetutor/internal/stats"
	"github.com/verte-zerg/codetutor/internal/store"
	"github.com/verte-zerg/codetutor/internal/templates"
	"github.com/verte-zerg/codetutor/internal/tui"
)

const (
	defaultBackend      = "http://localhost:8000"
	defaultLevel        = "newbie"
	defaultLang         = "python"
	defaultLogLevel     = "info"
	defaultTrendWindow  = 5
	defaultCheckTimeout = 10 * time.Second
)

var (
	backendURL string
	timeout    time.Duration
	level      string
	lang       string
	logFile    string

	historyLang   string
	historyLast   int
	historyWindow int
)

// settings are the resolved values that do not belong in model.Config.
type settings struct {
	cfg            model.Config
	historyEnabled bool
	templateDir    string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "codetutor",
		Short:         "Learn to code in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTutorCmd,
	}

	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", defaultBackend, "backend base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", backend.DefaultTimeout, "per-request timeout (0 disables)")
	rootCmd.Flags().StringVar(&level, "level", defaultLevel, "initial familiarity level (newbie or expert)")
	rootCmd.Flags().StringVar(&lang, "lang", defaultLang, "initial programming language")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "log file path (default: XDG state dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &backendURL, fileCfg.Backend.URL)
	if err := applyDurationConfig(cmd, "timeout", &timeout, fileCfg.Backend.Timeout); err != nil {
		return settings{}, err
	}
	applyStringConfig(cmd, "level", &level, fileCfg.Defaults.Level)
	applyStringConfig(cmd, "lang", &lang, fileCfg.Defaults.Lang)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	difficulty, err := model.ParseDifficulty(level)
	if err != nil {
		return settings{}, fmt.Errorf("invalid --level: %w", err)
	}
	language, err := model.ParseLanguage(lang)
	if err != nil {
		return settings{}, fmt.Errorf("invalid --lang: %w", err)
	}
	if strings.TrimSpace(backendURL) == "" {
		return settings{}, fmt.Errorf("--backend must not be empty")
	}
	if timeout < 0 {
		return settings{}, fmt.Errorf("--timeout must be >= 0")
	}

	s := settings{
		cfg: model.Config{
			BackendURL:  backendURL,
			Timeout:     timeout,
			Difficulty:  difficulty,
			Language:    language,
			LogPath:     logFile,
			LogLevel:    defaultLogLevel,
			HistoryPath: config.DefaultHistoryPath(),
		},
		historyEnabled: true,
		templateDir:    config.DefaultTemplateDir(),
	}
	if s.cfg.LogPath == "" {
		s.cfg.LogPath = config.DefaultLogPath()
	}
	if fileCfg.Log.Level != nil {
		s.cfg.LogLevel = *fileCfg.Log.Level
	}
	if fileCfg.History.Enabled != nil {
		s.historyEnabled = *fileCfg.History.Enabled
	}
	if fileCfg.History.Path != nil && *fileCfg.History.Path != "" {
		s.cfg.HistoryPath = *fileCfg.History.Path
	}
	if fileCfg.Templates.Dir != nil && *fileCfg.Templates.Dir != "" {
		s.templateDir = *fileCfg.Templates.Dir
	}
	breaker := fileCfg.Backend.Breaker
	if breaker.Enabled != nil {
		s.cfg.Breaker.Enabled = *breaker.Enabled
	}
	if breaker.Failures != nil {
		if *breaker.Failures <= 0 {
			return settings{}, fmt.Errorf("backend.breaker.failures must be > 0")
		}
		s.cfg.Breaker.Failures = *breaker.Failures
	}
	if breaker.Cooldown != nil {
		cooldown, err := time.ParseDuration(*breaker.Cooldown)
		if err != nil {
			return settings{}, fmt.Errorf("invalid backend.breaker.cooldown: %w", err)
		}
		s.cfg.Breaker.Cooldown = cooldown
	}
	return s, nil
}

func runTutorCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logger, closeLog := openLogger(s.cfg.LogPath, s.cfg.LogLevel)
	defer closeLog()
	logger.Info().Str("backend", s.cfg.BackendURL).Msg("starting")

	client := newClient(s.cfg, logger)

	deps := tui.Deps{
		Store:      session.New(),
		API:        client,
		Templates:  templates.NewSet(s.templateDir),
		Logger:     logger,
		Difficulty: s.cfg.Difficulty,
		Language:   s.cfg.Language,
	}
	if s.historyEnabled {
		st, err := store.Open(s.cfg.HistoryPath)
		if err != nil {
			logErrf("history disabled: %v\n", err)
			logger.Error().Err(err).Msg("failed to open history")
		} else {
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close history: %v\n", cerr)
				}
			}()
			deps.History = st
		}
	}

	app := tui.New(deps)
	defer app.Close()
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newClient(cfg model.Config, logger zerolog.Logger) *backend.Client {
	return backend.New(cfg.BackendURL,
		backend.WithLogger(logger),
		backend.WithTimeout(cfg.Timeout),
		backend.WithBreaker(cfg.Breaker),
	)
}

// openLogger writes JSON lines to path. The TUI owns the terminal, so a log
// file that cannot be opened disables logging instead of failing.
func openLogger(path, levelName string) (zerolog.Logger, func()) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logErrf("logging disabled: failed to create log directory: %v\n", err)
		return zerolog.Nop(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logErrf("logging disabled: failed to open log file: %v\n", err)
		return zerolog.Nop(), func() {}
	}
	logger := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}
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
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List supported programming languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	return writeLangs(cmd.OutOrStdout())
}

func writeLangs(w io.Writer) error {
	for _, l := range model.SupportedLanguages() {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", l, l.Label()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show practice history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyLang, "lang", "", "language filter")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyWindow, "trend-window", defaultTrendWindow, "moving average window for the quiz trend")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	filter, err := historyFilter(historyLang, historyLast)
	if err != nil {
		return err
	}
	if historyWindow <= 0 {
		return fmt.Errorf("--trend-window must be > 0")
	}
	if _, err := os.Stat(s.cfg.HistoryPath); errors.Is(err, os.ErrNotExist) {
		logErrln("No history yet. Practice with: codetutor")
		return nil
	}

	st, err := store.Open(s.cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, filter)
	if err != nil {
		return err
	}
	if len(report.Attempts) == 0 {
		logErrln("No attempts match the filter.")
		return nil
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Attempts, historyWindow); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return stats.RenderTable(out, report.Attempts, stats.TerminalWidth(out))
}

func historyFilter(langValue string, last int) (model.HistoryFilter, error) {
	if last < 0 {
		return model.HistoryFilter{}, fmt.Errorf("--last must be >= 0")
	}
	filter := model.HistoryFilter{Last: last}
	if strings.TrimSpace(langValue) != "" {
		l, err := model.ParseLanguage(langValue)
		if err != nil {
			return model.HistoryFilter{}, fmt.Errorf("invalid --lang: %w", err)
		}
		filter.Language = l
	}
	return filter, nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the backend answers",
		Args:  cobra.NoArgs,
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	client := newClient(s.cfg, zerolog.Nop())
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultCheckTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("backend %s is not reachable: %w", client.BaseURL(), err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "backend %s is up\n", client.BaseURL()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return nil
	}
	parsed, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid backend.timeout: %w", err)
	}
	*target = parsed
	return nil
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
