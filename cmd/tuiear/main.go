// Package main provides the CLI entrypoint for tuiear.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuiear/internal/config"
	"github.com/verte-zerg/tuiear/internal/engine"
	"github.com/verte-zerg/tuiear/internal/model"
	"github.com/verte-zerg/tuiear/internal/progress"
	"github.com/verte-zerg/tuiear/internal/stats"
	"github.com/verte-zerg/tuiear/internal/statsui"
	"github.com/verte-zerg/tuiear/internal/store"
	"github.com/verte-zerg/tuiear/internal/tui"
	"github.com/verte-zerg/tuiear/internal/wordlist"
)

const (
	defaultQuestions   = 10
	defaultDifficulty  = string(model.DifficultyNormal)
	defaultSpeed       = string(model.SpeedNormal)
	defaultMode        = string(model.ModeSoundCatch)
	defaultCurveWindow = 5
	defaultWidth       = 80
)

var (
	trainQuestions  int
	trainDifficulty string
	trainSpeed      string
	trainMode       string
	trainWordsFile  string
	trainBell       bool
	trainPerfect    int64
	trainGood       int64
	trainMiss       int64
	trainSeed       int64

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiear",
		Short:         "TUI hearing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainCmd,
	}

	rootCmd.Flags().IntVar(&trainQuestions, "questions", defaultQuestions, "questions per set (5, 10 or 15)")
	rootCmd.Flags().StringVar(&trainDifficulty, "difficulty", defaultDifficulty, "difficulty (easy, normal, hard)")
	rootCmd.Flags().StringVar(&trainSpeed, "speed", defaultSpeed, "sound speed (veryslow, slow, normal, fast, veryfast)")
	rootCmd.Flags().StringVar(&trainMode, "mode", defaultMode, "training mode (see: tuiear modes)")
	rootCmd.Flags().StringVar(&trainWordsFile, "words-file", "", "word bank for word-challenge")
	rootCmd.Flags().BoolVar(&trainBell, "bell", true, "ring the terminal bell on each stimulus")
	rootCmd.Flags().Int64Var(&trainPerfect, "perfect", 0, "custom perfect cutoff in ms")
	rootCmd.Flags().Int64Var(&trainGood, "good", 0, "custom good cutoff in ms")
	rootCmd.Flags().Int64Var(&trainMiss, "miss", 0, "custom miss cutoff in ms")
	rootCmd.Flags().Int64Var(&trainSeed, "seed", 0, "random seed (0 picks one)")
	if err := rootCmd.Flags().MarkHidden("seed"); err != nil {
		logErrf("failed to hide flag: %v\n", err)
	}

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newLevelsCmd())

	return rootCmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(paths.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	tr := fileCfg.Training
	applyIntConfig(cmd, "questions", &trainQuestions, tr.QuestionCount)
	applyStringConfig(cmd, "difficulty", &trainDifficulty, tr.Difficulty)
	applyStringConfig(cmd, "speed", &trainSpeed, tr.SoundSpeed)
	applyStringConfig(cmd, "mode", &trainMode, tr.Mode)
	applyStringConfig(cmd, "words-file", &trainWordsFile, tr.WordsFile)
	applyBoolConfig(cmd, "bell", &trainBell, tr.Bell)
	applyInt64Config(cmd, "perfect", &trainPerfect, tr.Thresholds.Perfect)
	applyInt64Config(cmd, "good", &trainGood, tr.Thresholds.Good)
	applyInt64Config(cmd, "miss", &trainMiss, tr.Thresholds.Miss)

	settings := model.GameSettings{
		QuestionCount: trainQuestions,
		Difficulty:    model.Difficulty(strings.ToLower(trainDifficulty)),
		SoundSpeed:    model.SoundSpeed(strings.ToLower(trainSpeed)),
		Mode:          model.TrainingMode(strings.ToLower(trainMode)),
		Thresholds:    model.TimingThreshold{Perfect: trainPerfect, Good: trainGood, Miss: trainMiss},
	}
	if err := engine.ValidateSettings(settings); err != nil {
		return settingsError(err)
	}

	words, err := loadWordBank(trainWordsFile, paths.Words)
	if err != nil {
		return err
	}

	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m, err := tui.NewModel(settings, tui.Options{Store: st, Words: words, Bell: trainBell, Seed: trainSeed})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadWordBank reads an explicit word file, then the default location, and
// falls back to the built-in bank when neither exists.
func loadWordBank(explicit, fallback string) ([]wordlist.Entry, error) {
	if explicit != "" {
		words, err := wordlist.LoadWords(explicit)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list %s: %w", explicit, err)
		}
		return words, nil
	}
	words, err := wordlist.LoadWords(fallback)
	if err == nil {
		return words, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load word list %s: %w", fallback, err)
	}
	return wordlist.DefaultBank, nil
}

func settingsError(err error) error {
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		return err
	}
	switch cfgErr.Field {
	case "question count":
		return fmt.Errorf("--questions must be one of %v", model.QuestionCountOptions)
	case "training mode":
		return fmt.Errorf("unknown --mode %s (run: tuiear modes)", cfgErr.Value)
	default:
		return err
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
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	path := paths.Config
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List training modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd, func(ctx context.Context, repo *progress.Repository) error {
				clears, err := repo.LoadClears(ctx)
				if err != nil {
					logErrf("failed to load clear data: %v\n", err)
				}
				return writeModes(cmd.OutOrStdout(), clears)
			})
		},
	}
}

// writeModes prints one line per mode; ✓ marks a cleared mode and ★ a
// starred one.
func writeModes(w io.Writer, clears progress.Clears) error {
	descriptions := map[model.TrainingMode]string{
		model.ModeSoundCatch:    "react to a cue as fast as possible",
		model.ModePitch:         "same or different pitch",
		model.ModeDuration:      "same or different tone length",
		model.ModeWordPair:      "same or different Korean word",
		model.ModeWordChallenge: "identify the spoken word",
		model.ModeDrum:          "identify the drum",
		model.ModeSequence:      "repeat the order of three sounds",
		model.ModeBalance:       "which ear the tone plays in",
	}
	for _, mode := range model.TrainingModes {
		if _, err := fmt.Fprintf(w, "%s %-15s %s\n", clearMark(clears.Get(mode)), mode, descriptions[mode]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func clearMark(c model.ModeClear) string {
	switch {
	case c.Cleared:
		return "✓"
	case c.Starred:
		return "★"
	default:
		return " "
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sets")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(paths.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return writeStatsReport(cmd.Context(), cmd.OutOrStdout(), st, cfg, terminalWidth())
	}
	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation(model.DateLayout, statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		Mode:        statsMode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func writeStatsReport(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig, width int) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sets); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Sets, cfg.CurveWindow, width); err != nil {
		return err
	}
	if err := stats.RenderModeTable(w, report.Modes); err != nil {
		return err
	}
	if len(report.Weakest) > 0 {
		if _, err := fmt.Fprintf(w, "Focus next: %s\n", joinModes(report.Weakest)); err != nil {
			return err
		}
	}
	return nil
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show avatar level and lifetime progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd, func(ctx context.Context, repo *progress.Repository) error {
				p, err := repo.Load(ctx)
				if err != nil {
					logErrf("failed to load progress: %v\n", err)
				}
				cal, err := repo.LoadCalendar(ctx)
				if err != nil {
					logErrf("failed to load calendar: %v\n", err)
				}
				return stats.RenderProgress(cmd.OutOrStdout(), p, cal.Streak(time.Now()))
			})
		},
	}
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List avatar levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd, func(ctx context.Context, repo *progress.Repository) error {
				p, err := repo.Load(ctx)
				if err != nil {
					logErrf("failed to load progress: %v\n", err)
				}
				return stats.RenderLevels(cmd.OutOrStdout(), p.CurrentLevel)
			})
		},
	}
}

func withRepository(cmd *cobra.Command, fn func(context.Context, *progress.Repository) error) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(cmd.Context(), progress.NewRepository(st))
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiear configuration
# Uncomment a value to enable it. CLI flags override config values.

[training]
# question-count = %d     # Questions per set (5, 10 or 15)
# difficulty = %q         # easy, normal or hard
# sound-speed = %q        # veryslow, slow, normal, fast or veryfast
# mode = %q               # Training mode (see: tuiear modes)
# words-file = ""         # Word bank: word|pronunciation|hint|level per line
# bell = true             # Ring the terminal bell on each stimulus

[training.thresholds]
# perfect = 800           # Custom cutoffs in ms, must increase
# good = 1500
# miss = 3000

[stats]
# last = 0                # Limit to last N sets
# curve-window = %d       # Moving average window
`,
		defaultQuestions,
		defaultDifficulty,
		defaultSpeed,
		defaultMode,
		defaultCurveWindow,
	)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func joinModes(modes []model.TrainingMode) string {
	parts := make([]string, len(modes))
	for i, mode := range modes {
		parts[i] = string(mode)
	}
	return strings.Join(parts, ", ")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
