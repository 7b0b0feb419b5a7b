// Package main provides the CLI entrypoint for typeledger.
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

	"github.com/verte-zerg/typeledger/internal/ape"
	"github.com/verte-zerg/typeledger/internal/config"
	"github.com/verte-zerg/typeledger/internal/funbox"
	"github.com/verte-zerg/typeledger/internal/generator"
	"github.com/verte-zerg/typeledger/internal/model"
	"github.com/verte-zerg/typeledger/internal/practice"
	"github.com/verte-zerg/typeledger/internal/tui"
	"github.com/verte-zerg/typeledger/internal/wordlist"
	"github.com/verte-zerg/typeledger/internal/xp"
)

const (
	defaultMode       = "time"
	defaultTime       = 30
	defaultWords      = 25
	defaultDifficulty = "normal"
	defaultLogLevel   = "info"
	defaultAPIURL     = "https://api.monkeytype.com"
)

// version is set at build time.
var version = "dev"

var (
	practiceMode        string
	practiceTime        int
	practiceWords       int
	practiceLanguage    string
	practiceWordList    string
	practicePunctuation bool
	practiceNumbers     bool
	practiceDifficulty  string
	practiceLazyMode    bool
	practiceFunbox      []string

	dbPath   string
	logLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typeledger",
		Short:         "Typing tests with a local results ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "snapshot database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	addVariantFlags(rootCmd)
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "test mode (time or words)")
	rootCmd.Flags().IntVar(&practiceTime, "time", defaultTime, "seconds per time test")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per words test")
	rootCmd.Flags().StringVar(&practiceWordList, "wordlist", "", "word list file (default: XDG wordlists dir)")
	rootCmd.Flags().StringSliceVar(&practiceFunbox, "funbox", nil, "active funboxes")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newPBCmd())
	rootCmd.AddCommand(newTagsCmd())
	rootCmd.AddCommand(newThemesCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// addVariantFlags registers the flags shared by practice and pb lookups.
func addVariantFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&practiceLanguage, "language", wordlist.DefaultLanguage, "word list language")
	flags.BoolVar(&practicePunctuation, "punctuation", false, "add punctuation")
	flags.BoolVar(&practiceNumbers, "numbers", false, "add numbers")
	flags.StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty (normal, expert, master)")
	flags.BoolVar(&practiceLazyMode, "lazy-mode", false, "lazy mode")
}

func applyVariantConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	p := fileCfg.Practice
	applyStringConfig(cmd, "mode", &practiceMode, p.Mode)
	applyIntConfig(cmd, "time", &practiceTime, p.Time)
	applyIntConfig(cmd, "words", &practiceWords, p.Words)
	applyStringConfig(cmd, "language", &practiceLanguage, p.Language)
	applyStringConfig(cmd, "wordlist", &practiceWordList, p.WordList)
	applyBoolConfig(cmd, "punctuation", &practicePunctuation, p.Punctuation)
	applyBoolConfig(cmd, "numbers", &practiceNumbers, p.Numbers)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, p.Difficulty)
	applyBoolConfig(cmd, "lazy-mode", &practiceLazyMode, p.LazyMode)
	applyStringSliceConfig(cmd, "funbox", &practiceFunbox, p.Funbox)
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyVariantConfig(cmd, fileCfg)

	settings, err := practiceSettings()
	if err != nil {
		return err
	}

	wordPath := practiceWordList
	if wordPath == "" {
		wordPath = config.DefaultWordListPath(settings.Language)
	}
	words, err := wordlist.Load(settings.Language, wordPath)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}

	logPath := config.DefaultLogPath()
	if fileCfg.Log.File != nil {
		logPath = *fileCfg.Log.File
	}
	ctx := context.Background()
	a, err := openApp(ctx, cmd, fileCfg, appOptions{logPath: logPath, interactive: true})
	if err != nil {
		return err
	}
	defer a.Close()

	svc := practice.New(a.store, xp.New(), ape.NewClient(defaultAPIURL, version, ape.WithLogger(a.logger)), a.gate,
		practice.WithLogger(a.logger),
	)
	m := tui.NewModel(settings, svc, a.store, generator.New(), words, a.logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func practiceSettings() (tui.Settings, error) {
	mode, err := model.ParseMode(practiceMode)
	if err != nil {
		return tui.Settings{}, fmt.Errorf("--mode: %w", err)
	}
	if mode != model.ModeTime && mode != model.ModeWords {
		return tui.Settings{}, fmt.Errorf("--mode must be time or words, got %q", mode)
	}
	difficulty, err := model.ParseDifficulty(practiceDifficulty)
	if err != nil {
		return tui.Settings{}, fmt.Errorf("--difficulty: %w", err)
	}
	if practiceTime <= 0 {
		return tui.Settings{}, fmt.Errorf("--time must be > 0")
	}
	if practiceWords <= 0 {
		return tui.Settings{}, fmt.Errorf("--words must be > 0")
	}
	if strings.TrimSpace(practiceLanguage) == "" {
		return tui.Settings{}, fmt.Errorf("--language must not be empty")
	}
	for _, name := range practiceFunbox {
		if _, ok := funbox.Get(name); !ok {
			return tui.Settings{}, fmt.Errorf("unknown funbox %q", name)
		}
	}
	return tui.Settings{
		Mode:        mode,
		Seconds:     practiceTime,
		Words:       practiceWords,
		Language:    practiceLanguage,
		Punctuation: practicePunctuation,
		Numbers:     practiceNumbers,
		Difficulty:  difficulty,
		LazyMode:    practiceLazyMode,
		Funbox:      append([]string(nil), practiceFunbox...),
	}, nil
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
	if err := writeDefaultConfig(path); err != nil {
		return err
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

// writeDefaultConfig creates the commented template unless a config exists.
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil || flagChanged(cmd, name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

// flagChanged reports whether the user set name on the command line. Flags
// a command does not define count as unset.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typeledger configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q             # Test mode: time or words
# time = %d                 # Seconds per time test
# words = %d                # Words per words test
# language = %q      # Word list language
# wordlist = ""             # Word list file (default: XDG wordlists dir)
# punctuation = false       # Add punctuation
# numbers = false           # Add numbers
# difficulty = %q     # normal, expert or master
# lazy-mode = false         # Lazy mode
# funbox = []               # Active funboxes

[storage]
# path = %q

[log]
# level = %q            # debug, info, warn or error
# file = %q
`,
		defaultMode,
		defaultTime,
		defaultWords,
		wordlist.DefaultLanguage,
		defaultDifficulty,
		config.DefaultDBPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
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
