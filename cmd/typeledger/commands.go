package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeledger/internal/model"
	"github.com/verte-zerg/typeledger/internal/stats"
	"github.com/verte-zerg/typeledger/internal/statsui"
)

const defaultStatsWindow = 10

var (
	statsWindow      int
	statsYear        string
	statsInteractive bool

	resetForce bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show summary, personal bests and history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "results in averages and moving averages")
	cmd.Flags().StringVar(&statsYear, "year", "current", "activity year, or 'current' for the last 365 days")
	cmd.Flags().BoolVarP(&statsInteractive, "interactive", "i", false, "browse the ledger in a TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	a, _, err := openCLIApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if statsInteractive {
		program := tea.NewProgram(statsui.NewModel(a.store, statsWindow, statsYear), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	snap := a.store.Get()
	out := cmd.OutOrStdout()
	width := stats.TerminalWidth(os.Stdout)

	title := "typeledger"
	if snap.Name != "" {
		title += " · " + snap.Name
	}
	if err := heading(out, title); err != nil {
		return err
	}
	if err := stats.RenderSummary(out, stats.Summarize(snap, statsWindow), statsWindow); err != nil {
		return err
	}
	if err := stats.RenderPersonalBests(out, snap.PersonalBests); err != nil {
		return err
	}
	if err := stats.RenderHistory(out, snap.Results, statsWindow, width); err != nil {
		return err
	}
	if days, ok := a.store.TestActivity(statsYear); ok {
		if err := stats.RenderActivity(out, days, width); err != nil {
			return err
		}
	}
	if saved, ok := a.db.LastSaved(cmd.Context()); ok {
		if _, err := fmt.Fprintf(out, "Last saved %s\n", saved.Local().Format(time.DateTime)); err != nil {
			return err
		}
	}
	return nil
}

func newPBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pb <mode> <mode2>",
		Short: "Show the personal best and recent averages for one test",
		Args:  cobra.ExactArgs(2),
		RunE:  runPBCmd,
	}
	addVariantFlags(cmd)
	cmd.Flags().StringSliceVar(&practiceFunbox, "funbox", nil, "active funboxes")
	return cmd
}

func runPBCmd(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseMode(args[0])
	if err != nil {
		return err
	}
	mode2 := model.Mode2(args[1])
	if !model.ValidMode2(mode, mode2) {
		return fmt.Errorf("invalid mode2 %q for mode %s", mode2, mode)
	}

	a, fileCfg, err := openCLIApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	applyVariantConfig(cmd, fileCfg)

	difficulty, err := model.ParseDifficulty(practiceDifficulty)
	if err != nil {
		return fmt.Errorf("--difficulty: %w", err)
	}
	key := model.VariantKey{
		Punctuation: practicePunctuation,
		Numbers:     practiceNumbers,
		Difficulty:  difficulty,
		Language:    practiceLanguage,
		LazyMode:    practiceLazyMode,
	}

	out := cmd.OutOrStdout()
	label := stats.VariantLabel(key.Punctuation, key.Numbers, key.Difficulty, key.LazyMode)
	if err := heading(out, fmt.Sprintf("%s %s (%s, %s)", mode, mode2, key.Language, label)); err != nil {
		return err
	}

	lines := []string{}
	if pb, ok := a.store.LocalPB(mode, mode2, key, practiceFunbox); ok {
		lines = append(lines, fmt.Sprintf("PB      %7.2f wpm  %6.2f%% acc  %s",
			pb.WPM, pb.Acc, time.UnixMilli(pb.Timestamp).Local().Format(time.DateOnly)))
	} else {
		lines = append(lines, "PB      none")
	}
	if wpm, acc := a.store.AverageOf10(mode, mode2, key); wpm > 0 {
		lines = append(lines, fmt.Sprintf("Avg10   %7.2f wpm  %6.2f%% acc", wpm, acc))
	}
	if best := a.store.DailyBest(mode, mode2, key); best > 0 {
		lines = append(lines, fmt.Sprintf("Today   %7.2f wpm", best))
	}
	if best := a.store.ActiveTagsPB(mode, mode2, key); best > 0 {
		lines = append(lines, fmt.Sprintf("Tags    %7.2f wpm", best))
	}
	if rank, ok := a.store.LastKnownRank(mode, mode2, key.Language); ok {
		lines = append(lines, fmt.Sprintf("Rank    #%d", rank))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage result tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return stats.RenderTags(cmd.OutOrStdout(), a.store.Get().Tags)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			tag, ok := a.store.AddTag(cmd.Context(), args[0])
			if !ok {
				return errors.New("tag not added")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added tag %s (%s)\n", tag.Name, tag.ID)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <tag>",
		Short: "Delete a tag and remove it from results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			tag, ok := a.store.FindTag(args[0])
			if !ok {
				return fmt.Errorf("unknown tag %q", args[0])
			}
			if !a.store.RemoveTag(cmd.Context(), tag.ID) {
				return errors.New("tag not removed")
			}
			return nil
		},
	})
	cmd.AddCommand(newTagActiveCmd("activate", "Attribute new results to a tag", true))
	cmd.AddCommand(newTagActiveCmd("deactivate", "Stop attributing new results to a tag", false))
	return cmd
}

func newTagActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tag>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			tag, ok := a.store.FindTag(args[0])
			if !ok {
				return fmt.Errorf("unknown tag %q", args[0])
			}
			a.store.SetTagActive(cmd.Context(), tag.ID, active)
			return nil
		},
	}
}

func newThemesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Manage custom themes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List custom themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return stats.RenderThemes(cmd.OutOrStdout(), a.store.Get().CustomThemes)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <color>...",
		Short: "Save a custom theme",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			theme, ok := a.store.AddCustomTheme(cmd.Context(), args[0], args[1:])
			if !ok {
				return errors.New("theme not added")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added theme %s (%s)\n", theme.Name, theme.ID)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit <id> <name> <color>...",
		Short: "Replace a custom theme",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.store.EditCustomTheme(cmd.Context(), args[0], args[1], args[2:]) {
				return errors.New("theme not edited")
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a custom theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openCLIApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.store.DeleteCustomTheme(cmd.Context(), args[0]) {
				return fmt.Errorf("unknown theme %q", args[0])
			}
			return nil
		},
	})
	return cmd
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all locally stored results",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetForce, "force", false, "confirm deletion")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetForce {
		return fmt.Errorf("refusing to delete results without --force")
	}
	a, _, err := openCLIApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	a.db.Clear(cmd.Context())
	logErrln("Deleted local results")
	return nil
}
