package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/ui"
)

var logCmd = &cobra.Command{
	Use:     "log [date]",
	GroupID: "tracking",
	Short:   "Interactively record a day",
	Long: `Open an interactive form to record mood, habits, and notes for a day.

Defaults to today; pass a date (YYYY-MM-DD or natural language) to back-fill
an earlier day.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		date, err := parseDate(arg, a.store.Today())
		if err != nil {
			return err
		}

		day := a.store.Day(date)
		settings := a.store.Settings()

		mood := 5
		if day.Mood != nil {
			mood = *day.Mood
		}
		var habitOptions []huh.Option[string]
		var doneHabits []string
		for _, habit := range settings.Habits {
			if habit.Archived {
				continue
			}
			habitOptions = append(habitOptions, huh.NewOption(habit.Name, habit.ID))
			if day.Habits[habit.ID] {
				doneHabits = append(doneHabits, habit.ID)
			}
		}
		notes := day.Notes

		var moodOptions []huh.Option[int]
		for i := 1; i <= 10; i++ {
			moodOptions = append(moodOptions, huh.NewOption(fmt.Sprintf("%d", i), i))
		}

		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("Mood for %s", date)).
				Options(moodOptions...).
				Value(&mood),
			huh.NewMultiSelect[string]().
				Title("Habits done").
				Options(habitOptions...).
				Value(&doneHabits),
			huh.NewText().
				Title("Notes").
				Value(&notes),
		))
		if err := form.Run(); err != nil {
			return fmt.Errorf("form aborted: %w", err)
		}

		day.Mood = &mood
		for _, habit := range settings.Habits {
			day.Habits[habit.ID] = false
		}
		for _, id := range doneHabits {
			day.Habits[id] = true
		}
		day.Notes = notes

		a.saver.Request()
		if err := a.flush(ctx); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Recorded %s", date)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
