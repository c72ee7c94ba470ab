package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/schema"
	"github.com/mschirtz/daybook/internal/ui"
)

var habitCmd = &cobra.Command{
	Use:     "habit",
	GroupID: "tracking",
	Short:   "Manage and mark daily habits",
}

var habitDoneCmd = &cobra.Command{
	Use:   "done <habit-id> [date]",
	Short: "Mark a habit as done for a day",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		habitID := args[0]
		arg := ""
		if len(args) > 1 {
			arg = args[1]
		}
		date, err := parseDate(arg, a.store.Today())
		if err != nil {
			return err
		}

		if a.store.Settings().HabitByID(habitID) == nil {
			return fmt.Errorf("unknown habit %q (see: daybook habit list)", habitID)
		}

		a.store.Day(date).Habits[habitID] = true
		a.saver.Request()
		if err := a.flush(ctx); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s done on %s", habitID, date)))
		return nil
	},
}

var habitAddCmd = &cobra.Command{
	Use:   "add <id> <name>",
	Short: "Add a habit definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		id, name := args[0], args[1]
		settings := a.store.Settings()
		if settings.HabitByID(id) != nil {
			return fmt.Errorf("habit %q already exists", id)
		}
		settings.Habits = append(settings.Habits, schema.Habit{ID: id, Name: name})

		a.saver.Request()
		if err := a.flush(ctx); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added habit %s", id)))
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habit definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		for _, habit := range a.store.Settings().Habits {
			line := fmt.Sprintf("%-12s %s", habit.ID, habit.Name)
			if habit.Archived {
				line += " " + ui.Faint("(archived)")
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	habitCmd.AddCommand(habitDoneCmd)
	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	rootCmd.AddCommand(habitCmd)
}
