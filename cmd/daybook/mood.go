package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/ui"
)

var moodCmd = &cobra.Command{
	Use:     "mood <1-10> [date]",
	GroupID: "tracking",
	Short:   "Record a mood rating for a day",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rating, err := strconv.Atoi(args[0])
		if err != nil || rating < 1 || rating > 10 {
			return fmt.Errorf("mood must be a number between 1 and 10")
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		arg := ""
		if len(args) > 1 {
			arg = args[1]
		}
		date, err := parseDate(arg, a.store.Today())
		if err != nil {
			return err
		}

		a.store.Day(date).Mood = &rating
		a.saver.Request()
		if err := a.flush(ctx); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Mood %d/10 on %s", rating, date)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moodCmd)
}
