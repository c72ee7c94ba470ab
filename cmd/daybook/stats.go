package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/cache"
	"github.com/mschirtz/daybook/internal/schema"
	"github.com/mschirtz/daybook/internal/ui"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "data",
	Short:   "Show habit streaks, mood average, and symptom frequency",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		db, err := cache.Open(a.cfg.CachePath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			return err
		}
		if err := db.Rebuild(ctx, a.store.Data()); err != nil {
			return fmt.Errorf("failed to rebuild stats cache: %w", err)
		}

		today := a.store.Today()
		from := schema.DateKey(time.Now().AddDate(0, 0, -statsDays+1))

		fmt.Println(ui.Header("Habit streaks"))
		for _, habit := range a.store.Settings().Habits {
			streak, err := db.HabitStreak(ctx, habit.ID, today)
			if err != nil {
				return err
			}
			fmt.Printf("  %-12s %d day(s)\n", habit.Name, streak)
		}

		fmt.Println(ui.Header(fmt.Sprintf("Last %d days", statsDays)))
		avg, ok, err := db.MoodAverage(ctx, from, today)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("  Average mood: %.1f\n", avg)
		} else {
			fmt.Printf("  Average mood: %s\n", ui.Faint("no moods recorded"))
		}

		counts, err := db.SymptomCounts(ctx, from, today)
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Printf("  Symptoms:     %s\n", ui.Faint("none recorded"))
		} else {
			fmt.Println("  Symptoms:")
			for _, c := range counts {
				name := c.CategoryID
				for _, cat := range a.store.Settings().SymptomCategories {
					if cat.ID == c.CategoryID {
						name = cat.Name
						break
					}
				}
				fmt.Printf("    %-12s x%d\n", name, c.Count)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsDays, "days", "n", 30, "window size in days")
	rootCmd.AddCommand(statsCmd)
}
