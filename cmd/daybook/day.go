package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/ui"
)

var dayCmd = &cobra.Command{
	Use:     "day [date]",
	GroupID: "tracking",
	Short:   "Show everything recorded for a day",
	Long: `Show the full record for a calendar day.

The date argument accepts YYYY-MM-DD or natural language:

  daybook day
  daybook day yesterday
  daybook day 2024-01-15`,
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
		doc := a.store.Data()

		fmt.Println(ui.Header(date))

		fmt.Println(ui.Header("Habits"))
		for _, habit := range settings.Habits {
			if habit.Archived {
				continue
			}
			fmt.Printf("  %s %s\n", ui.Check(day.Habits[habit.ID]), habit.Name)
		}

		if day.Mood != nil {
			fmt.Printf("%s %d/10\n", ui.Header("Mood"), *day.Mood)
		} else {
			fmt.Printf("%s %s\n", ui.Header("Mood"), ui.Faint("not recorded"))
		}

		if len(day.Symptoms) > 0 {
			fmt.Println(ui.Header("Symptoms"))
			for _, sym := range day.Symptoms {
				name := sym.CategoryID
				for _, cat := range settings.SymptomCategories {
					if cat.ID == sym.CategoryID {
						name = cat.Name
					}
				}
				line := fmt.Sprintf("  %s (severity %d)", name, sym.Severity)
				if sym.Note != "" {
					line += ": " + sym.Note
				}
				fmt.Println(line)
			}
		}

		if len(day.Reading) > 0 {
			fmt.Println(ui.Header("Reading"))
			for _, session := range day.Reading {
				title := session.BookID
				if book, ok := doc.Books[session.BookID]; ok && book != nil {
					title = book.Title
				}
				fmt.Printf("  %s: %d min\n", title, session.Minutes)
			}
		}

		if day.Notes != "" {
			fmt.Println(ui.Header("Notes"))
			fmt.Println("  " + day.Notes)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dayCmd)
}
