package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/schema"
	"github.com/mschirtz/daybook/internal/ui"
)

var bookCmd = &cobra.Command{
	Use:     "book",
	GroupID: "tracking",
	Short:   "Track books and reading sessions",
}

var bookAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a book to the reading tracker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		author, _ := cmd.Flags().GetString("author")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		doc := a.store.Data()
		book := &schema.Book{
			ID:      schema.NewID(),
			Title:   args[0],
			Author:  author,
			Status:  schema.BookStatusReading,
			AddedOn: a.store.Today(),
		}
		doc.Books[book.ID] = book

		a.saver.Request()
		if err := a.flush(ctx); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added %q (%s)", book.Title, book.ID)))
		return nil
	},
}

var bookReadCmd = &cobra.Command{
	Use:   "read <book-id> <minutes> [date]",
	Short: "Record a reading session",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		minutes, err := strconv.Atoi(args[1])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("minutes must be a positive number")
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		bookID := args[0]
		if _, ok := a.store.Data().Books[bookID]; !ok {
			return fmt.Errorf("unknown book %q (see: daybook book list)", bookID)
		}

		arg := ""
		if len(args) > 2 {
			arg = args[2]
		}
		date, err := parseDate(arg, a.store.Today())
		if err != nil {
			return err
		}

		day := a.store.Day(date)
		day.Reading = append(day.Reading, schema.ReadingSession{
			BookID:  bookID,
			Minutes: minutes,
		})

		a.saver.Request()
		if err := a.flush(ctx); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%d min on %s", minutes, date)))
		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		doc := a.store.Data()
		books := make([]*schema.Book, 0, len(doc.Books))
		for _, b := range doc.Books {
			if b != nil {
				books = append(books, b)
			}
		}
		sort.Slice(books, func(i, j int) bool { return books[i].AddedOn < books[j].AddedOn })

		for _, b := range books {
			line := fmt.Sprintf("%-38s %s", b.ID, b.Title)
			if b.Author != "" {
				line += " by " + b.Author
			}
			line += " " + ui.Faint(string(b.Status))
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	bookAddCmd.Flags().String("author", "", "Book author")
	bookCmd.AddCommand(bookAddCmd)
	bookCmd.AddCommand(bookReadCmd)
	bookCmd.AddCommand(bookListCmd)
	rootCmd.AddCommand(bookCmd)
}
