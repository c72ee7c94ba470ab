package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "data",
	Short:   "Show document and sync status",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		doc := a.store.Data()

		fmt.Println(ui.Header("Document"))
		fmt.Printf("  Schema version: %s\n", doc.Version)
		fmt.Printf("  Days recorded:  %d\n", len(doc.Days))
		fmt.Printf("  Books:          %d\n", len(doc.Books))
		fmt.Printf("  Medications:    %d\n", len(doc.Medications))

		open := 0
		for _, issue := range doc.Issues {
			if issue != nil && issue.Open() {
				open++
			}
		}
		fmt.Printf("  Open issues:    %d\n", open)

		fmt.Println(ui.Header("Remote"))
		fmt.Printf("  Store:    %s\n", a.cfg.RemoteBaseURL)
		fmt.Printf("  Document: %s\n", a.cfg.DocumentName)
		if _, bound := a.binding.Bound(); bound {
			fmt.Printf("  State:    %s\n", ui.Success("bound"))
		} else {
			fmt.Printf("  State:    %s\n", ui.Faint("not created yet (first save will create it)"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
