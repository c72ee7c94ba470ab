package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	GroupID: "data",
	Short:   "Export the full document as JSON or YAML",
	Long: `Export writes the entire document, including sections this version of
daybook does not understand, to stdout or to a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		data, err := a.store.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to serialize document: %w", err)
		}

		switch exportFormat {
		case "json":
			// Snapshot is already indented JSON.
		case "yaml":
			var doc map[string]any
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("failed to decode document: %w", err)
			}
			data, err = yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("failed to encode yaml: %w", err)
			}
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", exportFormat)
		}

		if len(args) == 0 {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json or yaml)")
	rootCmd.AddCommand(exportCmd)
}
