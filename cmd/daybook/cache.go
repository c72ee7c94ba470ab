package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "advanced",
	Short:   "Manage the local stats cache",
}

var cacheRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the stats cache from the document",
	Args:  cobra.NoArgs,
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
			return err
		}
		fmt.Printf("Cache rebuilt at %s (%d days)\n", a.cfg.CachePath, len(a.store.Data().Days))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheRebuildCmd)
	rootCmd.AddCommand(cacheCmd)
}
