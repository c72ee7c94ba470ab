package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/config"
	"github.com/mschirtz/daybook/internal/dashboard"
)

var dashboardPort int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Serve a live WebSocket feed of document activity",
	Long: `Dashboard runs until interrupted, broadcasting save-status transitions
and document statistics to connected WebSocket clients on /ws.

Configuration changes on disk are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		port := dashboardPort
		if port == 0 {
			port = a.cfg.DashboardPort
		}

		srv := dashboard.NewServer(&dashboard.Config{Port: port, Logger: a.logger})
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop()

		handler := dashboard.NewHandler(srv, a.logger)
		a.saver.Subscribe(handler.OnSaveEvent)

		watcher, err := config.Watch(a.logger, func(cfg *config.Config) {
			a.cfg = cfg
		})
		if err != nil {
			return err
		}
		defer watcher.Stop()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Dashboard listening on %s (Ctrl-C to stop)\n", srv.Addr())
		handler.BroadcastStats(a.store.Data(), time.Time{})

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nShutting down.")
				return nil
			case <-ticker.C:
				handler.BroadcastStats(a.store.Data(), time.Time{})
			}
		}
	},
}

func init() {
	dashboardCmd.Flags().IntVarP(&dashboardPort, "port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(dashboardCmd)
}
