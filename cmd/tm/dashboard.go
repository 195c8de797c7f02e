package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tilemaster/internal/config"
	"tilemaster/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Serve a live view of the shop over HTTP",
	Long: `Start the dashboard server. Connected WebSocket clients receive a
push message for every edit made through this process, plus refreshed
statistics. Plain JSON endpoints serve the collections for polling
clients.

WebSocket messages:
- stock_update:    stock item created, updated, or deleted
- customer_update: customer record changed
- staff_update:    roster entry changed
- stats:           refreshed inventory statistics
- reset:           factory reset emptied the shop

Example usage:
  tm dashboard                 # default port from config
  tm dashboard --port 9000

Connect with a WebSocket client:
  ws://localhost:8347/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		port := ac.cfg.DashboardPort
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		server := dashboard.NewServer(ac.app, &dashboard.Config{
			Port:   port,
			Logger: log.New(os.Stderr, "[dashboard] ", log.LstdFlags),
		})

		if err := server.Start(); err != nil {
			return err
		}

		// Long-running process: notice config edits so an operator knows
		// a restart is needed. Loaded settings are not rewired live.
		stopWatch, err := config.Watch(func(_ *config.Config) {
			ac.logger.Printf("config file changed; restart the dashboard to apply")
		})
		if err != nil {
			ac.logger.Printf("config watch unavailable: %v", err)
		} else {
			defer stopWatch()
		}

		fmt.Printf("Dashboard running on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Println("\nShutting down...")
		return server.Stop()
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 8347, "Port to listen on")
	rootCmd.AddCommand(dashboardCmd)
}
