package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"tilemaster/internal/config"
	"tilemaster/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "data",
	Short:   "Manage TileMaster configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Remote database URL").
					Description("libsql://your-db.turso.io, empty for local-only").
					Value(&cfg.RemoteURL),
				huh.NewInput().Title("Auth token").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.RemoteToken),
				huh.NewInput().Title("Anthropic API key").
					Description("enables AI product copy, optional").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.AnthropicAPIKey),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}

		if err := config.Write(cfg); err != nil {
			return err
		}
		path, _ := config.Path()
		fmt.Printf("%s Config written to %s\n", ui.RenderPass("✓"), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path, _ := config.Path()

		fmt.Printf("Config file:    %s\n", path)
		fmt.Printf("remote_url:     %s\n", orUnset(cfg.RemoteURL))
		fmt.Printf("remote_token:   %s\n", masked(cfg.RemoteToken))
		fmt.Printf("local_path:     %s\n", cfg.LocalPath)
		fmt.Printf("anthropic_key:  %s\n", masked(cfg.AnthropicAPIKey))
		fmt.Printf("dashboard_port: %d\n", cfg.DashboardPort)
		fmt.Printf("log_file:       %s\n", orUnset(cfg.LogFile))
		fmt.Printf("seed_file:      %s\n", orUnset(cfg.SeedFile))
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return ui.RenderFaint("(unset)")
	}
	return s
}

func masked(s string) string {
	if s == "" {
		return ui.RenderFaint("(unset)")
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
