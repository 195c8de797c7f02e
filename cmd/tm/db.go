package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tilemaster/internal/store/remote"
	syncengine "tilemaster/internal/sync"
	"tilemaster/internal/ui"
)

var dbCmd = &cobra.Command{
	Use:     "db",
	GroupID: "data",
	Short:   "Inspect and provision the backing store",
}

var dbHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the backing store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		health := ac.engine.CheckHealth(cmd.Context())
		switch health {
		case syncengine.HealthOK:
			fmt.Printf("%s Remote store reachable, tables present\n", ui.RenderPass("✓"))
		case syncengine.HealthMissingTables:
			fmt.Printf("%s Remote store reachable but tables are missing\n", ui.RenderWarn("⚠"))
			fmt.Println("\nRun `tm db setup` to create them, or execute this SQL yourself:")
			fmt.Printf("\n%s\n", remote.SetupSQL)
		case syncengine.HealthConnectionError:
			fmt.Printf("%s Could not reach the remote store\n", ui.RenderErr("✗"))
			fmt.Println("Check remote_url and remote_token in your config (tm config show).")
		case syncengine.HealthUnavailable:
			fmt.Printf("%s No remote store configured, using local fallback\n", ui.RenderWarn("⚠"))
			if ac.local != nil {
				fmt.Printf("Local database: %s\n", ac.local.Path())
			}
		}
		return nil
	},
}

var dbSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the collection tables on the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		if ac.remote == nil {
			return fmt.Errorf("no remote store configured (tm config init)")
		}

		if err := ac.remote.InitSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("%s Tables created\n", ui.RenderPass("✓"))
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all shop data",
	Long: `Delete every stock item, customer, and staff record from the
backing store. The next load starts from the seed catalog again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("refusing to wipe all data without --force")
		}

		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		ac.app.FactoryReset()
		ac.app.Flush()
		fmt.Printf("%s All data deleted\n", ui.RenderPass("✓"))
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store mode and collection sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		if ac.engine.RemoteConfigured() {
			fmt.Printf("Mode:   remote (%s)\n", ac.cfg.RemoteURL)
			fmt.Printf("Health: %s\n", ac.engine.CheckHealth(cmd.Context()))
		} else {
			fmt.Println("Mode:   local fallback")
			if ac.local != nil {
				fmt.Printf("Path:   %s\n", ac.local.Path())
			}
		}
		st := ac.app.Stats()
		fmt.Printf("Stock:     %d items\n", st.ItemCount)
		fmt.Printf("Customers: %d\n", st.CustomerCount)
		fmt.Printf("Staff:     %d\n", st.StaffCount)
		return nil
	},
}

func init() {
	dbResetCmd.Flags().Bool("force", false, "Confirm deleting all data")

	dbCmd.AddCommand(dbHealthCmd, dbSetupCmd, dbResetCmd, dbStatusCmd)
	rootCmd.AddCommand(dbCmd)
}
