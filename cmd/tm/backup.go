package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tilemaster/internal/backup"
	"tilemaster/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	GroupID: "data",
	Short:   "Export all shop data to a JSONL file",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		path := backup.TimestampedName()
		if len(args) == 1 {
			path = args[0]
		}

		snap := backup.Snapshot{
			Stock:     ac.app.Stock(),
			Customers: ac.app.Customers(),
			Staff:     ac.app.Staff(),
		}
		if err := backup.Export(snap, path); err != nil {
			return err
		}
		total := len(snap.Stock) + len(snap.Customers) + len(snap.Staff)
		fmt.Printf("%s Exported %d records to %s\n", ui.RenderPass("✓"), total, path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "data",
	Short:   "Import shop data from a JSONL file",
	Long: `Import a JSONL backup, replacing all current data. Records the
file cannot parse are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("import replaces all current data, re-run with --force")
		}

		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		snap, result, err := backup.Import(args[0])
		if err != nil {
			return err
		}

		ac.app.FactoryReset()
		var failed int
		for _, item := range snap.Stock {
			if err := ac.app.AddStock(item); err != nil {
				ac.logger.Printf("import: skipping stock %s: %v", item.ID, err)
				failed++
			}
		}
		for _, rec := range snap.Customers {
			if err := ac.app.AddCustomer(rec); err != nil {
				ac.logger.Printf("import: skipping customer %s: %v", rec.ID, err)
				failed++
			}
		}
		for _, rec := range snap.Staff {
			if err := ac.app.AddStaff(rec); err != nil {
				ac.logger.Printf("import: skipping staff %s: %v", rec.ID, err)
				failed++
			}
		}

		imported := result.LinesRead - len(result.Skipped) - failed
		fmt.Printf("%s Imported %d records from %s\n", ui.RenderPass("✓"), imported, args[0])
		if n := len(result.Skipped) + failed; n > 0 {
			fmt.Printf("%s Skipped %d unusable record(s), see log for details\n",
				ui.RenderWarn("⚠"), n)
			for _, reason := range result.Skipped {
				ac.logger.Printf("import: %s", reason)
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("force", false, "Confirm replacing all current data")

	rootCmd.AddCommand(exportCmd, importCmd)
}
