package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tilemaster/internal/copywriter"
	"tilemaster/internal/ui"
)

var insightCmd = &cobra.Command{
	Use:     "insight",
	GroupID: "shop",
	Short:   "Summarize the inventory numbers",
	Long: `Print inventory statistics followed by a short AI-written read of
them. Without an API key the summary is a plain recital of the figures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		st := ac.app.Stats()

		fmt.Printf("%s\n\n", ui.RenderHeader("Inventory"))
		fmt.Printf("  Items:       %d (%d units)\n", st.ItemCount, st.UnitCount)
		fmt.Printf("  Value:       $%.2f\n", st.TotalValue)
		if st.TopCategory != "" {
			fmt.Printf("  Top line:    %s\n", st.TopCategory)
		}
		if len(st.LowStock) > 0 {
			fmt.Printf("  Low stock:   %s\n", ui.RenderWarn(fmt.Sprintf("%d item(s)", len(st.LowStock))))
			for _, item := range st.LowStock {
				fmt.Printf("    - %s (%d left)\n", item.Name, item.StockQuantity)
			}
		}
		fmt.Printf("  Customers:   %d ($%.2f lifetime)\n", st.CustomerCount, st.TotalRevenue)
		fmt.Printf("  Staff:       %d\n", st.StaffCount)

		writer := copywriter.New(ac.cfg.AnthropicAPIKey, ac.cfg.AnthropicModel, ac.logger)
		fmt.Printf("\n%s %s\n", ui.RenderAccent("▸"),
			writer.Insight(cmd.Context(), st.TotalValue, st.ItemCount, st.TopCategory))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightCmd)
}
