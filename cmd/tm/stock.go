package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"tilemaster/internal/copywriter"
	"tilemaster/internal/schema"
	"tilemaster/internal/ui"
)

var stockCmd = &cobra.Command{
	Use:     "stock",
	GroupID: "shop",
	Short:   "Manage tile inventory",
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stock items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		items := ac.app.Stock()
		if len(items) == 0 {
			fmt.Println("No stock items.")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			qty := strconv.Itoa(item.StockQuantity)
			if item.StockQuantity <= 20 {
				qty = ui.RenderWarn(qty)
			}
			rows = append(rows, []string{
				shortID(item.ID), item.Name, string(item.Type), item.Size,
				fmt.Sprintf("$%.2f", item.Price), qty,
			})
		}
		fmt.Println(ui.Table([]string{"ID", "Name", "Material", "Size", "Price", "Qty"}, rows))
		return nil
	},
}

var stockShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stock item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		item, err := findStockByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", ui.RenderHeader(item.Name))
		fmt.Printf("  ID:       %s\n", item.ID)
		fmt.Printf("  Material: %s\n", item.Type)
		fmt.Printf("  Size:     %s\n", item.Size)
		fmt.Printf("  Price:    $%.2f\n", item.Price)
		fmt.Printf("  In stock: %d (retail value $%.2f)\n", item.StockQuantity, item.RetailValue())
		if item.Description != "" {
			fmt.Printf("  About:    %s\n", item.Description)
		}
		if item.ImageURL != "" {
			fmt.Printf("  Image:    %s\n", item.ImageURL)
		}
		return nil
	},
}

var stockAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a stock item",
	Long: `Add a stock item. With no flags an interactive form opens;
with --name and --material the item is created directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		item := schema.StockItem{ID: schema.NewID()}
		item.Name, _ = cmd.Flags().GetString("name")
		material, _ := cmd.Flags().GetString("material")
		item.Type = schema.Material(material)
		item.Size, _ = cmd.Flags().GetString("size")
		item.Price, _ = cmd.Flags().GetFloat64("price")
		item.StockQuantity, _ = cmd.Flags().GetInt("quantity")
		item.Description, _ = cmd.Flags().GetString("description")
		item.ImageURL, _ = cmd.Flags().GetString("image-url")

		if item.Name == "" {
			if err := stockForm(&item); err != nil {
				return err
			}
		}

		if ai, _ := cmd.Flags().GetBool("ai-copy"); ai && item.Description == "" {
			writer := copywriter.New(ac.cfg.AnthropicAPIKey, ac.cfg.AnthropicModel, ac.logger)
			item.Description = writer.Describe(cmd.Context(), item.Name, string(item.Type), item.Size)
		}

		if err := ac.app.AddStock(item); err != nil {
			return err
		}
		fmt.Printf("%s Added %s (%s)\n", ui.RenderPass("✓"), item.Name, shortID(item.ID))
		return nil
	},
}

var stockUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a stock item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		item, err := findStockByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().NFlag() == 0 {
			if err := stockForm(&item); err != nil {
				return err
			}
		} else {
			if cmd.Flags().Changed("name") {
				item.Name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("material") {
				material, _ := cmd.Flags().GetString("material")
				item.Type = schema.Material(material)
			}
			if cmd.Flags().Changed("size") {
				item.Size, _ = cmd.Flags().GetString("size")
			}
			if cmd.Flags().Changed("price") {
				item.Price, _ = cmd.Flags().GetFloat64("price")
			}
			if cmd.Flags().Changed("quantity") {
				item.StockQuantity, _ = cmd.Flags().GetInt("quantity")
			}
			if cmd.Flags().Changed("description") {
				item.Description, _ = cmd.Flags().GetString("description")
			}
			if cmd.Flags().Changed("image-url") {
				item.ImageURL, _ = cmd.Flags().GetString("image-url")
			}
		}

		if err := ac.app.UpdateStock(item); err != nil {
			return err
		}
		fmt.Printf("%s Updated %s\n", ui.RenderPass("✓"), item.Name)
		return nil
	},
}

var stockDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stock item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		item, err := findStockByPrefix(ac, args[0])
		if err != nil {
			return err
		}
		if err := ac.app.DeleteStock(item.ID); err != nil {
			return err
		}
		fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), item.Name)
		return nil
	},
}

var stockDescribeCmd = &cobra.Command{
	Use:   "describe <id>",
	Short: "Generate marketing copy for a stock item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		item, err := findStockByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		writer := copywriter.New(ac.cfg.AnthropicAPIKey, ac.cfg.AnthropicModel, ac.logger)
		if !writer.Configured() {
			fmt.Printf("%s No API key configured; using placeholder copy\n", ui.RenderWarn("⚠"))
		}
		text := writer.Describe(cmd.Context(), item.Name, string(item.Type), item.Size)
		fmt.Println(text)

		if save, _ := cmd.Flags().GetBool("save"); save {
			item.Description = text
			if err := ac.app.UpdateStock(item); err != nil {
				return err
			}
			fmt.Printf("%s Saved as description\n", ui.RenderPass("✓"))
		}
		return nil
	},
}

// stockForm edits item in place through an interactive form.
func stockForm(item *schema.StockItem) error {
	price := strconv.FormatFloat(item.Price, 'f', -1, 64)
	qty := strconv.Itoa(item.StockQuantity)

	materials := schema.Materials()
	options := make([]huh.Option[schema.Material], 0, len(materials))
	for _, m := range materials {
		options = append(options, huh.NewOption(string(m), m))
	}
	if item.Type == "" {
		item.Type = materials[0]
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&item.Name).
				Validate(requiredField("name")),
			huh.NewSelect[schema.Material]().Title("Material").
				Options(options...).Value(&item.Type),
			huh.NewInput().Title("Size").Placeholder("60x60cm").Value(&item.Size),
			huh.NewInput().Title("Price (USD)").Value(&price).
				Validate(numberField),
			huh.NewInput().Title("Quantity").Value(&qty).
				Validate(intField),
			huh.NewText().Title("Description").Value(&item.Description).Lines(3),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	item.Price, _ = strconv.ParseFloat(price, 64)
	item.StockQuantity, _ = strconv.Atoi(qty)
	return nil
}

func findStockByPrefix(ac *appContext, prefix string) (schema.StockItem, error) {
	if item, err := ac.app.FindStock(prefix); err == nil {
		return item, nil
	}
	var match schema.StockItem
	count := 0
	for _, item := range ac.app.Stock() {
		if len(prefix) >= 4 && len(item.ID) >= len(prefix) && item.ID[:len(prefix)] == prefix {
			match = item
			count++
		}
	}
	switch count {
	case 1:
		return match, nil
	case 0:
		return schema.StockItem{}, fmt.Errorf("no stock item matches %q", prefix)
	default:
		return schema.StockItem{}, fmt.Errorf("%d stock items match %q, be more specific", count, prefix)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func numberField(s string) error {
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

func intField(s string) error {
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{stockAddCmd, stockUpdateCmd} {
		c.Flags().String("name", "", "Item name")
		c.Flags().String("material", "", "Material category")
		c.Flags().String("size", "", "Tile size, e.g. 60x60cm")
		c.Flags().Float64("price", 0, "Unit price in USD")
		c.Flags().Int("quantity", 0, "Units in stock")
		c.Flags().String("description", "", "Item description")
		c.Flags().String("image-url", "", "Product image URL")
	}
	stockAddCmd.Flags().Bool("ai-copy", false, "Generate the description with AI")
	stockDescribeCmd.Flags().Bool("save", false, "Save the generated copy as the item description")

	stockCmd.AddCommand(stockListCmd, stockShowCmd, stockAddCmd,
		stockUpdateCmd, stockDeleteCmd, stockDescribeCmd)
	rootCmd.AddCommand(stockCmd)
}
