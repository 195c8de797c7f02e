package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"tilemaster/internal/schema"
	"tilemaster/internal/ui"
)

var customerCmd = &cobra.Command{
	Use:     "customer",
	GroupID: "shop",
	Short:   "Manage the customer book",
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	Long: `List customers. Staff without manager privileges see only the
customers assigned to them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		me, err := currentStaff(ac.app)
		if err != nil {
			return err
		}

		customers := ac.app.Customers()
		if me != nil && !me.IsPrivileged() {
			mine := customers[:0]
			for _, rec := range customers {
				if rec.AssignedTo == me.ID {
					mine = append(mine, rec)
				}
			}
			customers = mine
		}
		if len(customers) == 0 {
			fmt.Println("No customers.")
			return nil
		}

		staffNames := map[string]string{}
		for _, rec := range ac.app.Staff() {
			staffNames[rec.ID] = rec.Name
		}

		rows := make([][]string, 0, len(customers))
		for _, rec := range customers {
			meeting := rec.MeetingDate
			if rec.HasUpcomingMeeting(schema.Today()) {
				meeting = ui.RenderAccent(meeting)
			}
			rows = append(rows, []string{
				shortID(rec.ID), rec.Name, rec.Phone,
				fmt.Sprintf("$%.2f", rec.TotalSpent),
				staffNames[rec.AssignedTo], meeting,
			})
		}
		fmt.Println(ui.Table([]string{"ID", "Name", "Phone", "Spent", "Assigned", "Meeting"}, rows))
		return nil
	},
}

var customerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		rec, err := findCustomerByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", ui.RenderHeader(rec.Name))
		fmt.Printf("  ID:      %s\n", rec.ID)
		if rec.Email != "" {
			fmt.Printf("  Email:   %s\n", rec.Email)
		}
		if rec.Phone != "" {
			fmt.Printf("  Phone:   %s\n", rec.Phone)
		}
		if rec.Address != "" {
			fmt.Printf("  Address: %s\n", rec.Address)
		}
		fmt.Printf("  Spent:   $%.2f\n", rec.TotalSpent)
		if rec.PurchasedVolume > 0 {
			fmt.Printf("  Volume:  %.1f sqm\n", rec.PurchasedVolume)
		}
		if rec.AssignedTo != "" {
			name := rec.AssignedTo
			if staff, err := ac.app.FindStaff(rec.AssignedTo); err == nil {
				name = staff.Name
			}
			fmt.Printf("  Rep:     %s\n", name)
		}
		if rec.MeetingDate != "" {
			fmt.Printf("  Meeting: %s", rec.MeetingDate)
			if rec.MeetingInfo != "" {
				fmt.Printf(" (%s)", rec.MeetingInfo)
			}
			fmt.Println()
		}
		return nil
	},
}

var customerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		rec := schema.CustomerRecord{ID: schema.NewID()}
		rec.Name, _ = cmd.Flags().GetString("name")
		rec.Email, _ = cmd.Flags().GetString("email")
		rec.Phone, _ = cmd.Flags().GetString("phone")
		rec.Address, _ = cmd.Flags().GetString("address")
		rec.TotalSpent, _ = cmd.Flags().GetFloat64("spent")
		rec.AssignedTo, _ = cmd.Flags().GetString("assign")

		if rec.Name == "" {
			if err := customerForm(&rec); err != nil {
				return err
			}
		}

		// A new customer defaults to the logged-in rep when no explicit
		// assignment was given.
		if rec.AssignedTo == "" {
			if me, err := currentStaff(ac.app); err == nil && me != nil {
				rec.AssignedTo = me.ID
			}
		}

		if err := ac.app.AddCustomer(rec); err != nil {
			return err
		}
		fmt.Printf("%s Added %s (%s)\n", ui.RenderPass("✓"), rec.Name, shortID(rec.ID))
		return nil
	},
}

var customerUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		rec, err := findCustomerByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().NFlag() == 0 {
			if err := customerForm(&rec); err != nil {
				return err
			}
		} else {
			if cmd.Flags().Changed("name") {
				rec.Name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("email") {
				rec.Email, _ = cmd.Flags().GetString("email")
			}
			if cmd.Flags().Changed("phone") {
				rec.Phone, _ = cmd.Flags().GetString("phone")
			}
			if cmd.Flags().Changed("address") {
				rec.Address, _ = cmd.Flags().GetString("address")
			}
			if cmd.Flags().Changed("spent") {
				rec.TotalSpent, _ = cmd.Flags().GetFloat64("spent")
			}
			if cmd.Flags().Changed("volume") {
				rec.PurchasedVolume, _ = cmd.Flags().GetFloat64("volume")
			}
			if cmd.Flags().Changed("assign") {
				rec.AssignedTo, _ = cmd.Flags().GetString("assign")
			}
		}

		if err := ac.app.UpdateCustomer(rec); err != nil {
			return err
		}
		fmt.Printf("%s Updated %s\n", ui.RenderPass("✓"), rec.Name)
		return nil
	},
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		rec, err := findCustomerByPrefix(ac, args[0])
		if err != nil {
			return err
		}
		if err := ac.app.DeleteCustomer(rec.ID); err != nil {
			return err
		}
		fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), rec.Name)
		return nil
	},
}

var customerScheduleCmd = &cobra.Command{
	Use:   "schedule <id> <when...>",
	Short: "Schedule a meeting with a customer",
	Long: `Schedule a meeting. The date can be natural language:

  tm customer schedule 3fa1 next friday
  tm customer schedule 3fa1 tomorrow --note "kitchen reno quote"
  tm customer schedule 3fa1 2026-09-12`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		rec, err := findCustomerByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		date, err := parseMeetingDate(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		rec.MeetingDate = date
		if note, _ := cmd.Flags().GetString("note"); note != "" {
			rec.MeetingInfo = note
		}

		if err := ac.app.UpdateCustomer(rec); err != nil {
			return err
		}
		fmt.Printf("%s Meeting with %s on %s\n", ui.RenderPass("✓"), rec.Name, ui.RenderAccent(date))
		return nil
	},
}

var customerMeetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "Show your upcoming meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		me, err := currentStaff(ac.app)
		if err != nil {
			return err
		}
		if me == nil {
			return fmt.Errorf("not logged in (try: tm staff login)")
		}

		next, ok := ac.app.NextMeeting(me.ID, schema.Today())
		if !ok {
			fmt.Println("No upcoming meetings.")
			return nil
		}
		fmt.Printf("Next meeting: %s with %s", ui.RenderAccent(next.MeetingDate), next.Name)
		if next.MeetingInfo != "" {
			fmt.Printf(" (%s)", next.MeetingInfo)
		}
		fmt.Println()
		return nil
	},
}

// parseMeetingDate accepts either an ISO date or natural language such
// as "next friday".
func parseMeetingDate(text string) (string, error) {
	if t, err := time.Parse(schema.MeetingDateLayout, text); err == nil {
		return t.Format(schema.MeetingDateLayout), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(text, time.Now())
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", text, err)
	}
	if result == nil {
		return "", fmt.Errorf("could not understand date %q (try YYYY-MM-DD)", text)
	}
	return result.Time.Format(schema.MeetingDateLayout), nil
}

func customerForm(rec *schema.CustomerRecord) error {
	spent := strconv.FormatFloat(rec.TotalSpent, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&rec.Name).
				Validate(requiredField("name")),
			huh.NewInput().Title("Email").Value(&rec.Email),
			huh.NewInput().Title("Phone").Value(&rec.Phone),
			huh.NewInput().Title("Address").Value(&rec.Address),
			huh.NewInput().Title("Total spent (USD)").Value(&spent).
				Validate(numberField),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	rec.TotalSpent, _ = strconv.ParseFloat(spent, 64)
	return nil
}

func findCustomerByPrefix(ac *appContext, prefix string) (schema.CustomerRecord, error) {
	if rec, err := ac.app.FindCustomer(prefix); err == nil {
		return rec, nil
	}
	var match schema.CustomerRecord
	count := 0
	for _, rec := range ac.app.Customers() {
		if len(prefix) >= 4 && len(rec.ID) >= len(prefix) && rec.ID[:len(prefix)] == prefix {
			match = rec
			count++
		}
	}
	switch count {
	case 1:
		return match, nil
	case 0:
		return schema.CustomerRecord{}, fmt.Errorf("no customer matches %q", prefix)
	default:
		return schema.CustomerRecord{}, fmt.Errorf("%d customers match %q, be more specific", count, prefix)
	}
}

func init() {
	for _, c := range []*cobra.Command{customerAddCmd, customerUpdateCmd} {
		c.Flags().String("name", "", "Customer name")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("phone", "", "Phone number")
		c.Flags().String("address", "", "Street address")
		c.Flags().Float64("spent", 0, "Total spent in USD")
		c.Flags().String("assign", "", "Staff id of the assigned rep")
	}
	customerUpdateCmd.Flags().Float64("volume", 0, "Purchased volume in sqm")
	customerScheduleCmd.Flags().String("note", "", "What the meeting is about")

	customerCmd.AddCommand(customerListCmd, customerShowCmd, customerAddCmd,
		customerUpdateCmd, customerDeleteCmd, customerScheduleCmd, customerMeetingsCmd)
	rootCmd.AddCommand(customerCmd)
}
