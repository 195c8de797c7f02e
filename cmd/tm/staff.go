package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tilemaster/internal/schema"
	"tilemaster/internal/ui"
)

var staffCmd = &cobra.Command{
	Use:     "staff",
	GroupID: "shop",
	Short:   "Manage the employee roster",
}

var staffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff members",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		roster := ac.app.Staff()
		if len(roster) == 0 {
			fmt.Println("No staff members.")
			return nil
		}

		rows := make([][]string, 0, len(roster))
		for _, rec := range roster {
			status := string(rec.Status)
			switch rec.Status {
			case schema.StatusActive:
				status = ui.RenderPass(status)
			case schema.StatusOnLeave:
				status = ui.RenderWarn(status)
			case schema.StatusTerminated:
				status = ui.RenderErr(status)
			}
			rows = append(rows, []string{
				shortID(rec.ID), rec.Name, rec.Role,
				string(rec.Privilege), status, rec.JoinDate,
			})
		}
		fmt.Println(ui.Table([]string{"ID", "Name", "Role", "Privilege", "Status", "Joined"}, rows))
		return nil
	},
}

var staffAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a staff member",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		if _, err := requirePrivileged(ac.app); err != nil {
			return err
		}

		rec := schema.StaffRecord{
			ID:       schema.NewID(),
			Status:   schema.StatusActive,
			JoinDate: time.Now().Format("Jan 2, 2006"),
		}
		rec.Name, _ = cmd.Flags().GetString("name")
		rec.Role, _ = cmd.Flags().GetString("role")
		rec.Email, _ = cmd.Flags().GetString("email")
		rec.Username, _ = cmd.Flags().GetString("username")
		rec.Password, _ = cmd.Flags().GetString("password")

		if rec.Name == "" {
			if err := staffForm(&rec); err != nil {
				return err
			}
		}

		if err := ac.app.AddStaff(rec); err != nil {
			return err
		}
		// AddStaff derived the privilege; re-read for display.
		added, _ := ac.app.FindStaff(rec.ID)
		fmt.Printf("%s Added %s as %s (%s)\n", ui.RenderPass("✓"),
			added.Name, added.Role, added.Privilege)
		return nil
	},
}

var staffUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a staff member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		if _, err := requirePrivileged(ac.app); err != nil {
			return err
		}

		rec, err := findStaffByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().NFlag() == 0 {
			if err := staffForm(&rec); err != nil {
				return err
			}
		} else {
			if cmd.Flags().Changed("name") {
				rec.Name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("role") {
				rec.Role, _ = cmd.Flags().GetString("role")
				// The role changed, so the privilege derived from it
				// must be recomputed rather than kept.
				rec.Privilege = schema.DerivePrivilege(rec.Role)
			}
			if cmd.Flags().Changed("email") {
				rec.Email, _ = cmd.Flags().GetString("email")
			}
			if cmd.Flags().Changed("status") {
				status, _ := cmd.Flags().GetString("status")
				rec.Status = schema.StaffStatus(status)
			}
			if cmd.Flags().Changed("username") {
				rec.Username, _ = cmd.Flags().GetString("username")
			}
			if cmd.Flags().Changed("password") {
				rec.Password, _ = cmd.Flags().GetString("password")
			}
		}

		if err := ac.app.UpdateStaff(rec); err != nil {
			return err
		}
		fmt.Printf("%s Updated %s\n", ui.RenderPass("✓"), rec.Name)
		return nil
	},
}

var staffDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a staff member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		if _, err := requirePrivileged(ac.app); err != nil {
			return err
		}

		rec, err := findStaffByPrefix(ac, args[0])
		if err != nil {
			return err
		}
		if err := ac.app.DeleteStaff(rec.ID); err != nil {
			return err
		}
		fmt.Printf("%s Removed %s\n", ui.RenderPass("✓"), rec.Name)
		return nil
	},
}

var staffLoginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in as a staff member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = string(raw)
		}

		rec, err := ac.app.Authenticate(args[0], password)
		if err != nil {
			return err
		}

		if err := saveSession(&session{
			StaffID:  rec.ID,
			Username: rec.Username,
			LoggedAt: time.Now(),
		}); err != nil {
			return err
		}

		fmt.Printf("%s Logged in as %s (%s)\n", ui.RenderPass("✓"), rec.Name, rec.Privilege)
		if unread := rec.Unread(); unread > 0 {
			fmt.Printf("%s You have %d unread notification(s); see tm staff inbox\n",
				ui.RenderAccent("✉"), unread)
		}
		return nil
	},
}

var staffLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearSession(); err != nil {
			return err
		}
		fmt.Printf("%s Logged out\n", ui.RenderPass("✓"))
		return nil
	},
}

var staffWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in staff member",
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
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s, %s)\n", me.Name, me.Role, me.Privilege)
		return nil
	},
}

var staffProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your own avatar or password",
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

		avatar, _ := cmd.Flags().GetString("avatar")
		if avatar == "" {
			avatar = me.AvatarURL
		}
		password := ""
		if change, _ := cmd.Flags().GetBool("password"); change {
			fmt.Print("New password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = string(raw)
		}

		if err := ac.app.UpdateProfile(me.ID, avatar, password); err != nil {
			return err
		}
		fmt.Printf("%s Profile updated\n", ui.RenderPass("✓"))
		return nil
	},
}

var staffNotifyCmd = &cobra.Command{
	Use:   "notify <id> <message...>",
	Short: "Send a notification to a staff member",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ac, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer ac.Close()

		rec, err := findStaffByPrefix(ac, args[0])
		if err != nil {
			return err
		}

		sender := "system"
		if me, err := currentStaff(ac.app); err == nil && me != nil {
			sender = me.Name
		}

		if err := ac.app.Notify(rec.ID, strings.Join(args[1:], " "), sender); err != nil {
			return err
		}
		fmt.Printf("%s Notified %s\n", ui.RenderPass("✓"), rec.Name)
		return nil
	},
}

var staffInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show your notifications",
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

		if len(me.Notifications) == 0 {
			fmt.Println("Inbox empty.")
			return nil
		}

		markRead, _ := cmd.Flags().GetBool("mark-read")
		for _, note := range me.Notifications {
			marker := ui.RenderAccent("●")
			if note.IsRead {
				marker = ui.RenderFaint("○")
			}
			from := note.Sender
			if from == "" {
				from = "system"
			}
			fmt.Printf("%s %s  %s  %s\n", marker,
				note.Date.Format("2006-01-02 15:04"), ui.RenderFaint(from), note.Message)
			if markRead && !note.IsRead {
				if err := ac.app.MarkNotificationRead(me.ID, note.ID); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func staffForm(rec *schema.StaffRecord) error {
	statuses := []schema.StaffStatus{
		schema.StatusActive, schema.StatusOnLeave, schema.StatusTerminated,
	}
	options := make([]huh.Option[schema.StaffStatus], 0, len(statuses))
	for _, s := range statuses {
		options = append(options, huh.NewOption(string(s), s))
	}
	if rec.Status == "" {
		rec.Status = schema.StatusActive
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&rec.Name).
				Validate(requiredField("name")),
			huh.NewInput().Title("Role").Placeholder("Sales Associate").Value(&rec.Role),
			huh.NewInput().Title("Email").Value(&rec.Email),
			huh.NewSelect[schema.StaffStatus]().Title("Status").
				Options(options...).Value(&rec.Status),
			huh.NewInput().Title("Username (optional, enables login)").Value(&rec.Username),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&rec.Password),
		),
	)
	return form.Run()
}

func findStaffByPrefix(ac *appContext, prefix string) (schema.StaffRecord, error) {
	if rec, err := ac.app.FindStaff(prefix); err == nil {
		return rec, nil
	}
	var match schema.StaffRecord
	count := 0
	for _, rec := range ac.app.Staff() {
		if len(prefix) >= 4 && len(rec.ID) >= len(prefix) && rec.ID[:len(prefix)] == prefix {
			match = rec
			count++
		}
	}
	switch count {
	case 1:
		return match, nil
	case 0:
		return schema.StaffRecord{}, fmt.Errorf("no staff member matches %q", prefix)
	default:
		return schema.StaffRecord{}, fmt.Errorf("%d staff members match %q, be more specific", count, prefix)
	}
}

func init() {
	for _, c := range []*cobra.Command{staffAddCmd, staffUpdateCmd} {
		c.Flags().String("name", "", "Full name")
		c.Flags().String("role", "", "Role text, e.g. Store Manager")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("username", "", "Login username")
		c.Flags().String("password", "", "Login password")
	}
	staffUpdateCmd.Flags().String("status", "", "Active, On Leave, or Terminated")
	staffLoginCmd.Flags().String("password", "", "Password (prompted when omitted)")
	staffProfileCmd.Flags().String("avatar", "", "Avatar image URL")
	staffProfileCmd.Flags().Bool("password", false, "Prompt for a new password")
	staffInboxCmd.Flags().Bool("mark-read", false, "Mark shown notifications as read")

	staffCmd.AddCommand(staffListCmd, staffAddCmd, staffUpdateCmd, staffDeleteCmd,
		staffLoginCmd, staffLogoutCmd, staffWhoamiCmd, staffProfileCmd,
		staffNotifyCmd, staffInboxCmd)
	rootCmd.AddCommand(staffCmd)
}
