package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

var (
	userRoles    = []string{client.RoleAdmin, client.RoleUser}
	userStatuses = []string{client.UserStatusActive, client.UserStatusBlocked}
	userFields   = []string{listing.FieldName, listing.FieldEmail, listing.FieldPhone}
)

// NewUsersCmd creates the users command group
func NewUsersCmd(app *App) *cobra.Command {
	cmd := protect(&cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage customer and admin accounts",
	})

	cmd.AddCommand(
		newUsersListCmd(app),
		newUsersShowCmd(app),
		newUsersUpdateCmd(app),
		newUsersStatusCmd(app, "block", client.UserStatusBlocked),
		newUsersStatusCmd(app, "unblock", client.UserStatusActive),
		newUsersRoleCmd(app),
		newUsersResetPasswordCmd(app),
		newUsersDeleteCmd(app),
	)
	return cmd
}

type userListOptions struct {
	search string
	field  string
	role   string
	status string
	pageFlags
}

func newUsersListCmd(app *App) *cobra.Command {
	var opts userListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "Search text")
	cmd.Flags().StringVar(&opts.field, "field", listing.FieldName, "Field to search (name, email or phone)")
	cmd.Flags().StringVar(&opts.role, "role", "", "Filter by role (admin or user)")
	cmd.Flags().StringVar(&opts.status, "status", "", "Filter by status (active or blocked)")
	opts.register(cmd, "Sort by name, email or created")
	return cmd
}

func runUsersList(ctx context.Context, app *App, opts userListOptions) error {
	for _, c := range []struct {
		flag, value string
		allowed     []string
	}{
		{"field", opts.field, userFields},
		{"role", opts.role, userRoles},
		{"status", opts.status, userStatuses},
	} {
		if err := checkChoice(c.flag, c.value, c.allowed); err != nil {
			return err
		}
	}

	users, err := app.API.Users().List(ctx)
	if err != nil {
		return err
	}

	filtered := listing.Users(users, listing.UserFilter{Search: opts.search, Field: opts.field, Role: opts.role, Status: opts.status})
	by, desc := opts.sortKey()
	filtered = listing.SortUsers(filtered, by, desc)
	page := listing.Paginate(filtered, opts.page, opts.size(app))

	s := app.Printer.Styles
	err = app.Printer.Print(page.Items, func(t *format.Table) {
		t.Header("ID", "NAME", "EMAIL", "PHONE", "ROLE", "STATUS", "JOINED")
		for _, u := range page.Items {
			t.Row(u.ID, listing.FullName(u), u.Email, u.Phone, s.Role(u.Role), s.UserStatus(u.Status), format.Date(u.CreatedAt))
		}
	})
	if err != nil {
		return err
	}
	footer(app, page, "users")
	return nil
}

func newUsersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user and their orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := app.API.Users().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if app.Printer.Structured() {
				return printUserRecord(app, u)
			}
			if err := printUserRecord(app, u); err != nil {
				return err
			}

			orders, err := app.API.Orders().ByUser(ctx, u.ID)
			if err != nil {
				return err
			}
			app.Printer.Printf("\n%s\n", app.Printer.Styles.Title(fmt.Sprintf("Orders (%d)", len(orders))))
			if len(orders) == 0 {
				return nil
			}
			t := app.Printer.NewTable()
			t.Header("ORDER", "TOTAL", "STATUS", "PLACED")
			for _, o := range orders {
				t.Row(format.OrderNumber(o.ID), format.Price(o.TotalAmount), app.Printer.Styles.OrderStatus(o.Status), format.Date(o.CreatedAt))
			}
			return t.Flush()
		},
	}
}

func printUserRecord(app *App, u *client.User) error {
	s := app.Printer.Styles
	return app.Printer.Print(u, func(t *format.Table) {
		t.KV("ID", u.ID)
		t.KV("Name", listing.FullName(*u))
		t.KV("Email", u.Email)
		t.KV("Phone", u.Phone)
		t.KV("Role", s.Role(u.Role))
		t.KV("Status", s.UserStatus(u.Status))
		t.KV("Joined", format.Date(u.CreatedAt))
	})
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var firstName, lastName, email, phone, role string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := app.API.Users().Get(ctx, args[0])
			if err != nil {
				return err
			}

			form := forms.UserFormFrom(*current)
			for name, dst := range map[string]*string{
				"first-name": &form.FirstName,
				"last-name":  &form.LastName,
				"email":      &form.Email,
				"phone":      &form.Phone,
				"role":       &form.Role,
			} {
				if cmd.Flags().Changed(name) {
					v, _ := cmd.Flags().GetString(name)
					*dst = v
				}
			}
			if err := forms.Validate(&form); err != nil {
				return err
			}

			u, err := app.API.Users().Update(ctx, args[0], form.Input())
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, "User updated")
			return printUserRecord(app, u)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&role, "role", "", "Role (admin or user)")
	return cmd
}

func newUsersStatusCmd(app *App, use, status string) *cobra.Command {
	short := "Block a user from signing in"
	if status == client.UserStatusActive {
		short = "Let a blocked user sign in again"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if me, err := app.Session.User(); err == nil && me.ID == args[0] && status == client.UserStatusBlocked {
				return fmt.Errorf("you cannot block your own account")
			}
			u, err := app.API.Users().UpdateStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("%s is now %s", listing.FullName(*u), u.Status))
			return nil
		},
	}
}

func newUsersRoleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "role <id> <admin|user>",
		Short:     "Change a user's role",
		Args:      cobra.ExactArgs(2),
		ValidArgs: userRoles,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("role", args[1], userRoles); err != nil {
				return err
			}
			u, err := app.API.Users().UpdateRole(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("%s is now %s", listing.FullName(*u), u.Role))
			return nil
		},
	}
}

func newUsersResetPasswordCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Email the user a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.Users().ResetPassword(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Password reset sent")
			return nil
		},
	}
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if me, err := app.Session.User(); err == nil && me.ID == args[0] {
				return fmt.Errorf("you cannot delete your own account")
			}
			ok, err := confirmDelete(app, "user "+args[0], yes)
			if err != nil || !ok {
				return err
			}
			if err := app.API.Users().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "User deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
