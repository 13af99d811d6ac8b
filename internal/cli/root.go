package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/commands"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
)

var version = "dev" // Will be set during build

// Command groups, in the order the shell layout lists them
const (
	groupCatalog = "catalog"
	groupSales   = "sales"
	groupPeople  = "people"
	groupSession = "session"
)

// NewRootCmd builds the command tree around app
func NewRootCmd(app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snackadmin",
		Short: "SnackShop admin console",
		Long: `snackadmin manages the SnackShop store from the terminal: the catalog,
orders, coupons, customers and reviews.

Run 'snackadmin login' first, then any command below, or 'snackadmin shell'
to browse the pages interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return app.Before(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Opts.APIURL, "api-url", "", "API base URL (overrides the profile)")
	flags.StringVar(&app.Opts.Profile, "profile", "", "Profile to use")
	flags.StringVarP(&app.Opts.Output, "output", "o", format.OutputTable, "Output format (table, json or yaml)")
	flags.StringVar(&app.Opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&app.Opts.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupCatalog, Title: "Catalog:"},
		&cobra.Group{ID: groupSales, Title: "Sales:"},
		&cobra.Group{ID: groupPeople, Title: "People:"},
		&cobra.Group{ID: groupSession, Title: "Session:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, c := range cmds {
			c.GroupID = group
			rootCmd.AddCommand(c)
		}
	}
	add(groupCatalog, commands.NewProductsCmd(app), commands.NewCategoriesCmd(app), commands.NewSearchCmd(app))
	add(groupSales, commands.NewHomeCmd(app), commands.NewDashboardCmd(app), commands.NewOrdersCmd(app), commands.NewCouponsCmd(app))
	add(groupPeople, commands.NewUsersCmd(app), commands.NewReviewsCmd(app))
	add(groupSession,
		commands.NewLoginCmd(app),
		commands.NewLogoutCmd(app),
		commands.NewWhoamiCmd(app),
		commands.NewPasswordCmd(app),
		commands.NewProfileCmd(app),
		commands.NewShellCmd(app),
	)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snackadmin version %s\n", version)
		},
	})

	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	app := commands.NewApp()
	rootCmd := NewRootCmd(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	return app.ReportError(rootCmd.ExecuteContext(ctx))
}
