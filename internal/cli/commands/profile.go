package commands

import (
	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/config"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
	"github.com/snackshop-dev/snackadmin/internal/cli/profileselect"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Choose which API the CLI talks to",
		Long: `Profiles name API endpoints, e.g. local development and production.
Each profile keeps its own stored session.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List profiles",
			RunE: func(cmd *cobra.Command, args []string) error {
				file, err := config.LoadFile()
				if err != nil {
					return err
				}
				profiles := profileselect.Profiles(file)
				selected := profileselect.Selected(file)
				return app.Printer.Print(profiles, func(t *format.Table) {
					t.Header("", "NAME", "API URL")
					for _, p := range profiles {
						mark := ""
						if p.Name == selected {
							mark = "*"
						}
						t.Row(mark, p.Name, p.APIURL)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "use [name]",
			Short: "Select the profile used by later commands",
			Long: `Select the profile used by later commands.

Without a name an interactive list is shown.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) > 0 {
					name = args[0]
				} else {
					file, err := config.LoadFile()
					if err != nil {
						return err
					}
					p, err := profileselect.Prompt(app.Prompter, file)
					if err != nil {
						return err
					}
					name = p.Name
				}

				p, err := profileselect.Use(name)
				if err != nil {
					return err
				}
				notify.Success(app.Notifier, "Using profile "+p.Name+" ("+p.APIURL+")")
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name> <api-url>",
			Short: "Add or update a profile",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := profileselect.Add(args[0], args[1]); err != nil {
					return err
				}
				notify.Success(app.Notifier, "Saved profile "+args[0])
				return nil
			},
		},
	)
	return cmd
}
