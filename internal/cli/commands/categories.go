package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

// NewCategoriesCmd creates the categories command group
func NewCategoriesCmd(app *App) *cobra.Command {
	cmd := protect(&cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage product categories",
	})

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List categories",
			RunE: func(cmd *cobra.Command, args []string) error {
				categories, err := app.API.Categories().List(cmd.Context())
				if err != nil {
					return err
				}
				if len(categories) == 0 && !app.Printer.Structured() {
					app.Printer.Println("No categories found.")
					return nil
				}
				return app.Printer.Print(categories, func(t *format.Table) {
					t.Header("ID", "NAME", "DESCRIPTION")
					for _, c := range categories {
						t.Row(c.ID, c.Name, format.Truncate(c.Description, 60))
					}
				})
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := app.API.Categories().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printCategory(app, c)
			},
		},
		newCategoryWriteCmd(app, false),
		newCategoryWriteCmd(app, true),
		newCategoryDeleteCmd(app),
	)
	return cmd
}

func printCategory(app *App, c *client.Category) error {
	return app.Printer.Print(c, func(t *format.Table) {
		t.KV("ID", c.ID)
		t.KV("Name", c.Name)
		t.KV("Description", c.Description)
		t.KV("Image", c.Image)
	})
}

// newCategoryWriteCmd builds create, or update when update is set. Both send multipart forms.
func newCategoryWriteCmd(app *App, update bool) *cobra.Command {
	var name, description, image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in := client.CategoryInput{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
			if update {
				current, err := app.API.Categories().Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("name") {
					in.Name = current.Name
				}
				if !cmd.Flags().Changed("description") {
					in.Description = current.Description
				}
			}
			if err := forms.ValidateVar("name", in.Name, "required,max=100"); err != nil {
				return err
			}

			if image != "" {
				f, err := os.Open(image)
				if err != nil {
					return fmt.Errorf("failed to open image: %w", err)
				}
				defer f.Close()
				in.Image = f
				in.ImageName = filepath.Base(image)
			}

			var c *client.Category
			var err error
			if update {
				c, err = app.API.Categories().Update(ctx, args[0], in)
			} else {
				c, err = app.API.Categories().Create(ctx, in)
			}
			if err != nil {
				return err
			}

			verb := "created"
			if update {
				verb = "updated"
			}
			notify.Success(app.Notifier, fmt.Sprintf("Category %q %s", c.Name, verb))
			return printCategory(app, c)
		},
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Edit a category"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.Flags().StringVar(&name, "name", "", "Category name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&image, "image", "", "Path to an image file to upload")
	return cmd
}

func newCategoryDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmDelete(app, "category "+args[0], yes)
			if err != nil || !ok {
				return err
			}
			if err := app.API.Categories().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Category deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
