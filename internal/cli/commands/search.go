package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/format"
)

var searchKinds = []string{"products", "orders", "users", "coupons", "categories"}

// NewSearchCmd creates the global search command
func NewSearchCmd(app *App) *cobra.Command {
	var kind string
	var suggest bool

	cmd := protect(&cobra.Command{
		Use:   "search <query>",
		Short: "Search products, orders, users, coupons and categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("type", kind, searchKinds); err != nil {
				return err
			}

			if suggest {
				suggestions, err := app.API.Search().Suggestions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return app.Printer.Print(suggestions, func(t *format.Table) {
					for _, s := range suggestions {
						t.Row(s)
					}
				})
			}

			res, err := app.API.Search().Query(cmd.Context(), args[0], kind)
			if err != nil {
				return err
			}
			if app.Printer.Structured() {
				return app.Printer.Print(res, nil)
			}

			total := len(res.Products) + len(res.Orders) + len(res.Users) + len(res.Coupons) + len(res.Category)
			if total == 0 {
				app.Printer.Printf("No results for %q.\n", args[0])
				return nil
			}

			s := app.Printer.Styles
			t := app.Printer.NewTable()
			t.Header("TYPE", "ID", "MATCH", "DETAIL")
			for _, p := range res.Products {
				t.Row("product", p.ID, p.SnackName, format.Price(p.Price))
			}
			for _, c := range res.Category {
				t.Row("category", c.ID, c.Name, format.Truncate(c.Description, 40))
			}
			for _, o := range res.Orders {
				t.Row("order", o.ID, format.OrderNumber(o.ID)+" "+o.CustomerName(), s.OrderStatus(o.Status))
			}
			for _, u := range res.Users {
				t.Row("user", u.ID, u.DisplayName(), u.Email)
			}
			for _, c := range res.Coupons {
				t.Row("coupon", c.ID, c.Code, format.Discount(c))
			}
			if err := t.Flush(); err != nil {
				return err
			}
			app.Printer.Printf("\n%s\n", s.Muted(fmt.Sprintf("%d results", total)))
			return nil
		},
	})

	cmd.Flags().StringVar(&kind, "type", "", "Only search one kind (products, orders, users, coupons, categories)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Print search suggestions instead of results")
	return cmd
}
