package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

// NewProductsCmd creates the products command group
func NewProductsCmd(app *App) *cobra.Command {
	cmd := protect(&cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "snacks"},
		Short:   "Manage the snack catalog",
	})

	cmd.AddCommand(
		newProductsListCmd(app),
		newProductsShowCmd(app),
		newProductsCreateCmd(app),
		newProductsUpdateCmd(app),
		newProductsDeleteCmd(app),
		newProductsSearchCmd(app),
		newProductsLowStockCmd(app),
	)
	return cmd
}

type productListOptions struct {
	search   string
	category string
	pageFlags
}

func newProductsListCmd(app *App) *cobra.Command {
	var opts productListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductsList(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "Filter by name or description")
	cmd.Flags().StringVar(&opts.category, "category", "all", "Filter by category ID")
	opts.register(cmd, "Sort by name, price, stock or sold")
	return cmd
}

func runProductsList(ctx context.Context, app *App, opts productListOptions) error {
	products, err := app.API.Products().List(ctx)
	if err != nil {
		return err
	}
	categories, err := app.API.Categories().List(ctx)
	if err != nil {
		return err
	}

	filtered := listing.Products(products, listing.ProductFilter{Search: opts.search, CategoryID: opts.category})
	by, desc := opts.sortKey()
	filtered = listing.SortProducts(filtered, by, desc)
	page := listing.Paginate(filtered, opts.page, opts.size(app))

	names := categoryNames(categories)
	err = app.Printer.Print(page.Items, func(t *format.Table) {
		t.Header("ID", "NAME", "CATEGORY", "PRICE", "DISCOUNT", "STOCK")
		for _, p := range page.Items {
			t.Row(p.ID, format.Truncate(p.SnackName, 40), names[p.CategoryID], format.Price(p.Price),
				strconv.FormatFloat(p.Discount, 'f', -1, 64)+"%", strconv.Itoa(p.Stock))
		}
	})
	if err != nil {
		return err
	}
	footer(app, page, "products")
	return nil
}

func categoryNames(categories []client.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func newProductsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.API.Products().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProduct(app, p)
		},
	}
}

func printProduct(app *App, p *client.Product) error {
	return app.Printer.Print(p, func(t *format.Table) {
		t.KV("ID", p.ID)
		t.KV("Name", p.SnackName)
		t.KV("Description", p.Description)
		t.KV("Category", p.CategoryID)
		t.KV("Price", format.Price(p.Price))
		t.KV("Discount", strconv.FormatFloat(p.Discount, 'f', -1, 64)+"%")
		t.KV("Stock", strconv.Itoa(p.Stock))
		t.KV("Sold", strconv.Itoa(p.SoldCount))
		for i, img := range p.Images {
			t.KV(fmt.Sprintf("Image %d", i+1), img)
		}
	})
}

// productFlags fill a product form from the command line
type productFlags struct {
	name        string
	description string
	price       float64
	stock       int
	category    string
	discount    float64
	images      []string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Price in dong")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Units in stock")
	cmd.Flags().StringVar(&f.category, "category", "", "Category ID")
	cmd.Flags().Float64Var(&f.discount, "discount", 0, "Discount percentage (0-100)")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "Image URL (repeatable)")
}

// apply copies the flags that were set onto form
func (f *productFlags) apply(cmd *cobra.Command, form *forms.ProductForm) {
	if cmd.Flags().Changed("name") {
		form.SnackName = f.name
	}
	if cmd.Flags().Changed("description") {
		form.Description = f.description
	}
	if cmd.Flags().Changed("price") {
		form.Price = f.price
	}
	if cmd.Flags().Changed("stock") {
		form.Stock = f.stock
	}
	if cmd.Flags().Changed("category") {
		form.CategoryID = f.category
	}
	if cmd.Flags().Changed("discount") {
		form.Discount = f.discount
	}
	if cmd.Flags().Changed("image") {
		form.Images = f.images
	}
}

// fillProduct validates the flag-built form, or walks the prompts when asked to
func fillProduct(ctx context.Context, app *App, interactive bool, form forms.ProductForm) (forms.ProductForm, error) {
	if !interactive {
		return form, forms.Validate(&form)
	}
	categories, err := app.API.Categories().List(ctx)
	if err != nil {
		return form, err
	}
	return forms.FillProduct(app.Prompter, form, categories)
}

func newProductsCreateCmd(app *App) *cobra.Command {
	var flags productFlags
	var interactive bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form forms.ProductForm
			flags.apply(cmd, &form)

			form, err := fillProduct(cmd.Context(), app, interactive, form)
			if err != nil {
				return err
			}

			p, err := app.API.Products().Create(cmd.Context(), form.Input())
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("Product %q created", p.SnackName))
			return printProduct(app, p)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill the form with prompts")
	return cmd
}

func newProductsUpdateCmd(app *App) *cobra.Command {
	var flags productFlags
	var interactive bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := app.API.Products().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			form := forms.ProductFormFrom(*current)
			flags.apply(cmd, &form)

			form, err = fillProduct(cmd.Context(), app, interactive, form)
			if err != nil {
				return err
			}

			p, err := app.API.Products().Update(cmd.Context(), args[0], form.Input())
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("Product %q updated", p.SnackName))
			return printProduct(app, p)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Edit the form with prompts")
	return cmd
}

func newProductsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmDelete(app, "product "+args[0], yes)
			if err != nil || !ok {
				return err
			}
			if err := app.API.Products().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Product deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newProductsSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search products on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.API.Products().Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProductRows(app, products)
		},
	}
}

func newProductsLowStockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List products that are about to run out",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.API.Products().LowStock(cmd.Context())
			if err != nil {
				return err
			}
			return printProductRows(app, products)
		},
	}
}

func printProductRows(app *App, products []client.Product) error {
	if len(products) == 0 && !app.Printer.Structured() {
		app.Printer.Println("No products found.")
		return nil
	}
	return app.Printer.Print(products, func(t *format.Table) {
		t.Header("ID", "NAME", "PRICE", "STOCK", "SOLD")
		for _, p := range products {
			t.Row(p.ID, format.Truncate(p.SnackName, 40), format.Price(p.Price), strconv.Itoa(p.Stock), strconv.Itoa(p.SoldCount))
		}
	})
}
