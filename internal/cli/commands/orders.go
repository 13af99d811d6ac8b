package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

// orderTransitions lists the statuses an order may move to from each status.
// Completed and cancelled orders are final.
var orderTransitions = map[string][]string{
	client.OrderPending:    {client.OrderProcessing, client.OrderCancelled},
	client.OrderProcessing: {client.OrderShipping, client.OrderCancelled},
	client.OrderShipping:   {client.OrderCompleted, client.OrderCancelled},
}

// canTransition reports whether an order in status from may be moved to status to
func canTransition(from, to string) bool {
	return slices.Contains(orderTransitions[from], to)
}

// NewOrdersCmd creates the orders command group
func NewOrdersCmd(app *App) *cobra.Command {
	cmd := protect(&cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Review and process customer orders",
	})

	cmd.AddCommand(
		newOrdersListCmd(app),
		newOrdersShowCmd(app),
		newOrdersStatusCmd(app),
		newOrdersDeleteCmd(app),
		newOrdersExportCmd(app),
	)
	return cmd
}

type orderListOptions struct {
	search string
	status string
	from   string
	to     string
	pageFlags
}

func newOrdersListCmd(app *App) *cobra.Command {
	var opts orderListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersList(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "Filter by order ID, customer name or phone")
	cmd.Flags().StringVar(&opts.status, "status", "", "Filter by status (pending, processing, shipping, completed, cancelled)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Only orders placed on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Only orders placed on or before this day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Items per page (default from config)")
	return cmd
}

func runOrdersList(ctx context.Context, app *App, opts orderListOptions) error {
	days, err := dayRange(opts.from, opts.to)
	if err != nil {
		return err
	}
	if err := checkChoice("status", opts.status, orderStatuses); err != nil {
		return err
	}

	q := client.OrderQuery{StartDate: opts.from, EndDate: opts.to}
	list, err := app.API.Orders().List(ctx, q)
	if err != nil {
		return err
	}

	orders := listing.Orders(list.Orders, listing.OrderFilter{Search: opts.search, Status: opts.status, Range: days})
	orders = listing.SortBy(orders, func(o client.Order) int64 { return o.CreatedAt.UnixNano() }, true)
	page := listing.Paginate(orders, opts.page, opts.size(app))

	err = app.Printer.Print(page.Items, func(t *format.Table) {
		t.Header("ORDER", "CUSTOMER", "TOTAL", "PAYMENT", "STATUS", "PLACED")
		for _, o := range page.Items {
			t.Row(format.OrderNumber(o.ID), o.CustomerName(), format.Price(o.TotalAmount),
				app.Printer.Styles.PaymentStatus(o.PaymentStatus), app.Printer.Styles.OrderStatus(o.Status), format.DateTime(o.CreatedAt))
		}
	})
	if err != nil {
		return err
	}
	footer(app, page, "orders")
	return nil
}

var orderStatuses = []string{client.OrderPending, client.OrderProcessing, client.OrderShipping, client.OrderCompleted, client.OrderCancelled}

func newOrdersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an order with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.API.Orders().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOrder(app, o)
		},
	}
}

func printOrder(app *App, o *client.Order) error {
	if app.Printer.Structured() {
		return app.Printer.Print(o, nil)
	}

	s := app.Printer.Styles
	err := app.Printer.Print(o, func(t *format.Table) {
		t.KV("Order", format.OrderNumber(o.ID)+" ("+o.ID+")")
		t.KV("Status", s.OrderStatus(o.Status))
		t.KV("Placed", format.DateTime(o.CreatedAt)+", "+format.Ago(o.CreatedAt))
		t.KV("Customer", o.CustomerName())
		if o.User != nil {
			t.KV("Email", o.User.Email)
			t.KV("Phone", o.User.Phone)
		}
		t.KV("Ship to", o.ShippingAddress)
		t.KV("Payment", o.PaymentMethod+" "+s.PaymentStatus(o.PaymentStatus))
	})
	if err != nil {
		return err
	}

	app.Printer.Println()
	t := app.Printer.NewTable()
	t.Header("ITEM", "QTY", "PRICE", "SUBTOTAL")
	for _, item := range o.Items {
		t.Row(item.Name, strconv.Itoa(item.Quantity), format.Price(item.Price), format.Price(item.Price*float64(item.Quantity)))
	}
	t.Row("", "", "Shipping", format.Price(o.ShippingFee))
	t.Row("", "", "Total", format.Price(o.TotalAmount))
	return t.Flush()
}

func newOrdersStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an order to its next status",
		Long: `Move an order along pending → processing → shipping → completed.
Any order that is not completed or cancelled can be cancelled.`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return orderStatuses, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, next := args[0], strings.ToLower(args[1])

			current, err := app.API.Orders().Get(ctx, id)
			if err != nil {
				return err
			}
			if current.Status == next {
				app.Printer.Printf("Order %s is already %s.\n", format.OrderNumber(id), next)
				return nil
			}
			if !canTransition(current.Status, next) {
				allowed := orderTransitions[current.Status]
				if len(allowed) == 0 {
					return fmt.Errorf("order %s is %s and can no longer change", format.OrderNumber(id), current.Status)
				}
				return fmt.Errorf("cannot move order from %s to %s, allowed: %s", current.Status, next, strings.Join(allowed, ", "))
			}

			o, err := app.API.Orders().UpdateStatus(ctx, id, next)
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("Order %s is now %s", format.OrderNumber(o.ID), o.Status))
			return nil
		},
	}
}

func newOrdersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmDelete(app, "order "+format.OrderNumber(args[0]), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.API.Orders().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Order deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newOrdersExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download all orders as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.API.Orders().Export(cmd.Context())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = app.Out.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			notify.Success(app.Notifier, fmt.Sprintf("Exported %s to %s", humanize.Bytes(uint64(len(data))), out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "O", "orders.csv", "Output file, - for stdout")
	return cmd
}
