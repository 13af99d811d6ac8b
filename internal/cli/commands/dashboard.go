package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
	"github.com/snackshop-dev/snackadmin/internal/cli/stats"
)

const dashboardListSize = 5

// dashboard is everything the dashboard page shows
type dashboard struct {
	From        string               `json:"from"`
	To          string               `json:"to"`
	Overview    client.OverviewStats `json:"overview"`
	ByStatus    map[string]int       `json:"byStatus"`
	TopProducts []client.Product     `json:"topProducts"`
	LowStock    []client.Product     `json:"lowStock"`
	Recent      []client.Order       `json:"recentOrders"`
	Revenue     *client.RevenueStats `json:"revenue"`
}

type dashboardOptions struct {
	period string
	from   string
	to     string
}

func (o dashboardOptions) window(app *App) (stats.Range, error) {
	if o.from != "" || o.to != "" {
		if o.from == "" || o.to == "" {
			return stats.Range{}, fmt.Errorf("--from and --to must be used together")
		}
		return stats.Between(o.from, o.to, app.Now().Location())
	}
	return stats.ForPeriod(o.period, app.Now())
}

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd(app *App) *cobra.Command {
	var opts dashboardOptions

	cmd := protect(&cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show sales figures for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := opts.window(app)
			if err != nil {
				return err
			}
			d, err := loadDashboard(cmd.Context(), app.API, window)
			if err != nil {
				return err
			}
			return printDashboard(app, d)
		},
	})

	cmd.Flags().StringVar(&opts.period, "period", stats.PeriodMonth, "Period (today, week, month or year)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Start day (YYYY-MM-DD), overrides --period")
	cmd.Flags().StringVar(&opts.to, "to", "", "End day (YYYY-MM-DD)")

	cmd.AddCommand(newDashboardExportCmd(app, &opts))
	return cmd
}

// loadDashboard fetches the page's data concurrently. The first failure cancels the rest.
func loadDashboard(ctx context.Context, api *client.Client, window stats.Range) (*dashboard, error) {
	var (
		products []client.Product
		orders   *client.OrderList
		lowStock []client.Product
		recent   []client.Order
		revenue  *client.RevenueStats
	)

	q := window.Query()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = api.Products().List(ctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = api.Orders().List(ctx, client.OrderQuery{StartDate: q.StartDate, EndDate: q.EndDate})
		return err
	})
	g.Go(func() (err error) {
		lowStock, err = api.Products().LowStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = api.Orders().Recent(ctx)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = api.Dashboard().Revenue(ctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inRange := listing.Orders(orders.Orders, listing.OrderFilter{Range: window.Days()})
	if len(recent) > dashboardListSize {
		recent = recent[:dashboardListSize]
	}
	if len(lowStock) > dashboardListSize {
		lowStock = lowStock[:dashboardListSize]
	}

	return &dashboard{
		From:        q.StartDate,
		To:          q.EndDate,
		Overview:    stats.Overview(products, inRange),
		ByStatus:    stats.StatusCounts(inRange),
		TopProducts: stats.TopProducts(products, dashboardListSize),
		LowStock:    lowStock,
		Recent:      recent,
		Revenue:     revenue,
	}, nil
}

func printDashboard(app *App, d *dashboard) error {
	if app.Printer.Structured() {
		return app.Printer.Print(d, nil)
	}

	p := app.Printer
	s := p.Styles

	p.Println(s.Title(fmt.Sprintf("Dashboard %s to %s", d.From, d.To)))
	t := p.NewTable()
	t.KV("Revenue", format.Price(d.Overview.TotalRevenue))
	t.KV("Orders", strconv.Itoa(d.Overview.TotalOrders))
	t.KV("Customers", strconv.Itoa(d.Overview.TotalCustomers))
	t.KV("Products", strconv.Itoa(d.Overview.TotalProducts))
	for _, status := range orderStatuses {
		if n := d.ByStatus[status]; n > 0 {
			t.KV("  "+status, strconv.Itoa(n))
		}
	}
	if err := t.Flush(); err != nil {
		return err
	}

	if d.Revenue != nil && len(d.Revenue.Points) > 0 {
		p.Printf("\n%s\n", s.Title("Revenue"))
		t = p.NewTable()
		t.Header("DATE", "ORDERS", "REVENUE")
		for _, pt := range d.Revenue.Points {
			t.Row(pt.Date, strconv.Itoa(pt.Orders), format.Price(pt.Revenue))
		}
		if err := t.Flush(); err != nil {
			return err
		}
	}

	p.Printf("\n%s\n", s.Title("Top products"))
	t = p.NewTable()
	t.Header("NAME", "SOLD", "STOCK")
	for _, prod := range d.TopProducts {
		t.Row(format.Truncate(prod.SnackName, 40), format.Units(prod.SoldCount), strconv.Itoa(prod.Stock))
	}
	if err := t.Flush(); err != nil {
		return err
	}

	if len(d.LowStock) > 0 {
		p.Printf("\n%s\n", s.Title("Low stock"))
		t = p.NewTable()
		t.Header("ID", "NAME", "STOCK")
		for _, prod := range d.LowStock {
			t.Row(prod.ID, format.Truncate(prod.SnackName, 40), strconv.Itoa(prod.Stock))
		}
		if err := t.Flush(); err != nil {
			return err
		}
	}

	p.Printf("\n%s\n", s.Title("Recent orders"))
	t = p.NewTable()
	t.Header("ORDER", "CUSTOMER", "TOTAL", "STATUS", "PLACED")
	for _, o := range d.Recent {
		t.Row(format.OrderNumber(o.ID), o.CustomerName(), format.Price(o.TotalAmount), s.OrderStatus(o.Status), format.Ago(o.CreatedAt))
	}
	return t.Flush()
}

var reportKinds = []string{"revenue", "orders", "products", "users"}

func newDashboardExportCmd(app *App, opts *dashboardOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "export <revenue|orders|products|users>",
		Short:     "Download a report for the period",
		Args:      cobra.ExactArgs(1),
		ValidArgs: reportKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("report", args[0], reportKinds); err != nil {
				return err
			}
			window, err := opts.window(app)
			if err != nil {
				return err
			}
			data, err := app.API.Dashboard().Export(cmd.Context(), args[0], window.Query())
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + "-" + window.Query().StartDate + ".csv"
			}
			if out == "-" {
				_, err = app.Out.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			notify.Success(app.Notifier, "Report saved to "+out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "O", "", "Output file, - for stdout")
	return cmd
}

// NewHomeCmd creates the home command: revenue from completed orders and best sellers
func NewHomeCmd(app *App) *cobra.Command {
	return protect(&cobra.Command{
		Use:   "home",
		Short: "Show completed-order revenue and best sellers",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.API.Orders().CompletedStatistics(cmd.Context())
			if err != nil {
				return err
			}
			if app.Printer.Structured() {
				return app.Printer.Print(st, nil)
			}

			user, _ := app.Session.User()
			if user != nil {
				app.Printer.Println(app.Printer.Styles.Title("Welcome back, " + user.DisplayName()))
			}

			t := app.Printer.NewTable()
			t.KV("Revenue", format.Price(st.TotalRevenue))
			t.KV("Completed orders", strconv.Itoa(st.TotalCompletedOrders))
			if err := t.Flush(); err != nil {
				return err
			}
			if len(st.TopProducts) == 0 {
				return nil
			}

			app.Printer.Printf("\n%s\n", app.Printer.Styles.Title("Best sellers"))
			t = app.Printer.NewTable()
			t.Header("#", "NAME", "SOLD", "REVENUE")
			for i, prod := range st.TopProducts {
				t.Row(strconv.Itoa(i+1), format.Truncate(prod.Name, 40), format.Units(prod.TotalSold), format.Price(prod.TotalRevenue))
			}
			return t.Flush()
		},
	})
}
