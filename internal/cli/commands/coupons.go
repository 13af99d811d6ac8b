package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

// NewCouponsCmd creates the coupons command group
func NewCouponsCmd(app *App) *cobra.Command {
	cmd := protect(&cobra.Command{
		Use:     "coupons",
		Aliases: []string{"coupon"},
		Short:   "Manage discount codes",
	})

	cmd.AddCommand(
		newCouponsListCmd(app),
		newCouponsShowCmd(app),
		newCouponsCreateCmd(app),
		newCouponsUpdateCmd(app),
		newCouponsDeleteCmd(app),
		newCouponsValidateCmd(app),
	)
	return cmd
}

type couponListOptions struct {
	search string
	active string
	from   string
	to     string
	pageFlags
}

func newCouponsListCmd(app *App) *cobra.Command {
	var opts couponListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List coupons",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCouponsList(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "Filter by code or description")
	cmd.Flags().StringVar(&opts.active, "active", "", "Filter by the active flag (true or false)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Coupons starting or ending on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Coupons starting or ending on or before this day (YYYY-MM-DD)")
	opts.register(cmd, "Sort by code, value, start or end")
	return cmd
}

func runCouponsList(ctx context.Context, app *App, opts couponListOptions) error {
	days, err := dayRange(opts.from, opts.to)
	if err != nil {
		return err
	}

	filter := listing.CouponFilter{Search: opts.search, Range: days}
	if opts.active != "" {
		active, err := strconv.ParseBool(opts.active)
		if err != nil {
			return fmt.Errorf("invalid --active %q, must be true or false", opts.active)
		}
		filter.Active = &active
	}

	coupons, err := app.API.Coupons().List(ctx)
	if err != nil {
		return err
	}

	filtered := listing.Coupons(coupons, filter)
	by, desc := opts.sortKey()
	filtered = listing.SortCoupons(filtered, by, desc)
	page := listing.Paginate(filtered, opts.page, opts.size(app))

	now := app.Now()
	err = app.Printer.Print(page.Items, func(t *format.Table) {
		t.Header("ID", "CODE", "DISCOUNT", "MIN PURCHASE", "VALID", "STATUS")
		for _, c := range page.Items {
			t.Row(c.ID, c.Code, format.Discount(c), format.Price(c.MinPurchase),
				format.Date(c.StartDate)+" - "+format.Date(c.EndDate),
				app.Printer.Styles.CouponStatus(listing.CouponStatus(c, now)))
		}
	})
	if err != nil {
		return err
	}
	footer(app, page, "coupons")
	return nil
}

func newCouponsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a coupon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.API.Coupons().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printCoupon(app, c)
		},
	}
}

func printCoupon(app *App, c *client.Coupon) error {
	return app.Printer.Print(c, func(t *format.Table) {
		t.KV("ID", c.ID)
		t.KV("Code", c.Code)
		t.KV("Discount", format.Discount(*c))
		t.KV("Min purchase", format.Price(c.MinPurchase))
		t.KV("Starts", format.DateTime(c.StartDate))
		t.KV("Ends", format.DateTime(c.EndDate))
		t.KV("Status", app.Printer.Styles.CouponStatus(listing.CouponStatus(*c, app.Now())))
		t.KV("Description", c.Description)
	})
}

// couponFlags fill a coupon form from the command line
type couponFlags struct {
	code        string
	kind        string
	value       float64
	minPurchase float64
	start       string
	end         string
	active      bool
	description string
}

func (f *couponFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "Coupon code, 3-20 letters or digits")
	cmd.Flags().StringVar(&f.kind, "type", client.DiscountPercentage, "Discount type (percentage or fixed)")
	cmd.Flags().Float64Var(&f.value, "value", 0, "Discount value, a percentage or an amount in dong")
	cmd.Flags().Float64Var(&f.minPurchase, "min-purchase", 0, "Minimum order amount")
	cmd.Flags().StringVar(&f.start, "start", "", "First day the coupon is valid (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day the coupon is valid (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.active, "active", true, "Whether the coupon can be used")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
}

// apply copies the flags that were set onto form. On create every flag counts.
func (f *couponFlags) apply(cmd *cobra.Command, form *forms.CouponForm, all bool) error {
	changed := func(name string) bool { return all || cmd.Flags().Changed(name) }

	if changed("code") {
		form.Code = strings.ToUpper(strings.TrimSpace(f.code))
	}
	if changed("type") {
		form.DiscountType = f.kind
	}
	if changed("value") {
		form.DiscountValue = f.value
	}
	if changed("min-purchase") {
		form.MinPurchase = f.minPurchase
	}
	if changed("active") {
		form.IsActive = f.active
	}
	if changed("description") {
		form.Description = f.description
	}
	if f.start != "" {
		start, err := forms.ParseDate(f.start)
		if err != nil {
			return err
		}
		form.StartDate = start
	}
	if f.end != "" {
		end, err := forms.ParseDate(f.end)
		if err != nil {
			return err
		}
		form.EndDate = end.Add(24*time.Hour - time.Second)
	}
	return nil
}

func newCouponsCreateCmd(app *App) *cobra.Command {
	var flags couponFlags
	var interactive bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a coupon",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form forms.CouponForm
			if err := flags.apply(cmd, &form, true); err != nil {
				return err
			}

			form, err := fillCoupon(app, interactive, form)
			if err != nil {
				return err
			}

			c, err := app.API.Coupons().Create(cmd.Context(), form.Input())
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("Coupon %s created", c.Code))
			return printCoupon(app, c)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill the form with prompts")
	return cmd
}

func newCouponsUpdateCmd(app *App) *cobra.Command {
	var flags couponFlags
	var interactive bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a coupon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := app.API.Coupons().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			form := forms.CouponFormFrom(*current)
			if err := flags.apply(cmd, &form, false); err != nil {
				return err
			}

			form, err = fillCoupon(app, interactive, form)
			if err != nil {
				return err
			}

			c, err := app.API.Coupons().Update(cmd.Context(), args[0], form.Input())
			if err != nil {
				return err
			}
			notify.Success(app.Notifier, fmt.Sprintf("Coupon %s updated", c.Code))
			return printCoupon(app, c)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Edit the form with prompts")
	return cmd
}

func fillCoupon(app *App, interactive bool, form forms.CouponForm) (forms.CouponForm, error) {
	if interactive {
		return forms.FillCoupon(app.Prompter, form)
	}
	return form, forms.Validate(&form)
}

func newCouponsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a coupon",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmDelete(app, "coupon "+args[0], yes)
			if err != nil || !ok {
				return err
			}
			if err := app.API.Coupons().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Coupon deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newCouponsValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <code>",
		Short: "Check whether a code can be used right now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.API.Coupons().Validate(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			if app.Printer.Structured() {
				return app.Printer.Print(v, nil)
			}
			if !v.Valid {
				msg := v.Message
				if msg == "" {
					msg = "Coupon is not valid"
				}
				notify.Warn(app.Notifier, msg)
				return nil
			}
			notify.Success(app.Notifier, fmt.Sprintf("Coupon %s is valid", strings.ToUpper(args[0])))
			if v.Coupon != nil {
				return printCoupon(app, v.Coupon)
			}
			return nil
		},
	}
}
