package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

var reviewStatuses = []string{client.ReviewPending, client.ReviewApproved, client.ReviewRejected}

// NewReviewsCmd creates the reviews command group
func NewReviewsCmd(app *App) *cobra.Command {
	cmd := protect(&cobra.Command{
		Use:     "reviews",
		Aliases: []string{"review"},
		Short:   "Moderate product reviews",
	})

	cmd.AddCommand(
		newReviewsListCmd(app),
		newReviewsModerateCmd(app, "approve", client.ReviewApproved),
		newReviewsModerateCmd(app, "reject", client.ReviewRejected),
		newReviewsDeleteCmd(app),
	)
	return cmd
}

func newReviewsListCmd(app *App) *cobra.Command {
	var status, product, user string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("status", status, reviewStatuses); err != nil {
				return err
			}
			if product != "" && user != "" {
				return fmt.Errorf("--product and --user cannot be combined")
			}

			var reviews []client.Review
			var err error
			switch {
			case product != "":
				reviews, err = app.API.Reviews().ByProduct(cmd.Context(), product)
			case user != "":
				reviews, err = app.API.Reviews().ByUser(cmd.Context(), user)
			default:
				reviews, err = app.API.Reviews().List(cmd.Context(), status)
			}
			if err != nil {
				return err
			}
			if status != "" && (product != "" || user != "") {
				kept := reviews[:0]
				for _, r := range reviews {
					if r.Status == status {
						kept = append(kept, r)
					}
				}
				reviews = kept
			}

			if len(reviews) == 0 && !app.Printer.Structured() {
				app.Printer.Println("No reviews found.")
				return nil
			}
			return app.Printer.Print(reviews, func(t *format.Table) {
				t.Header("ID", "PRODUCT", "RATING", "COMMENT", "STATUS", "POSTED")
				for _, r := range reviews {
					t.Row(r.ID, r.SnackID, stars(r.Rating), format.Truncate(r.Comment, 50),
						app.Printer.Styles.ReviewStatus(r.Status), format.Date(r.CreatedAt))
				}
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved or rejected)")
	cmd.Flags().StringVar(&product, "product", "", "Only reviews of this product ID")
	cmd.Flags().StringVar(&user, "user", "", "Only reviews by this user ID")
	return cmd
}

// stars renders a 1-5 rating
func stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating) + " " + strconv.Itoa(rating)
}

func newReviewsModerateCmd(app *App, use, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.API.Reviews().UpdateStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Review "+status)
			return nil
		},
	}
}

func newReviewsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a review",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmDelete(app, "review "+args[0], yes)
			if err != nil || !ok {
				return err
			}
			if err := app.API.Reviews().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Review deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
