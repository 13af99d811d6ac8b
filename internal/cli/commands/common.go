package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
)

// pageFlags are the paging and sorting flags shared by list commands
type pageFlags struct {
	page     int
	pageSize int
	sort     string
}

func (p *pageFlags) register(cmd *cobra.Command, sortHelp string) {
	cmd.Flags().IntVar(&p.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&p.pageSize, "page-size", 0, "Items per page (default from config)")
	cmd.Flags().StringVar(&p.sort, "sort", "", sortHelp+"; prefix with - for descending")
}

// sortKey splits "-price" into ("price", true)
func (p *pageFlags) sortKey() (string, bool) {
	if strings.HasPrefix(p.sort, "-") {
		return p.sort[1:], true
	}
	return p.sort, false
}

func (p *pageFlags) size(app *App) int {
	if p.pageSize > 0 {
		return p.pageSize
	}
	return app.Config.PageSize
}

// dayRange parses --from/--to into an inclusive day range
func dayRange(from, to string) (listing.DayRange, error) {
	var r listing.DayRange
	var err error
	if from != "" {
		if r.From, err = forms.ParseDate(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = forms.ParseDate(to); err != nil {
			return r, err
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return r, nil
}

// footer prints the paging summary under a table
func footer[T any](app *App, p listing.Page[T], noun string) {
	if p.Total == 0 {
		app.Printer.Printf("No %s found.\n", noun)
		return
	}
	app.Printer.Printf("\n%s\n", app.Printer.Styles.Muted(fmt.Sprintf("Page %d of %d, %d %s", p.Page, max(p.Pages, 1), p.Total, noun)))
}

// confirmDelete asks before deleting unless --yes was given
func confirmDelete(app *App, what string, yes bool) (bool, error) {
	ok, err := forms.ConfirmDelete(app.Prompter, what, yes)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(app.Err, "Cancelled.")
	}
	return ok, nil
}

// checkChoice rejects a flag value outside allowed. Empty means unset.
func checkChoice(flag, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("invalid --%s %q, must be one of: %s", flag, value, strings.Join(allowed, ", "))
}
