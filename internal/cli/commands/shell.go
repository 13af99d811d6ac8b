package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
	"github.com/snackshop-dev/snackadmin/internal/cli/router"
)

// Shell menu entries that are not pages
const (
	menuBack   = "← Back"
	menuLogout = "Log out"
	menuQuit   = "Quit"
)

// HomePath is the page the shell opens on and returns to after login
const HomePath = "/"

// NewShellCmd creates the interactive shell
func NewShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse the admin pages interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newShell(app).run(cmd.Context())
		},
	}
}

// shell is the interactive layout: a header, the current page, then the menu
type shell struct {
	app    *App
	router *router.Router
}

func newShell(app *App) *shell {
	r := router.New(app.Guard)
	s := &shell{app: app, router: r}

	r.Handle(router.Route{Path: router.LoginPath, Title: "Login", Run: s.login})
	r.Handle(router.Route{Path: HomePath, Title: "Home", Protected: true, Run: page(NewHomeCmd(app))})
	r.Handle(router.Route{Path: "/dashboard", Title: "Dashboard", Protected: true, Run: page(NewDashboardCmd(app))})
	r.Handle(router.Route{Path: "/products", Title: "Products", Protected: true, Run: page(NewProductsCmd(app), "list")})
	r.Handle(router.Route{Path: "/categories", Title: "Categories", Protected: true, Run: page(NewCategoriesCmd(app), "list")})
	r.Handle(router.Route{Path: "/orders", Title: "Orders", Protected: true, Run: page(NewOrdersCmd(app), "list")})
	r.Handle(router.Route{Path: "/coupons", Title: "Coupons", Protected: true, Run: page(NewCouponsCmd(app), "list")})
	r.Handle(router.Route{Path: "/users", Title: "Users", Protected: true, Run: page(NewUsersCmd(app), "list")})
	r.Handle(router.Route{Path: "/reviews", Title: "Reviews", Protected: true, Run: page(NewReviewsCmd(app), "list")})
	return s
}

// page turns a command into a shell page run with its default flags
func page(root *cobra.Command, path ...string) func(ctx context.Context) error {
	cmd, _, err := root.Find(path)
	if err != nil {
		panic(fmt.Sprintf("shell page %v: %v", path, err))
	}
	return func(ctx context.Context) error {
		cmd.SetContext(ctx)
		return cmd.RunE(cmd, nil)
	}
}

func (s *shell) run(ctx context.Context) error {
	s.app.setRouter(s.router)
	defer s.app.setRouter(nil)

	go s.app.Session.Bootstrap(ctx)

	if _, err := s.router.Navigate(ctx, HomePath); err != nil {
		return err
	}

	for {
		current, ok := s.router.Current()
		if !ok {
			return nil
		}

		s.header(current)
		if err := current.Run(ctx); err != nil {
			if errors.Is(err, forms.ErrAborted) {
				return nil
			}
			s.report(err)
		}

		// A rejected request may have sent us to the login page while the page was running
		if now, _ := s.router.Current(); now.Path != current.Path {
			continue
		}
		if current.Path == router.LoginPath {
			if s.app.Session.Snapshot().IsAuthenticated() {
				if _, err := s.router.Replace(ctx, HomePath); err != nil {
					return err
				}
			}
			continue
		}

		quit, err := s.menu(ctx)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (s *shell) header(current router.Route) {
	st := s.app.Printer.Styles
	who := "not signed in"
	if u, err := s.app.Session.User(); err == nil {
		who = u.DisplayName() + " (" + u.Role + ")"
	}
	fmt.Fprintf(s.app.Out, "\n%s  %s\n%s\n\n",
		st.Title("SnackShop Admin › "+current.Title),
		st.Muted(who),
		st.Muted(s.app.Config.Profile+" "+s.app.Config.APIURL))
}

// report prints page errors the HTTP layer did not already show
func (s *shell) report(err error) {
	var shown interface{ Notified() bool }
	if errors.As(err, &shown) && shown.Notified() {
		return
	}
	notify.Error(s.app.Notifier, err.Error())
}

// menu asks where to go next and reports whether the user wants to quit
func (s *shell) menu(ctx context.Context) (bool, error) {
	var items []string
	var paths []string
	cursor := 0
	current, _ := s.router.Current()
	for _, r := range s.router.Routes() {
		if r.Path == router.LoginPath {
			continue
		}
		if r.Path == current.Path {
			cursor = len(items)
		}
		items = append(items, r.Title)
		paths = append(paths, r.Path)
	}
	if len(s.router.History()) > 1 {
		items = append(items, menuBack)
	}
	items = append(items, menuLogout, menuQuit)

	i, err := s.app.Prompter.Select("Go to", items, cursor)
	if err != nil {
		if errors.Is(err, forms.ErrAborted) {
			return true, nil
		}
		return false, err
	}

	switch items[i] {
	case menuQuit:
		return true, nil
	case menuLogout:
		s.app.Session.Logout(ctx)
		notify.Success(s.app.Notifier, "Logged out")
		_, err := s.router.Replace(ctx, router.LoginPath)
		return false, err
	case menuBack:
		_, _, err := s.router.Back(ctx)
		return false, err
	default:
		_, err := s.router.Navigate(ctx, paths[i])
		return false, err
	}
}

// login is the login page. A failed attempt stays on the page; the message was already shown.
func (s *shell) login(ctx context.Context) error {
	email, err := s.app.Prompter.Input("Email", s.app.Config.Email, func(v string) error {
		return forms.ValidateVar("email", v, "required,email")
	})
	if err != nil {
		return err
	}
	password, err := readPassword(s.app, "Password")
	if err != nil {
		return err
	}

	s.app.Session.Bootstrap(ctx)
	res := s.app.Session.Login(ctx, client.Credentials{Email: email, Password: password})
	if res.Success {
		notify.Success(s.app.Notifier, "Welcome, "+res.User.DisplayName())
	}
	return nil
}
