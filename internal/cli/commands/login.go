package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

// shownError wraps an error whose message the user has already seen
type shownError struct {
	err error
}

func (e shownError) Error() string  { return e.err.Error() }
func (e shownError) Unwrap() error  { return e.err }
func (e shownError) Notified() bool { return true }

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the admin API",
		Long: `Sign in with an admin account.

Credentials can also come from SNACKADMIN_EMAIL and SNACKADMIN_PASSWORD, which is
useful in CI. Without them the password is read from the terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SNACKADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SNACKADMIN_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, app *App, email, password string) error {
	if email == "" {
		email = app.Config.Email
	}
	if password == "" {
		password = app.Config.Password
	}

	var err error
	if email == "" {
		email, err = app.Prompter.Input("Email", "", func(s string) error {
			return forms.ValidateVar("email", s, "required,email")
		})
		if err != nil {
			return err
		}
	}

	if password == "" {
		password, err = readPassword(app, "Password")
		if err != nil {
			return err
		}
	}

	// Let the startup check finish so it cannot race the new session
	app.Session.Bootstrap(ctx)
	if s := app.Session.Snapshot(); s.IsAuthenticated() {
		app.Logger.Debug().Str("user_id", s.User.ID).Msg("Replacing existing session")
	}

	fmt.Fprintf(app.Err, "Logging in to %s (%s)...\n", app.Config.Profile, app.Config.APIURL)

	res := app.Session.Login(ctx, client.Credentials{Email: email, Password: password})
	if !res.Success {
		return shownError{err: fmt.Errorf("login failed: %s", res.Message)}
	}

	notify.Success(app.Notifier, "Login successful")
	return printUser(app, res.User)
}

// readPassword reads a secret without echo when stdin is a terminal
func readPassword(app *App, label string) (string, error) {
	if f, ok := app.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(app.Err, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(app.Err)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	if _, ok := app.Prompter.(forms.Terminal); ok {
		return "", errors.New("password is required in non-interactive mode (use --password flag or SNACKADMIN_PASSWORD env var)")
	}
	return app.Prompter.Secret(label)
}

func printUser(app *App, u *client.User) error {
	return app.Printer.Print(u, func(t *format.Table) {
		t.KV("User", u.DisplayName())
		t.KV("Email", u.Email)
		t.KV("Role", app.Printer.Styles.Role(u.Role))
	})
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Bootstrap(cmd.Context())
			app.Session.Logout(cmd.Context())
			notify.Success(app.Notifier, "Logged out")
			return nil
		},
	}
}

// whoami is the structured form of the whoami output
type whoami struct {
	User      *client.User `json:"user"`
	Profile   string       `json:"profile"`
	APIURL    string       `json:"apiUrl"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return protect(&cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Session.Snapshot()
			out := whoami{
				User:      s.User,
				Profile:   app.Config.Profile,
				APIURL:    app.Config.APIURL,
				ExpiresAt: tokenExpiry(s.Token),
			}

			return app.Printer.Print(out, func(t *format.Table) {
				t.KV("User", s.User.DisplayName())
				t.KV("Email", s.User.Email)
				t.KV("Role", app.Printer.Styles.Role(s.User.Role))
				t.KV("Profile", fmt.Sprintf("%s (%s)", out.Profile, out.APIURL))
				if out.ExpiresAt != nil {
					t.KV("Session expires", fmt.Sprintf("%s (%s)", out.ExpiresAt.Local().Format(time.RFC1123), humanize.Time(*out.ExpiresAt)))
				}
			})
		},
	})
}

// tokenExpiry reads the exp claim without verifying the signature; the API stays the judge of
// whether the token is valid
func tokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

// NewPasswordCmd creates the password command group
func NewPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change or reset passwords",
	}

	change := protect(&cobra.Command{
		Use:   "change",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := readPassword(app, "Current password")
			if err != nil {
				return err
			}
			next, err := readPassword(app, "New password")
			if err != nil {
				return err
			}
			if err := forms.ValidateVar("new password", next, "min=6"); err != nil {
				return err
			}
			confirm, err := readPassword(app, "Confirm new password")
			if err != nil {
				return err
			}
			if confirm != next {
				return errors.New("passwords do not match")
			}

			if err := app.API.Auth().ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Password changed")
			return nil
		},
	})

	var email string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Email a password reset link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forms.ValidateVar("email", email, "required,email"); err != nil {
				return err
			}
			if err := app.API.Auth().ForgotPassword(cmd.Context(), email); err != nil {
				return err
			}
			notify.Success(app.Notifier, "If the account exists, a reset email has been sent")
			return nil
		},
	}
	forgot.Flags().StringVar(&email, "email", "", "Account email")

	var token, password string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			var err error
			if password == "" {
				if password, err = readPassword(app, "New password"); err != nil {
					return err
				}
			}
			if err := forms.ValidateVar("password", password, "min=6"); err != nil {
				return err
			}
			if err := app.API.Auth().ResetPassword(cmd.Context(), token, password); err != nil {
				return err
			}
			notify.Success(app.Notifier, "Password reset, you can now log in")
			return nil
		},
	}
	reset.Flags().StringVar(&token, "token", "", "Reset token from the email")
	reset.Flags().StringVar(&password, "password", "", "New password (will prompt if not provided)")

	cmd.AddCommand(change, forgot, reset)
	return cmd
}
