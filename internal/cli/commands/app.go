package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/snackshop-dev/snackadmin/internal/cli/auth"
	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/config"
	"github.com/snackshop-dev/snackadmin/internal/cli/events"
	"github.com/snackshop-dev/snackadmin/internal/cli/format"
	"github.com/snackshop-dev/snackadmin/internal/cli/forms"
	"github.com/snackshop-dev/snackadmin/internal/cli/guard"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
	"github.com/snackshop-dev/snackadmin/internal/cli/router"
	"github.com/snackshop-dev/snackadmin/internal/logger"
)

// annotationProtected marks commands that need an authenticated session
const annotationProtected = "snackadmin/protected"

// Options are the global flags
type Options struct {
	APIURL   string
	Profile  string
	Output   string
	LogLevel string
	NoColor  bool
}

// App is the composition root shared by every command. It is built once per process, after flags
// are parsed, and owns the only Session.
type App struct {
	Opts Options

	In  io.ReadCloser
	Out io.Writer
	Err io.Writer

	Config   *config.Config
	Logger   zerolog.Logger
	Notifier notify.Notifier
	Bus      *events.Bus
	Session  *auth.Manager
	API      *client.Client
	Guard    *guard.Guard
	Printer  *format.Printer
	Prompter forms.Prompter
	Now      func() time.Time

	mu         sync.Mutex
	router     *router.Router
	redirected bool
	wired      bool
}

// NewApp creates an unwired app on the process's standard streams
func NewApp() *App {
	return &App{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		Now: time.Now,
	}
}

// Init loads the configuration and wires the app. It is a no-op once the app is wired.
func (a *App) Init() error {
	if a.isWired() {
		return nil
	}

	if a.Opts.Output != "" && !format.ValidOutput(a.Opts.Output) {
		return fmt.Errorf("invalid output %q, must be one of: table, json, yaml", a.Opts.Output)
	}

	cfg, err := config.Load(config.Overrides{
		APIURL:   a.Opts.APIURL,
		Profile:  a.Opts.Profile,
		LogLevel: a.Opts.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := auth.NewStore(cfg)
	if err != nil {
		return err
	}

	return a.Wire(cfg, store)
}

// Wire builds every component from cfg and store. The bootstrap check starts with the first
// command that needs a session.
func (a *App) Wire(cfg *config.Config, store auth.Store) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.wired {
		return nil
	}

	if a.Now == nil {
		a.Now = time.Now
	}

	color := !a.Opts.NoColor && isTerminal(a.Out)

	a.Config = cfg
	a.Logger = logger.Init(cfg.LogLevel, cfg.LogFormat, a.Err)
	if a.Notifier == nil {
		a.Notifier = notify.NewConsole(a.Err, color)
	}
	a.Bus = events.New()
	a.Session = auth.NewManager(store, nil, a.Notifier, a.Logger)
	a.API = client.New(cfg.APIURL,
		client.WithTokenSource(a.Session),
		client.WithNotifier(a.Notifier),
		client.WithEvents(a.Bus),
		client.WithLogger(a.Logger),
	)
	a.Session.SetAPI(a.API.Auth())
	a.Guard = guard.New(a.Session, guard.NewLoading(a.Err, "Checking session..."))
	a.Printer = format.NewPrinter(a.Out, a.Opts.Output, color)
	if a.Prompter == nil {
		a.Prompter = forms.Terminal{Stdin: a.In, Stdout: nopWriteCloser{a.Err}}
	}

	if err := a.Bus.OnSessionInvalidated(a.onSessionInvalidated); err != nil {
		return err
	}

	a.wired = true
	a.Logger.Debug().Str("api_url", cfg.APIURL).Str("profile", cfg.Profile).Str("storage", cfg.Storage).Msg("CLI initialized")
	return nil
}

func (a *App) isWired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wired
}

// onSessionInvalidated is the single place where an expired session turns into navigation: the
// shell jumps to the login page, one-shot commands end with a login hint.
func (a *App) onSessionInvalidated(ev events.SessionInvalidatedEvent) {
	if !a.Session.InvalidateToken(ev.Token) {
		a.Logger.Debug().Str("path", ev.Path).Str("request_id", ev.RequestID).Msg("Ignoring rejection of a replaced session")
		return
	}

	a.mu.Lock()
	r := a.router
	a.redirected = true
	a.mu.Unlock()

	a.Logger.Debug().Str("path", ev.Path).Str("request_id", ev.RequestID).Msg("Redirecting to login")
	if r != nil {
		r.RedirectToLogin()
	}
}

// Redirected reports whether the session was invalidated during this run
func (a *App) Redirected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.redirected
}

// setRouter attaches the shell's router so redirects go through it
func (a *App) setRouter(r *router.Router) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router = r
}

// requireSession runs the guard for a one-shot command
func (a *App) requireSession(ctx context.Context) error {
	d, err := a.Guard.Check(ctx)
	if err != nil {
		return err
	}
	if d != guard.Allow {
		return guard.ErrLoginRequired
	}
	return nil
}

// protect marks cmd and its subcommands as needing a session
func protect(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationProtected] = "true"
	return cmd
}

// IsProtected reports whether cmd or one of its parents needs a session
func IsProtected(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationProtected] == "true" {
			return true
		}
	}
	return false
}

// Before is the root PersistentPreRunE: wire the app, then guard protected commands
func (a *App) Before(cmd *cobra.Command) error {
	if err := a.Init(); err != nil {
		return err
	}
	if IsProtected(cmd) {
		go a.Session.Bootstrap(cmd.Context())
		return a.requireSession(cmd.Context())
	}
	return nil
}

// ReportError prints err unless the user already saw it, and returns the exit code
func (a *App) ReportError(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, forms.ErrAborted):
		fmt.Fprintln(a.Err, "Aborted.")
		return 1
	case errors.Is(err, context.Canceled):
		return 130
	}

	var shown interface{ Notified() bool }
	if errors.As(err, &shown) && shown.Notified() {
		if a.Redirected() {
			fmt.Fprintln(a.Err, "Run 'snackadmin login' to sign in again.")
		}
		return 1
	}

	fmt.Fprintf(a.Err, "Error: %v\n", err)
	return 1
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
