// Package guard decides whether protected content may run, based on the session.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/snackshop-dev/snackadmin/internal/cli/auth"
)

// ErrLoginRequired is returned by Render when the session is not authenticated
var ErrLoginRequired = errors.New("login required. Please run 'snackadmin login' first")

// Decision is the outcome of a check
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect_login"
}

// Session is the read side of auth.Manager
type Session interface {
	Snapshot() auth.Session
	Ready() <-chan struct{}
}

// Indicator is shown while the session is still being resolved
type Indicator interface {
	Start()
	Stop()
}

// Guard protects pages. It keeps no state between checks.
type Guard struct {
	session   Session
	indicator Indicator
}

// New creates a guard. A nil indicator shows nothing.
func New(session Session, indicator Indicator) *Guard {
	if indicator == nil {
		indicator = nopIndicator{}
	}
	return &Guard{session: session, indicator: indicator}
}

// Check waits for the bootstrap check to resolve, showing the indicator meanwhile, then decides.
// Nothing is rendered and no redirect happens while loading.
func (g *Guard) Check(ctx context.Context) (Decision, error) {
	if g.session.Snapshot().Loading {
		g.indicator.Start()
		select {
		case <-g.session.Ready():
			g.indicator.Stop()
		case <-ctx.Done():
			g.indicator.Stop()
			return RedirectLogin, fmt.Errorf("waiting for session: %w", ctx.Err())
		}
	}

	if g.session.Snapshot().IsAuthenticated() {
		return Allow, nil
	}
	return RedirectLogin, nil
}

// Render runs content only when the session is authenticated
func (g *Guard) Render(ctx context.Context, content func(ctx context.Context) error) error {
	d, err := g.Check(ctx)
	if err != nil {
		return err
	}
	if d != Allow {
		return ErrLoginRequired
	}
	return content(ctx)
}

type nopIndicator struct{}

func (nopIndicator) Start() {}
func (nopIndicator) Stop()  {}

// Loading prints a single dim status line while the session is checked
type Loading struct {
	mu      sync.Mutex
	out     io.Writer
	style   lipgloss.Style
	message string
	shown   bool
}

// NewLoading creates a loading indicator writing to out
func NewLoading(out io.Writer, message string) *Loading {
	r := lipgloss.NewRenderer(out)
	return &Loading{
		out:     out,
		style:   r.NewStyle().Faint(true),
		message: message,
	}
}

// Start shows the message
func (l *Loading) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.shown {
		return
	}
	l.shown = true
	fmt.Fprintln(l.out, l.style.Render(l.message))
}

// Stop lets the next Start show the message again
func (l *Loading) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shown = false
}
