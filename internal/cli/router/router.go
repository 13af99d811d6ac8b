// Package router keeps the interactive shell's navigation history. Protected routes are checked
// by the guard on every navigation, and a redirect to login replaces the history entry so Back
// never returns to a page the user may not see.
package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/snackshop-dev/snackadmin/internal/cli/guard"
)

// LoginPath is where unauthenticated navigation ends up
const LoginPath = "/login"

// Checker decides whether a protected route may be shown
type Checker interface {
	Check(ctx context.Context) (guard.Decision, error)
}

// Route is one page of the shell
type Route struct {
	Path      string
	Title     string
	Protected bool
	Run       func(ctx context.Context) error
}

// Router holds the routes and the history stack
type Router struct {
	checker Checker

	mu      sync.Mutex
	routes  map[string]Route
	order   []string
	history []string
}

// New creates a router that consults checker for protected routes
func New(checker Checker) *Router {
	return &Router{
		checker: checker,
		routes:  make(map[string]Route),
	}
}

// Handle registers a route. Registering a path twice replaces the first one.
func (r *Router) Handle(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[route.Path]; !ok {
		r.order = append(r.order, route.Path)
	}
	r.routes[route.Path] = route
}

// Routes returns the registered routes in registration order
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Route, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.routes[p])
	}
	return out
}

// Navigate pushes path onto the history and returns the route to show
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	return r.visit(ctx, path, false)
}

// Replace swaps the current entry for path
func (r *Router) Replace(ctx context.Context, path string) (Route, error) {
	return r.visit(ctx, path, true)
}

// RedirectToLogin replaces the current entry with the login route without any check. It is
// what the session-invalidated listener calls.
func (r *Router) RedirectToLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaceTop(LoginPath)
}

// Back drops the current entry and returns to the previous one, which is checked again
func (r *Router) Back(ctx context.Context) (Route, bool, error) {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return Route{}, false, nil
	}
	r.history = r.history[:len(r.history)-1]
	prev := r.history[len(r.history)-1]
	r.mu.Unlock()

	route, err := r.visit(ctx, prev, true)
	return route, true, err
}

// Current returns the route at the top of the history
func (r *Router) Current() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == 0 {
		return Route{}, false
	}
	route, ok := r.routes[r.history[len(r.history)-1]]
	return route, ok
}

// History returns a copy of the history stack, oldest first
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

func (r *Router) visit(ctx context.Context, path string, replace bool) (Route, error) {
	r.mu.Lock()
	route, ok := r.routes[path]
	r.mu.Unlock()
	if !ok {
		return Route{}, fmt.Errorf("unknown route %q", path)
	}

	if route.Protected {
		d, err := r.checker.Check(ctx)
		if err != nil {
			return Route{}, err
		}
		if d == guard.RedirectLogin {
			r.mu.Lock()
			defer r.mu.Unlock()
			if !replace {
				r.history = append(r.history, path)
			}
			r.replaceTop(LoginPath)
			return r.routes[LoginPath], nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if replace {
		r.replaceTop(path)
	} else {
		r.history = append(r.history, path)
	}
	return route, nil
}

func (r *Router) replaceTop(path string) {
	if len(r.history) == 0 {
		r.history = append(r.history, path)
		return
	}
	r.history[len(r.history)-1] = path
}
