package navigation

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/log"
)

// DefaultMaxRedirects bounds guard redirect chains.
const DefaultMaxRedirects = 10

var (
	// ErrRouteNotFound is returned for paths that match no route.
	ErrRouteNotFound = stderrors.New("route not found")
	// ErrRedirectLoop is returned when guards keep redirecting.
	ErrRedirectLoop = stderrors.New("navigation redirect loop")
	// ErrNoHistory is returned by Back/Forward at either end of the history.
	ErrNoHistory = stderrors.New("no history entry")
)

type mode int

const (
	modePush mode = iota
	modeReplace
	modeTraverse
)

type registeredGuard struct {
	id    int
	guard Guard
}

// Router resolves paths against the route table, runs guards, keeps a
// navigation history and renders views.
type Router struct {
	base         string
	records      []record
	maxRedirects int
	logger       *log.Logger

	mu      sync.Mutex
	guards  []registeredGuard
	nextID  int
	history []Location
	index   int
}

// Option configures a Router.
type Option func(*Router)

// WithBase sets the history root every full path is prefixed with.
func WithBase(base string) Option {
	return func(r *Router) {
		r.base = cleanPath(base)
	}
}

// WithLogger sets the logger used for transition diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMaxRedirects overrides DefaultMaxRedirects.
func WithMaxRedirects(n int) Option {
	return func(r *Router) {
		r.maxRedirects = n
	}
}

// New builds a Router over routes.
func New(routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		base:         "/",
		maxRedirects: DefaultMaxRedirects,
		index:        -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.DefaultLogger()
	}
	r.logger = r.logger.WithComponent("navigation")

	r.records = flatten(routes, "", false, 0, nil)
	if len(r.records) == 0 {
		return nil, fmt.Errorf("route table is empty")
	}

	seen := make(map[string]bool)
	for _, rec := range r.records {
		if rec.name == "" {
			continue
		}
		if seen[rec.name] {
			return nil, fmt.Errorf("duplicate route name: %s", rec.name)
		}
		seen[rec.name] = true
	}

	return r, nil
}

// Base returns the history root.
func (r *Router) Base() string {
	return r.base
}

// BeforeEach registers a guard and returns a function that removes it.
// Guards run in registration order; the first redirect wins.
func (r *Router) BeforeEach(g Guard) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.guards = append(r.guards, registeredGuard{id: id, guard: g})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, rg := range r.guards {
			if rg.id == id {
				r.guards = append(r.guards[:i], r.guards[i+1:]...)
				return
			}
		}
	}
}

// Resolve matches raw (optionally prefixed with the base, optionally with a
// query string) against the route table without navigating.
func (r *Router) Resolve(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid path %q: %w", raw, err)
	}

	p := cleanPath(u.Path)
	if r.base != "/" {
		if p == r.base {
			p = "/"
		} else if strings.HasPrefix(p, r.base+"/") {
			p = cleanPath(strings.TrimPrefix(p, r.base))
		}
	}

	var match *record
	for i := range r.records {
		rec := &r.records[i]
		if rec.path != p {
			continue
		}
		// The deepest record wins so a layout's empty child is preferred.
		if match == nil || rec.depth > match.depth {
			match = rec
		}
	}
	if match == nil {
		e := errors.NewRouteNotFoundError(p)
		e.Cause = ErrRouteNotFound
		return Location{}, e
	}

	full := p
	if r.base != "/" {
		full = cleanPath(r.base + p)
	}

	return Location{
		Path:         p,
		FullPath:     full,
		Name:         match.name,
		Title:        match.title,
		Query:        u.Query(),
		RequiresAuth: match.requiresAuth,
		view:         match.view,
		depth:        match.depth,
	}, nil
}

// Current returns the committed location, if any.
func (r *Router) Current() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index < 0 {
		return Location{}, false
	}
	return r.history[r.index], true
}

// History returns a copy of the history entries.
func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Location, len(r.history))
	copy(out, r.history)
	return out
}

// Push navigates to path, adding a history entry.
func (r *Router) Push(ctx context.Context, path string) (Location, error) {
	return r.navigate(ctx, path, modePush, 0)
}

// Replace navigates to path, replacing the current history entry.
func (r *Router) Replace(ctx context.Context, path string) (Location, error) {
	return r.navigate(ctx, path, modeReplace, 0)
}

// Navigate pushes path and discards the resulting location.
func (r *Router) Navigate(ctx context.Context, path string) error {
	_, err := r.Push(ctx, path)
	return err
}

// Back re-enters the previous history entry. Guards run again.
func (r *Router) Back(ctx context.Context) (Location, error) {
	return r.traverse(ctx, -1)
}

// Forward re-enters the next history entry. Guards run again.
func (r *Router) Forward(ctx context.Context) (Location, error) {
	return r.traverse(ctx, 1)
}

func (r *Router) traverse(ctx context.Context, delta int) (Location, error) {
	r.mu.Lock()
	at := r.index + delta
	if r.index < 0 || at < 0 || at >= len(r.history) {
		r.mu.Unlock()
		return Location{}, ErrNoHistory
	}
	target := r.history[at].String()
	r.mu.Unlock()

	return r.navigate(ctx, target, modeTraverse, at)
}

func (r *Router) navigate(ctx context.Context, raw string, m mode, at int) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}

	r.mu.Lock()
	var from Location
	if r.index >= 0 {
		from = r.history[r.index]
	}
	guards := make([]Guard, len(r.guards))
	for i, rg := range r.guards {
		guards[i] = rg.guard
	}
	r.mu.Unlock()

	target := raw
	for hops := 0; ; hops++ {
		if hops > r.maxRedirects {
			return Location{}, errors.Wrap(errors.ErrCodeNavRedirectLoop,
				fmt.Sprintf("more than %d redirects navigating to %s", r.maxRedirects, raw), ErrRedirectLoop)
		}

		to, err := r.Resolve(target)
		if err != nil {
			return Location{}, err
		}

		if redirect, ok := runGuards(ctx, guards, to, from); ok {
			r.logger.Debug("navigation redirected", "to", to.Path, "redirect", redirect)
			target = redirect
			continue
		}

		r.commit(to, m, at)
		r.logger.Debug("navigation committed", "path", to.Path, "name", to.Name)

		if to.view == nil {
			return to, nil
		}
		return to, to.view(ctx, to)
	}
}

func runGuards(ctx context.Context, guards []Guard, to, from Location) (string, bool) {
	for _, g := range guards {
		if redirect, ok := g(ctx, to, from).Redirected(); ok {
			return redirect, true
		}
	}
	return "", false
}

func (r *Router) commit(to Location, m mode, at int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch m {
	case modeTraverse:
		if at >= len(r.history) {
			r.history = append(r.history, to)
			r.index = len(r.history) - 1
			return
		}
		r.index = at
		r.history[at] = to
	case modeReplace:
		if r.index < 0 {
			r.history = append(r.history, to)
			r.index = 0
			return
		}
		r.history[r.index] = to
	default:
		r.history = append(r.history[:r.index+1], to)
		r.index++
	}
}
