// Package app wires storage, navigation, authentication and the API client
// into a running stockroom session and defines its views.
package app

import (
	"context"
	"io"
	"os"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/auth"
	"github.com/felixgeelhaar/stockroom/internal/config"
	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/log"
	"github.com/felixgeelhaar/stockroom/internal/navigation"
	"github.com/felixgeelhaar/stockroom/internal/storage"
	"github.com/felixgeelhaar/stockroom/internal/ux"
	"github.com/felixgeelhaar/stockroom/internal/version"
)

// App is one stockroom session.
type App struct {
	Config *config.Config
	Store  storage.Store
	Router *navigation.Router
	Auth   *auth.State
	Client *api.Client

	out       io.Writer
	formatter ux.Formatter
	styles    *ux.Styles
	logger    *log.Logger
}

// Option configures an App.
type Option func(*options)

type options struct {
	out    io.Writer
	store  storage.Store
	logger *log.Logger
}

// WithOutput sets where views render (default stdout).
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithStore replaces the storage backend selected by the configuration.
func WithStore(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the session: storage, then the router, then the auth state
// (which restores the persisted credential), then the API client whose
// hooks read from and log out the auth state. Finally the auth guard is
// registered on the router.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.DefaultLogger()
	}

	formatter, err := ux.NewFormatter(cfg.Output, &ux.FormatterOptions{Writer: o.out})
	if err != nil {
		return nil, errors.NewConfigInvalidError(err.Error(), err)
	}

	a := &App{
		Config:    cfg,
		out:       o.out,
		formatter: formatter,
		styles:    ux.NewStyles(o.out),
		logger:    o.logger.WithComponent("app"),
	}

	a.Store = o.store
	if a.Store == nil {
		a.Store, err = storage.Open(cfg.Storage.Options())
		if err != nil {
			return nil, err
		}
	}

	a.Router, err = navigation.New(Routes(a),
		navigation.WithBase(cfg.BaseURL),
		navigation.WithLogger(o.logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Auth = auth.NewState(ctx, a.Store, a.Router, o.logger)

	before, after := api.LogRequests(o.logger)
	a.Client, err = api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(o.logger),
		api.WithRequestHook(
			api.UserAgent(version.GetInfo().UserAgent()),
			api.RequestID(),
			api.InjectToken(a.Auth),
			before,
		),
		api.WithResponseHook(
			after,
			api.LogoutOnUnauthorized(a.Auth),
		),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Auth.Bind(a.Client)

	a.Router.BeforeEach(navigation.RequireAuth(a.Auth, auth.LoginPath))

	return a, nil
}

// Open navigates to path and renders the resulting view. When the guard
// diverted a protected path to the login view the navigation still
// happens, and a not-authenticated error is returned so the caller can
// report it.
func (a *App) Open(ctx context.Context, path string) error {
	requested, err := a.Router.Resolve(path)
	if err != nil {
		return err
	}

	loc, err := a.Router.Push(ctx, path)
	if err != nil {
		return err
	}
	if requested.RequiresAuth && loc.Name == RouteLogin {
		return errors.NewNotAuthenticatedError(requested.Path)
	}
	return nil
}

// RequireAuth fails with a not-authenticated error when no credential is
// held. Commands that call the API outside a view use it.
func (a *App) RequireAuth(action string) error {
	if a.Auth.IsAuthenticated() {
		return nil
	}
	return errors.NewNotAuthenticatedError(action)
}

// Render writes data in the configured format. In text format the text
// value (a string, fmt.Stringer or ux.Tabular) is rendered instead; a nil
// text renders data itself.
func (a *App) Render(data, text any) error {
	if a.Config.Output == ux.FormatText || a.Config.Output == "" {
		if text == nil {
			text = data
		}
		return a.formatter.Format(text)
	}
	return a.formatter.Format(data)
}

// Styles returns the styles bound to the output writer.
func (a *App) Styles() *ux.Styles {
	return a.styles
}

// Close releases the storage backend.
func (a *App) Close() error {
	if c, ok := a.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
