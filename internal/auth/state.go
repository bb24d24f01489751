// Package auth holds the process-wide authentication state: the current
// credential, its durable copy in storage, and the login and logout
// transitions that move the user between the login view and the home view.
package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/log"
	"github.com/felixgeelhaar/stockroom/internal/storage"
)

// Destinations of the login and logout transitions.
const (
	HomePath  = "/"
	LoginPath = "/login"
)

var (
	// ErrEmptyToken is returned when the credential exchange succeeded but
	// carried no token.
	ErrEmptyToken = stderrors.New("credential exchange returned an empty token")
	// ErrNotBound is returned by Login before Bind was called.
	ErrNotBound = stderrors.New("auth state has no request pipeline bound")
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = stderrors.New("username and password are required")
)

// Requester exchanges credentials for a token. *api.Client satisfies it.
type Requester interface {
	ObtainToken(ctx context.Context, username, password string) (string, error)
}

// Navigator moves the application to a path. *navigation.Router satisfies it.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Principal is the signed-in user's profile. The backend exposes no
// identity endpoint, so it is never populated today.
type Principal struct {
	Username string `json:"username" yaml:"username"`
}

// Session is a snapshot of the authentication state.
type Session struct {
	Credential string     `json:"-" yaml:"-"`
	Principal  *Principal `json:"principal,omitempty" yaml:"principal,omitempty"`
}

// Authenticated reports whether the snapshot carries a credential.
func (s Session) Authenticated() bool {
	return s.Credential != ""
}

// State is the single source of truth for whether the user is signed in.
// It is safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	session Session

	store     storage.Store
	nav       Navigator
	requester Requester
	logger    *log.Logger
}

// NewState restores the credential persisted in store, if any. A storage
// read failure is logged and leaves the state unauthenticated.
func NewState(ctx context.Context, store storage.Store, nav Navigator, logger *log.Logger) *State {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	s := &State{
		store:  store,
		nav:    nav,
		logger: logger.WithComponent("auth"),
	}

	token, ok, err := store.Get(ctx, storage.TokenKey)
	switch {
	case err != nil:
		s.logger.WithError(err).Warn("failed to restore credential, starting signed out")
	case ok:
		s.session.Credential = token
		s.logger.Debug("restored credential from storage")
	}
	return s
}

// Bind attaches the request pipeline used by Login. It exists because the
// pipeline itself reads the credential from this State.
func (s *State) Bind(r Requester) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requester = r
}

// Token returns the current credential, or "" when signed out.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Credential
}

// IsAuthenticated reports whether a credential is held. It is derived on
// every call and never cached.
func (s *State) IsAuthenticated() bool {
	return s.Token() != ""
}

// Session returns a copy of the current session.
func (s *State) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	if out.Principal != nil {
		p := *out.Principal
		out.Principal = &p
	}
	return out
}

// Login exchanges username and password for a credential, persists it and
// navigates home. On failure the state is left untouched, the failure is
// logged, and the returned error still unwraps to the pipeline's error.
//
// If the credential cannot be persisted it is kept for this process and
// the storage error is returned without navigating. Once persisted the
// login has succeeded; a failure to render the home view is only logged.
func (s *State) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.Wrap(errors.ErrCodeAuthInvalidInput, "username and password are required", ErrMissingCredentials)
	}

	s.mu.RLock()
	requester := s.requester
	s.mu.RUnlock()
	if requester == nil {
		return ErrNotBound
	}

	token, err := requester.ObtainToken(ctx, username, password)
	if err == nil && token == "" {
		err = ErrEmptyToken
	}
	if err != nil {
		s.logger.WithError(err).Error("login failed", "username", username)
		return errors.NewLoginFailedError(username, err)
	}

	s.mu.Lock()
	s.session.Credential = token
	s.mu.Unlock()

	if err := s.store.Set(ctx, storage.TokenKey, token); err != nil {
		s.logger.WithError(err).Error("failed to persist credential")
		return err
	}

	s.logger.Info("login succeeded", "username", username)
	if err := s.nav.Navigate(ctx, HomePath); err != nil {
		s.logger.WithError(err).Warn("failed to navigate to home view")
	}
	return nil
}

// Logout clears the session, removes the persisted credential and
// navigates to the login view. It is idempotent and never fails; storage
// and navigation problems are logged.
func (s *State) Logout(ctx context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.session.Credential != ""
	s.session = Session{}
	s.mu.Unlock()

	if err := s.store.Remove(ctx, storage.TokenKey); err != nil {
		s.logger.WithError(err).Warn("failed to remove persisted credential")
	}
	if wasAuthenticated {
		s.logger.Info("logged out")
	}

	if err := s.nav.Navigate(ctx, LoginPath); err != nil {
		s.logger.WithError(err).Warn("failed to navigate to login view")
	}
}
