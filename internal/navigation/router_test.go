package navigation

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stockroom/internal/log"
)

type fakeAuth struct{ authenticated bool }

func (f *fakeAuth) IsAuthenticated() bool { return f.authenticated }

type renderLog struct{ rendered []string }

func (l *renderLog) view(name string) View {
	return func(_ context.Context, _ Location) error {
		l.rendered = append(l.rendered, name)
		return nil
	}
}

func testRoutes(l *renderLog) []Route {
	return []Route{
		{Path: "/login", Name: "login", View: l.view("login")},
		{
			Path: "/",
			Meta: Meta{RequiresAuth: Bool(true)},
			Children: []Route{
				{Path: "", Name: "dashboard", View: l.view("dashboard")},
				{Path: "inventory", Name: "inventory", View: l.view("inventory")},
				{Path: "transactions", Name: "transactions", View: l.view("transactions")},
				{Path: "about", Name: "about", Meta: Meta{RequiresAuth: Bool(false)}, View: l.view("about")},
			},
		},
	}
}

func newTestRouter(t *testing.T, auth *fakeAuth, opts ...Option) (*Router, *renderLog) {
	t.Helper()
	l := &renderLog{}
	opts = append([]Option{WithLogger(log.Discard())}, opts...)
	r, err := New(testRoutes(l), opts...)
	require.NoError(t, err)
	r.BeforeEach(RequireAuth(auth, "/login"))
	return r, l
}

func TestResolve_InheritsRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{})

	tests := []struct {
		path         string
		name         string
		requiresAuth bool
	}{
		{"/login", "login", false},
		{"/", "dashboard", true},
		{"/inventory", "inventory", true},
		{"/transactions/", "transactions", true},
		{"/about", "about", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			loc, err := r.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.name, loc.Name)
			assert.Equal(t, tt.requiresAuth, loc.RequiresAuth)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{})

	_, err := r.Resolve("/reports")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrRouteNotFound))
}

func TestResolve_Query(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{})

	loc, err := r.Resolve("/inventory?search=M1&page=2")
	require.NoError(t, err)
	assert.Equal(t, "M1", loc.Query.Get("search"))
	assert.Equal(t, "2", loc.Query.Get("page"))
	assert.Equal(t, "/inventory?page=2&search=M1", loc.String())
}

func TestResolve_Base(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{}, WithBase("/app/"))

	loc, err := r.Resolve("/app/inventory")
	require.NoError(t, err)
	assert.Equal(t, "/inventory", loc.Path)
	assert.Equal(t, "/app/inventory", loc.FullPath)

	loc, err = r.Resolve("/inventory")
	require.NoError(t, err)
	assert.Equal(t, "/app/inventory", loc.FullPath)

	loc, err = r.Resolve("/app")
	require.NoError(t, err)
	assert.Equal(t, "dashboard", loc.Name)
}

func TestPush_UnauthenticatedRedirectsToLogin(t *testing.T) {
	r, views := newTestRouter(t, &fakeAuth{})

	for _, path := range []string{"/", "/inventory", "/transactions"} {
		t.Run(path, func(t *testing.T) {
			views.rendered = nil

			loc, err := r.Push(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, "/login", loc.Path)
			assert.Equal(t, []string{"login"}, views.rendered, "original destination must not render")
		})
	}
}

func TestPush_LoginAlwaysReachable(t *testing.T) {
	for _, authenticated := range []bool{false, true} {
		r, views := newTestRouter(t, &fakeAuth{authenticated: authenticated})

		loc, err := r.Push(context.Background(), "/login")
		require.NoError(t, err)
		assert.Equal(t, "login", loc.Name)
		assert.Equal(t, []string{"login"}, views.rendered)
	}
}

func TestPush_AuthenticatedAllowed(t *testing.T) {
	r, views := newTestRouter(t, &fakeAuth{authenticated: true})

	loc, err := r.Push(context.Background(), "/inventory")
	require.NoError(t, err)
	assert.Equal(t, "inventory", loc.Name)
	assert.Equal(t, []string{"inventory"}, views.rendered)

	cur, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, "/inventory", cur.Path)
}

func TestPush_ChildOverrideIsPublic(t *testing.T) {
	r, views := newTestRouter(t, &fakeAuth{})

	loc, err := r.Push(context.Background(), "/about")
	require.NoError(t, err)
	assert.Equal(t, "about", loc.Name)
	assert.Equal(t, []string{"about"}, views.rendered)
}

func TestBack_ReevaluatesGuards(t *testing.T) {
	auth := &fakeAuth{authenticated: true}
	r, views := newTestRouter(t, auth)
	ctx := context.Background()

	_, err := r.Push(ctx, "/inventory")
	require.NoError(t, err)
	_, err = r.Push(ctx, "/transactions")
	require.NoError(t, err)

	auth.authenticated = false
	views.rendered = nil

	loc, err := r.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, []string{"login"}, views.rendered)

	history := r.History()
	require.Len(t, history, 2)
	assert.Equal(t, "/login", history[0].Path)
}

func TestBackForward(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{authenticated: true})
	ctx := context.Background()

	_, err := r.Back(ctx)
	assert.ErrorIs(t, err, ErrNoHistory)

	for _, p := range []string{"/", "/inventory", "/transactions"} {
		_, err := r.Push(ctx, p)
		require.NoError(t, err)
	}

	loc, err := r.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/inventory", loc.Path)

	loc, err = r.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/transactions", loc.Path)

	_, err = r.Forward(ctx)
	assert.ErrorIs(t, err, ErrNoHistory)

	_, err = r.Back(ctx)
	require.NoError(t, err)
	_, err = r.Push(ctx, "/")
	require.NoError(t, err)
	assert.Len(t, r.History(), 3, "push after back truncates forward entries")
}

func TestReplace(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{authenticated: true})
	ctx := context.Background()

	_, err := r.Replace(ctx, "/")
	require.NoError(t, err)
	_, err = r.Replace(ctx, "/inventory")
	require.NoError(t, err)

	history := r.History()
	require.Len(t, history, 1)
	assert.Equal(t, "/inventory", history[0].Path)
}

func TestRedirectLoop(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{authenticated: true})
	r.BeforeEach(func(_ context.Context, to, _ Location) Decision {
		if to.Path == "/inventory" {
			return Redirect("/transactions")
		}
		return Redirect("/inventory")
	})

	_, err := r.Push(context.Background(), "/")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrRedirectLoop))
}

func TestBeforeEach_Remove(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{authenticated: true})

	calls := 0
	remove := r.BeforeEach(func(_ context.Context, _, _ Location) Decision {
		calls++
		return Allow()
	})

	_, err := r.Push(context.Background(), "/")
	require.NoError(t, err)
	remove()
	_, err = r.Push(context.Background(), "/inventory")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestGuardReceivesFrom(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{authenticated: true})

	var froms []string
	r.BeforeEach(func(_ context.Context, _, from Location) Decision {
		froms = append(froms, from.Path)
		return Allow()
	})

	ctx := context.Background()
	_, err := r.Push(ctx, "/")
	require.NoError(t, err)
	_, err = r.Push(ctx, "/inventory")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "/"}, froms)
}

func TestViewErrorPropagates(t *testing.T) {
	boom := stderrors.New("boom")
	r, err := New([]Route{
		{Path: "/", Name: "home", View: func(context.Context, Location) error { return boom }},
	}, WithLogger(log.Discard()))
	require.NoError(t, err)

	loc, err := r.Push(context.Background(), "/")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "home", loc.Name, "transition is committed before the view runs")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]Route{{Path: "/a", Name: "x"}, {Path: "/b", Name: "x"}}, WithLogger(log.Discard()))
	assert.Error(t, err)
}

func TestNavigate_CancelledContext(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAuth{authenticated: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Navigate(ctx, "/")
	assert.ErrorIs(t, err, context.Canceled)
}
