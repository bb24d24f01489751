package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/auth"
	"github.com/felixgeelhaar/stockroom/internal/navigation"
	"github.com/felixgeelhaar/stockroom/internal/ux"
)

// Route names.
const (
	RouteLogin        = "login"
	RouteDashboard    = "dashboard"
	RouteInventory    = "inventory"
	RouteTransactions = "transactions"
)

// recentTransactions is how many movements the dashboard lists.
const recentTransactions = 5

// Routes returns the route table. Everything under "/" requires a
// credential; the login view is public.
func Routes(a *App) []navigation.Route {
	return []navigation.Route{
		{
			Path: auth.LoginPath,
			Name: RouteLogin,
			Meta: navigation.Meta{RequiresAuth: navigation.Bool(false), Title: "Sign in"},
			View: a.loginView,
		},
		{
			Path: "/",
			Meta: navigation.Meta{RequiresAuth: navigation.Bool(true)},
			Children: []navigation.Route{
				{Path: "", Name: RouteDashboard, Meta: navigation.Meta{Title: "Dashboard"}, View: a.dashboardView},
				{Path: "inventory", Name: RouteInventory, Meta: navigation.Meta{Title: "Inventory"}, View: a.inventoryView},
				{Path: "transactions", Name: RouteTransactions, Meta: navigation.Meta{Title: "Transactions"}, View: a.transactionsView},
			},
		},
	}
}

// Status describes the session.
type Status struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	APIURL        string `json:"api_url" yaml:"api_url"`
	Storage       string `json:"storage" yaml:"storage"`
	Location      string `json:"location,omitempty" yaml:"location,omitempty"`
}

// CurrentStatus snapshots the session state.
func (a *App) CurrentStatus() Status {
	s := Status{
		Authenticated: a.Auth.IsAuthenticated(),
		APIURL:        a.Client.BaseURL(),
		Storage:       a.Config.Storage.Backend,
	}
	if loc, ok := a.Router.Current(); ok {
		s.Location = loc.String()
	}
	return s
}

func (a *App) statusText(s Status) string {
	state := a.styles.Warning.Render("signed out")
	if s.Authenticated {
		state = a.styles.Success.Render("signed in")
	}
	pairs := [][2]string{
		{"status", state},
		{"api", s.APIURL},
		{"storage", s.Storage},
	}
	if s.Location != "" {
		pairs = append(pairs, [2]string{"location", s.Location})
	}
	return a.styles.KeyValues(pairs)
}

func (a *App) loginView(context.Context, navigation.Location) error {
	s := a.CurrentStatus()
	text := a.statusText(s)
	if !s.Authenticated {
		text += "\n\n" + a.styles.Muted.Render("Run 'stockroom login' to sign in.")
	}
	return a.Render(s, text)
}

// Dashboard summarizes stock and recent movements.
type Dashboard struct {
	Materials    int               `json:"materials" yaml:"materials"`
	Transactions int               `json:"transactions" yaml:"transactions"`
	Recent       []api.Transaction `json:"recent" yaml:"recent"`
}

func (a *App) dashboardView(ctx context.Context, _ navigation.Location) error {
	var (
		materials    *api.Page[api.Material]
		transactions *api.Page[api.Transaction]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		materials, err = a.Client.ListMaterials(gctx, api.MaterialQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = a.Client.ListTransactions(gctx, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	d := Dashboard{
		Materials:    materials.Count,
		Transactions: transactions.Count,
		Recent:       transactions.Results,
	}
	if len(d.Recent) > recentTransactions {
		d.Recent = d.Recent[:recentTransactions]
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Dashboard"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.KeyValues([][2]string{
		{"materials", strconv.Itoa(d.Materials)},
		{"transactions", strconv.Itoa(d.Transactions)},
	}))
	if len(d.Recent) > 0 {
		b.WriteString("\n\n")
		b.WriteString(a.styles.Title.Render("Recent transactions"))
		b.WriteString("\n")
		recent := TransactionTable(d.Recent)
		b.WriteString(a.styles.Table(recent.Headers(), recent.Rows()))
	}
	return a.Render(d, b.String())
}

func (a *App) inventoryView(ctx context.Context, loc navigation.Location) error {
	q := api.MaterialQuery{Search: loc.Query.Get("search")}
	if p, err := strconv.Atoi(loc.Query.Get("page")); err == nil {
		q.Page = p
	}

	page, err := a.Client.ListMaterials(ctx, q)
	if err != nil {
		return err
	}
	return a.Render(page, pagedText(a, MaterialTable(page.Results), page.Count, page.HasNext()))
}

func (a *App) transactionsView(ctx context.Context, loc navigation.Location) error {
	n := 1
	if p, err := strconv.Atoi(loc.Query.Get("page")); err == nil {
		n = p
	}

	page, err := a.Client.ListTransactions(ctx, n)
	if err != nil {
		return err
	}
	return a.Render(page, pagedText(a, TransactionTable(page.Results), page.Count, page.HasNext()))
}

func pagedText(a *App, t ux.Tabular, count int, more bool) string {
	rows := t.Rows()
	if len(rows) == 0 {
		return a.styles.Muted.Render("No results.")
	}
	footer := fmt.Sprintf("%d of %d", len(rows), count)
	if more {
		footer += ", more with --page"
	}
	return a.styles.Table(t.Headers(), rows) + "\n" + a.styles.Muted.Render(footer)
}

// MaterialTable renders materials as rows.
type MaterialTable []api.Material

// Headers implements ux.Tabular.
func (MaterialTable) Headers() []string {
	return []string{"ID", "MATERIAL", "NAME", "MODEL", "CATEGORY", "WAREHOUSE", "SHELF", "QTY"}
}

// Rows implements ux.Tabular.
func (t MaterialTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, m := range t {
		rows = append(rows, []string{
			strconv.Itoa(m.ID), m.MaterialID, m.Name, m.ModelNumber,
			m.Category, m.Warehouse, m.Shelf, strconv.Itoa(m.Quantity),
		})
	}
	return rows
}

// TransactionTable renders transactions as rows.
type TransactionTable []api.Transaction

// Headers implements ux.Tabular.
func (TransactionTable) Headers() []string {
	return []string{"WHEN", "TYPE", "MATERIAL", "QTY"}
}

// Rows implements ux.Tabular.
func (t TransactionTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, tx := range t {
		material := tx.MaterialCode
		if material == "" {
			material = strconv.Itoa(tx.Material)
		}
		rows = append(rows, []string{
			tx.Timestamp.Local().Format("2006-01-02 15:04"),
			tx.TransactionType,
			material,
			strconv.Itoa(tx.Quantity),
		})
	}
	return rows
}
