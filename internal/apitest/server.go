// Package apitest provides an in-process fake of the inventory backend for
// tests: token authentication, paginated and searchable materials, and
// transactions, mounted under /api like the real service.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// PageSize matches the backend's page-number pagination.
const PageSize = 10

// Material mirrors the backend material representation.
type Material struct {
	ID          int    `json:"id"`
	MaterialID  string `json:"material_id"`
	Name        string `json:"name"`
	ModelNumber string `json:"model_number"`
	Category    string `json:"category"`
	Equipment   string `json:"equipment"`
	Warehouse   string `json:"warehouse"`
	Shelf       string `json:"shelf"`
	Quantity    int    `json:"quantity"`
}

// Transaction mirrors the backend transaction representation.
type Transaction struct {
	ID              int       `json:"id"`
	Material        int       `json:"material"`
	MaterialName    string    `json:"material_name"`
	MaterialCode    string    `json:"material_code"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	Timestamp       time.Time `json:"timestamp"`
}

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Server is a fake inventory backend.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	passwords    map[string]string
	tokens       map[string]string
	materials    []Material
	transactions []Transaction
	nextID       int
	requests     []Request
	overrides    map[string]int
	delay        time.Duration
}

// NewServer starts a fake backend that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		overrides: make(map[string]int),
		nextID:    1,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/token-auth/", s.handleTokenAuth).Methods(http.MethodPost)

	protected := func(h http.HandlerFunc) http.Handler { return s.requireToken(h) }
	api.Handle("/materials/", protected(s.handleListMaterials)).Methods(http.MethodGet)
	api.Handle("/materials/", protected(s.handleCreateMaterial)).Methods(http.MethodPost)
	api.Handle("/materials/{id:[0-9]+}/", protected(s.handleGetMaterial)).Methods(http.MethodGet)
	api.Handle("/materials/{id:[0-9]+}/", protected(s.handleUpdateMaterial)).Methods(http.MethodPut, http.MethodPatch)
	api.Handle("/materials/{id:[0-9]+}/", protected(s.handleDeleteMaterial)).Methods(http.MethodDelete)
	api.Handle("/transactions/", protected(s.handleListTransactions)).Methods(http.MethodGet)

	return r
}

// AddUser registers credentials and the token issued for them.
func (s *Server) AddUser(username, password, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[username] = password
	s.tokens[token] = username
}

// RevokeToken makes token invalid, as an expired server-side session would.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// AddMaterial stores m, assigning an ID, and returns the stored copy.
func (s *Server) AddMaterial(m Material) Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	s.materials = append(s.materials, m)
	return m
}

// AddTransaction stores tx, assigning an ID.
func (s *Server) AddTransaction(tx Transaction) Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = len(s.transactions) + 1
	s.transactions = append(s.transactions, tx)
	return tx
}

// RespondWith forces every request whose path equals path (e.g.
// "/api/materials/") to fail with status.
func (s *Server) RespondWith(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = status
}

// SetDelay delays every response by d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		status, forced := s.overrides[r.URL.Path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if forced {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}

		token, ok := strings.CutPrefix(header, "Token ")
		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleTokenAuth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pw, ok := s.passwords[body.Username]; !ok || pw != body.Password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Unable to log in with provided credentials."},
		})
		return
	}
	for token, user := range s.tokens {
		if user == body.Username {
			writeJSON(w, http.StatusOK, map[string]string{"token": token})
			return
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string][]string{
		"non_field_errors": {"Unable to log in with provided credentials."},
	})
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	var matched []Material
	for _, m := range s.materials {
		if search == "" || materialMatches(m, search) {
			matched = append(matched, m)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	writePage(w, r, matched)
}

func materialMatches(m Material, term string) bool {
	for _, field := range []string{m.MaterialID, m.Name, m.ModelNumber, m.Category, m.Equipment, m.Warehouse, m.Shelf} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (s *Server) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	var m Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	if m.MaterialID == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"material_id": {"This field is required."}})
		return
	}
	writeJSON(w, http.StatusCreated, s.AddMaterial(m))
}

func (s *Server) findMaterial(r *http.Request) (int, bool) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	for i, m := range s.materials {
		if m.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) handleGetMaterial(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findMaterial(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, s.materials[i])
}

func (s *Server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findMaterial(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	updated := s.materials[i]
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	updated.ID = s.materials[i].ID
	s.materials[i] = updated
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findMaterial(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	s.materials = append(s.materials[:i], s.materials[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	txs := make([]Transaction, len(s.transactions))
	copy(txs, s.transactions)
	s.mu.Unlock()

	sort.Slice(txs, func(i, j int) bool { return txs[i].Timestamp.After(txs[j].Timestamp) })
	writePage(w, r, txs)
}

func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	start := (page - 1) * PageSize
	if start > 0 && start >= len(items) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
		return
	}
	end := min(start+PageSize, len(items))

	var next, previous *string
	if end < len(items) {
		u := pageURL(r, page+1)
		next = &u
	}
	if page > 1 {
		u := pageURL(r, page-1)
		previous = &u
	}

	results := items[start:end]
	if results == nil {
		results = []T{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(items),
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return "http://" + r.Host + r.URL.Path + "?" + q.Encode()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
