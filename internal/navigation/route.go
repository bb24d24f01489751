// Package navigation implements the in-process router that stockroom views
// are reached through. Routes form a static tree; every transition passes
// through the registered guards before the target view is rendered.
package navigation

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// View renders the destination of a committed transition.
type View func(ctx context.Context, loc Location) error

// Meta carries per-route attributes consulted by guards.
type Meta struct {
	// RequiresAuth is inherited from the parent route when nil.
	RequiresAuth *bool
	Title        string
}

// Route describes one node of the static route table.
type Route struct {
	// Path is absolute for top-level routes and relative for children.
	// An empty child path matches the parent path itself.
	Path     string
	Name     string
	Meta     Meta
	View     View
	Children []Route
}

// Bool returns a pointer to b, for Meta.RequiresAuth literals.
func Bool(b bool) *bool {
	return &b
}

// Location is a resolved navigation target.
type Location struct {
	// Path is the route path relative to the router base.
	Path string
	// FullPath includes the router base.
	FullPath     string
	Name         string
	Title        string
	Query        url.Values
	RequiresAuth bool

	view  View
	depth int
}

// IsZero reports whether l is the empty location (no navigation yet).
func (l Location) IsZero() bool {
	return l.Path == ""
}

// String returns the full path with its query.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.FullPath
	}
	return l.FullPath + "?" + l.Query.Encode()
}

// record is a flattened route with inherited attributes resolved.
type record struct {
	path         string
	name         string
	title        string
	requiresAuth bool
	view         View
	depth        int
}

func flatten(routes []Route, parentPath string, parentAuth bool, depth int, out []record) []record {
	for _, r := range routes {
		full := joinPath(parentPath, r.Path)

		requiresAuth := parentAuth
		if r.Meta.RequiresAuth != nil {
			requiresAuth = *r.Meta.RequiresAuth
		}

		out = append(out, record{
			path:         full,
			name:         r.Name,
			title:        r.Meta.Title,
			requiresAuth: requiresAuth,
			view:         r.View,
			depth:        depth,
		})
		out = flatten(r.Children, full, requiresAuth, depth+1, out)
	}
	return out
}

func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") || parent == "" {
		return cleanPath(child)
	}
	return cleanPath(parent + "/" + child)
}

// cleanPath normalises p to a rooted path without a trailing slash.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
