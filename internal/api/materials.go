package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Page is a page-number paginated list as returned by the backend.
type Page[T any] struct {
	Count    int     `json:"count" yaml:"count"`
	Next     *string `json:"next" yaml:"next,omitempty"`
	Previous *string `json:"previous" yaml:"previous,omitempty"`
	Results  []T     `json:"results" yaml:"results"`
}

// HasNext reports whether another page follows.
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// Material is a stocked item.
type Material struct {
	ID          int    `json:"id,omitempty" yaml:"id,omitempty"`
	MaterialID  string `json:"material_id" yaml:"material_id"`
	Name        string `json:"name" yaml:"name"`
	ModelNumber string `json:"model_number" yaml:"model_number"`
	Category    string `json:"category" yaml:"category"`
	Equipment   string `json:"equipment" yaml:"equipment"`
	Warehouse   string `json:"warehouse" yaml:"warehouse"`
	Shelf       string `json:"shelf" yaml:"shelf"`
	Quantity    int    `json:"quantity" yaml:"quantity"`
}

// MaterialQuery filters ListMaterials. Search matches material id, name,
// model number, category, equipment, warehouse and shelf.
type MaterialQuery struct {
	Search string
	Page   int
}

func (q MaterialQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// ListMaterials returns one page of materials.
func (c *Client) ListMaterials(ctx context.Context, q MaterialQuery) (*Page[Material], error) {
	path := "/materials/"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}

	var page Page[Material]
	if err := c.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetMaterial returns the material with primary key id.
func (c *Client) GetMaterial(ctx context.Context, id int) (*Material, error) {
	var m Material
	if err := c.Get(ctx, fmt.Sprintf("/materials/%d/", id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMaterial creates m and returns the stored record.
func (c *Client) CreateMaterial(ctx context.Context, m Material) (*Material, error) {
	var created Material
	if err := c.Post(ctx, "/materials/", m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateMaterial replaces the material with primary key m.ID.
func (c *Client) UpdateMaterial(ctx context.Context, m Material) (*Material, error) {
	if m.ID == 0 {
		return nil, fmt.Errorf("material id is required for update")
	}
	var updated Material
	if err := c.Put(ctx, fmt.Sprintf("/materials/%d/", m.ID), m, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AdjustQuantity sets the stocked quantity of a material.
func (c *Client) AdjustQuantity(ctx context.Context, id, quantity int) (*Material, error) {
	var updated Material
	body := map[string]int{"quantity": quantity}
	if err := c.Patch(ctx, fmt.Sprintf("/materials/%d/", id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMaterial removes the material with primary key id.
func (c *Client) DeleteMaterial(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/materials/%d/", id))
}
