package api

import (
	"context"
	"fmt"
	"time"
)

// Transaction types recorded by the backend.
const (
	TransactionIn  = "IN"
	TransactionOut = "OUT"
)

// Transaction is a stock movement of one material.
type Transaction struct {
	ID              int       `json:"id" yaml:"id"`
	Material        int       `json:"material" yaml:"material"`
	MaterialName    string    `json:"material_name" yaml:"material_name"`
	MaterialCode    string    `json:"material_code" yaml:"material_code"`
	TransactionType string    `json:"transaction_type" yaml:"transaction_type"`
	Quantity        int       `json:"quantity" yaml:"quantity"`
	Note            string    `json:"note,omitempty" yaml:"note,omitempty"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
}

// ListTransactions returns one page of transactions, newest first as
// ordered by the backend.
func (c *Client) ListTransactions(ctx context.Context, page int) (*Page[Transaction], error) {
	path := "/transactions/"
	if page > 1 {
		path = fmt.Sprintf("/transactions/?page=%d", page)
	}

	var out Page[Transaction]
	if err := c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
