// Package views holds the read side: denormalised queries answered
// straight from SQL, bypassing the aggregates. This is the dedicated
// read path for callers that would otherwise lean on command
// responses.
package views

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Allocation is one row of the allocations view
type Allocation struct {
	SKU      string `db:"sku" json:"sku"`
	BatchRef string `db:"batch_ref" json:"batchref"`
}

// Allocations returns where each line of an order ended up
func Allocations(ctx context.Context, db *sqlx.DB, orderID string) ([]Allocation, error) {
	allocations := []Allocation{}
	err := db.SelectContext(ctx, &allocations,
		`SELECT sku, batch_ref FROM allocations WHERE orderid = $1 ORDER BY id`, orderID)
	return allocations, err
}
