package application

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogItem is what the ledger snapshots from the catalog at placement.
type CatalogItem struct {
	Name      string
	Price     decimal.Decimal
	Available bool
}

// CatalogGateway resolves a menu item id to its state at call time. Unknown
// ids fail with apperr.ErrNotFound.
type CatalogGateway interface {
	Lookup(ctx context.Context, itemID string) (CatalogItem, error)
}
