package catalog

import (
	"context"

	"inventory-service/internal/model"
)

// ProductPatch carries the mutable product fields persisted on update.
// Code and CreatedAt are immutable after creation and deliberately
// absent here.
type ProductPatch struct {
	Name     string
	Unit     string
	Category string
	Quantity int
	Price    float64
}

// Store is the persistence boundary behind the repository. Every call
// is fallible and may block on I/O; a failed call must leave the
// backing storage unchanged from the repository's point of view. The
// repository never mutates its in-memory state before the
// corresponding store call has succeeded.
type Store interface {
	LoadAll(ctx context.Context) ([]model.Product, []model.PriceHistory, error)
	InsertProduct(ctx context.Context, product model.Product) error
	MutateProduct(ctx context.Context, id string, patch ProductPatch) error
	RemoveProduct(ctx context.Context, id string) error
	InsertOrUpdatePriceEntry(ctx context.Context, entry model.PriceHistory) error
	RemovePriceEntries(ctx context.Context, productID string) error
}
