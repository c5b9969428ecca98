package item

import (
	"context"

	"stockbook/internal/core/id"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID id.ID) error

	// GetByID retrieves an item, apperror NOT_FOUND if absent.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// FindByName retrieves an item by exact name, apperror NOT_FOUND if absent.
	FindByName(ctx context.Context, name string) (*Item, error)

	// List retrieves items ordered by name.
	List(ctx context.Context, filter ListFilter) ([]*Item, error)

	// Exists reports whether the item id resolves.
	Exists(ctx context.Context, itemID id.ID) (bool, error)

	// LockForUpdate takes row locks on the given items, in sorted-ID order
	// to keep lock acquisition deadlock-free. Must run inside a transaction.
	LockForUpdate(ctx context.Context, itemIDs ...id.ID) error
}

// ListFilter narrows List results.
type ListFilter struct {
	// Search matches a case-insensitive substring of the name
	Search string
	Limit  int
	Offset int
}

// LedgerChecker reports whether an item has ledger history.
// Implemented by the ledger storage; declared here so the registry can
// enforce its delete rule without depending on the ledger package.
type LedgerChecker interface {
	HasTransactions(ctx context.Context, itemID id.ID) (bool, error)
}
