package ledger

import (
	"context"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Repository is the ledger store contract. The engine is its sole mutator;
// every mutating call happens inside a transaction opened by the engine.
type Repository interface {
	// SumQuantity returns the total quantity moved for an item in one
	// direction, 0 when the item has no movements.
	SumQuantity(ctx context.Context, itemID id.ID, direction Direction) (types.Quantity, error)

	// Insert stores a new transaction record.
	Insert(ctx context.Context, t *Transaction) error

	// FindByID retrieves a transaction, apperror NOT_FOUND if absent.
	FindByID(ctx context.Context, txID id.ID) (*Transaction, error)

	// FindByIDForUpdate retrieves a transaction and locks its row until the
	// surrounding transaction ends. The engine takes this lock before any
	// state check so concurrent operations on the same transaction
	// serialize and re-read committed state instead of racing on it.
	FindByIDForUpdate(ctx context.Context, txID id.ID) (*Transaction, error)

	// FindReversalOf retrieves the live reversal record that back-links to
	// txID, apperror NOT_FOUND if none exists.
	FindReversalOf(ctx context.Context, txID id.ID) (*Transaction, error)

	// Update persists in-place changes (item, direction, quantity, metadata,
	// reversed flag).
	Update(ctx context.Context, t *Transaction) error

	// Delete removes a record. Only the undo-reverse operation may call
	// this, and only for reversal records.
	Delete(ctx context.Context, txID id.ID) error

	// List retrieves movement history, newest business date first.
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// HasTransactions reports whether an item has any ledger history.
	HasTransactions(ctx context.Context, itemID id.ID) (bool, error)
}

// ListFilter narrows movement history queries.
type ListFilter struct {
	ItemID     *id.ID
	SupplierID *id.ID
	Direction  *Direction
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
