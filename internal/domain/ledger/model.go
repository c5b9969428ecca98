// Package ledger provides the stock transaction ledger: the append-oriented
// log of item movements, the derived balance calculation, and the engine
// that records, edits, reverses and un-reverses movements while keeping
// every item balance non-negative.
package ledger

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Direction defines a movement direction.
type Direction string

const (
	// DirectionIn increases an item's balance (receipt)
	DirectionIn Direction = "in"
	// DirectionOut decreases an item's balance (consumption)
	DirectionOut Direction = "out"
)

// Opposite returns the counter direction, used when building reversals.
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Transaction is a single stock movement. Once committed it stays in the
// ledger forever; edits re-validate and mutate in place, reversals add a
// counter-record, and only UndoReverse deletes (the reversal record only).
type Transaction struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// ItemID references the moved item; an edit may retarget it
	ItemID id.ID `db:"item_id" json:"itemId"`

	Direction Direction      `db:"direction" json:"direction"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// Date is the business date of the movement, distinct from CreatedAt
	Date time.Time `db:"date" json:"date"`

	Reference  string `db:"reference" json:"reference,omitempty"`
	Notes      string `db:"notes" json:"notes,omitempty"`
	RecordedBy string `db:"recorded_by" json:"recordedBy,omitempty"`

	// SupplierID optionally links the movement to a supplier
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// UnitPrice and TotalValue value the movement at recording time
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// Reversed marks a transaction nullified by a live counter-record
	Reversed bool `db:"reversed" json:"reversed"`

	// ReversalOf back-links a reversal record to the transaction it reverses.
	// At most one live reversal exists per original.
	ReversalOf *id.ID `db:"reversal_of" json:"reversalOf,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Balance is the item balance after the operation that returned this
	// record. Derived, never stored.
	Balance types.Quantity `db:"-" json:"balance"`
}

// SignedEffect returns the transaction's contribution to its item's balance:
// +quantity for IN, -quantity for OUT.
func (t *Transaction) SignedEffect() types.Quantity {
	if t.Direction == DirectionOut {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// IsReversal reports whether this record reverses another transaction.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOf != nil
}

// Validate checks record-level invariants (no storage access).
func (t *Transaction) Validate(ctx context.Context) error {
	if !t.Direction.Valid() {
		return apperror.NewValidation("direction must be 'in' or 'out'").
			WithDetail("direction", string(t.Direction))
	}
	if !t.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", t.Quantity)
	}
	if id.IsNil(t.ItemID) {
		return apperror.NewValidation("item reference is required")
	}
	return nil
}

// Touch updates the modification timestamp.
func (t *Transaction) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
