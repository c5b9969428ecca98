package ledger

import (
	"context"
	"fmt"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Calculator derives item balances from ledger aggregates. It never caches:
// every call reads the latest committed sums, so a balance is correct the
// moment the surrounding storage transaction can see the writes.
type Calculator struct {
	ledger Repository
}

// NewCalculator creates a balance calculator over the ledger store.
func NewCalculator(ledger Repository) *Calculator {
	return &Calculator{ledger: ledger}
}

// Balance returns totalIn - totalOut for the item.
func (c *Calculator) Balance(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	in, err := c.ledger.SumQuantity(ctx, itemID, DirectionIn)
	if err != nil {
		return 0, fmt.Errorf("sum receipts: %w", err)
	}
	out, err := c.ledger.SumQuantity(ctx, itemID, DirectionOut)
	if err != nil {
		return 0, fmt.Errorf("sum consumption: %w", err)
	}
	return in - out, nil
}

// IsLowStock reports whether a balance is at or below the minimum threshold.
func IsLowStock(balance, minimumStock types.Quantity) bool {
	return balance <= minimumStock
}

// ProjectedAfterEdit computes the balance an item would have with a
// transaction's old effect removed and its new effect applied. The edit
// check is this single formula rather than a two-step mutation, so the
// invariant stays checkable in isolation.
func ProjectedAfterEdit(current, oldEffect, newEffect types.Quantity) types.Quantity {
	return current - oldEffect + newEffect
}

// ProjectedAfterRemoval computes the balance an item would have once a
// transaction's effect is withdrawn (cross-item edits and undo-reverse).
func ProjectedAfterRemoval(current, effect types.Quantity) types.Quantity {
	return current - effect
}
