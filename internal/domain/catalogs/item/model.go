// Package item provides the inventory item catalog.
// An item holds identity and stock-control settings; its balance is never
// stored here, it is always derived from the ledger.
package item

import (
	"context"
	"strings"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Item represents a tracked inventory item.
type Item struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Name is unique within the organization
	Name string `db:"name" json:"name"`

	// Unit is the unit-of-measure label (pcs, kg, box)
	Unit string `db:"unit" json:"unit"`

	// MinimumStock is the low-stock threshold; balance <= MinimumStock
	// flags the item as low stock
	MinimumStock types.Quantity `db:"minimum_stock" json:"minimumStock"`

	// Damaged counts units written off as damaged. Incremented only by
	// explicit damage recording, never by ledger movements.
	Damaged types.Quantity `db:"damaged" json:"damaged"`

	// UnitPrice is the reference price used to value movements
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an Item with a generated ID and timestamps.
func New(name, unit string, minimumStock types.Quantity) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:           id.New(),
		Name:         strings.TrimSpace(name),
		Unit:         unit,
		MinimumStock: minimumStock,
		UnitPrice:    types.ZeroMoney(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks item invariants.
func (i *Item) Validate(ctx context.Context) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("item name must not be blank").
			WithDetail("field", "name")
	}
	if !i.MinimumStock.IsPositive() {
		return apperror.NewValidation("minimum stock must be positive").
			WithDetail("field", "minimumStock")
	}
	if i.Damaged.IsNegative() {
		return apperror.NewValidation("damaged quantity cannot be negative").
			WithDetail("field", "damaged")
	}
	if i.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}

// Touch updates the modification timestamp.
func (i *Item) Touch() {
	i.UpdatedAt = time.Now().UTC()
}
