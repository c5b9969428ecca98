package dto

import (
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/item"
)

// CreateItemRequest creates a new catalog item.
type CreateItemRequest struct {
	Name         string `json:"name" binding:"required"`
	Unit         string `json:"unit" binding:"required"`
	MinimumStock int64  `json:"minimumStock" binding:"required,min=1"`
	// UnitPrice is a decimal string, e.g. "12.50"
	UnitPrice string `json:"unitPrice"`
}

// ToEntity builds the domain item.
func (r CreateItemRequest) ToEntity() (*item.Item, error) {
	it := item.New(r.Name, r.Unit, types.Quantity(r.MinimumStock))
	if r.UnitPrice != "" {
		price, err := types.NewMoneyFromString(r.UnitPrice)
		if err != nil {
			return nil, apperror.NewValidation("invalid unitPrice format")
		}
		it.UnitPrice = price
	}
	return it, nil
}

// UpdateItemRequest replaces mutable item fields.
type UpdateItemRequest struct {
	Name         string `json:"name" binding:"required"`
	Unit         string `json:"unit" binding:"required"`
	MinimumStock int64  `json:"minimumStock" binding:"required,min=1"`
	UnitPrice    string `json:"unitPrice"`
}

// ApplyTo copies request fields onto the existing item.
func (r UpdateItemRequest) ApplyTo(it *item.Item) error {
	it.Name = r.Name
	it.Unit = r.Unit
	it.MinimumStock = types.Quantity(r.MinimumStock)
	if r.UnitPrice != "" {
		price, err := types.NewMoneyFromString(r.UnitPrice)
		if err != nil {
			return apperror.NewValidation("invalid unitPrice format")
		}
		it.UnitPrice = price
	}
	return nil
}

// RecordDamageRequest increments the damaged counter.
type RecordDamageRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}
