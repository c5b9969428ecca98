package dto

import (
	"encoding/json"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/ledger"
)

// RecordTransactionRequest commits a new stock movement.
type RecordTransactionRequest struct {
	ItemID    string `json:"itemId" binding:"required"`
	Direction string `json:"direction" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	// Date is the business date; defaults to now when omitted
	Date       *time.Time `json:"date"`
	Reference  string     `json:"reference"`
	Notes      string     `json:"notes"`
	SupplierID string     `json:"supplierId"`
	// UnitPrice is a decimal string; empty falls back to the item's price
	UnitPrice string `json:"unitPrice"`
}

// ToInput builds the engine input. recordedBy is resolved by the handler
// from the authenticated user.
func (r RecordTransactionRequest) ToInput(recordedBy string) (ledger.RecordInput, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return ledger.RecordInput{}, apperror.NewValidation("invalid itemId format")
	}

	in := ledger.RecordInput{
		ItemID:     itemID,
		Direction:  ledger.Direction(r.Direction),
		Quantity:   types.Quantity(r.Quantity),
		Reference:  r.Reference,
		Notes:      r.Notes,
		RecordedBy: recordedBy,
		UnitPrice:  types.ZeroMoney(),
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	if r.SupplierID != "" {
		supplierID, err := id.Parse(r.SupplierID)
		if err != nil {
			return ledger.RecordInput{}, apperror.NewValidation("invalid supplierId format")
		}
		in.SupplierID = &supplierID
	}
	if r.UnitPrice != "" {
		price, err := types.NewMoneyFromString(r.UnitPrice)
		if err != nil {
			return ledger.RecordInput{}, apperror.NewValidation("invalid unitPrice format")
		}
		in.UnitPrice = price
	}
	return in, nil
}

// EditTransactionRequest replaces the content of an existing movement.
type EditTransactionRequest struct {
	ItemID     string     `json:"itemId" binding:"required"`
	Direction  string     `json:"direction" binding:"required"`
	Quantity   int64      `json:"quantity" binding:"required,min=1"`
	Date       *time.Time `json:"date"`
	Reference  string     `json:"reference"`
	Notes      string     `json:"notes"`
	SupplierID string     `json:"supplierId"`
	UnitPrice  string     `json:"unitPrice"`
}

// ToInput builds the engine edit input.
func (r EditTransactionRequest) ToInput(recordedBy string) (ledger.EditInput, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return ledger.EditInput{}, apperror.NewValidation("invalid itemId format")
	}

	in := ledger.EditInput{
		ItemID:     itemID,
		Direction:  ledger.Direction(r.Direction),
		Quantity:   types.Quantity(r.Quantity),
		Reference:  r.Reference,
		Notes:      r.Notes,
		RecordedBy: recordedBy,
		UnitPrice:  types.ZeroMoney(),
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	if r.SupplierID != "" {
		supplierID, err := id.Parse(r.SupplierID)
		if err != nil {
			return ledger.EditInput{}, apperror.NewValidation("invalid supplierId format")
		}
		in.SupplierID = &supplierID
	}
	if r.UnitPrice != "" {
		price, err := types.NewMoneyFromString(r.UnitPrice)
		if err != nil {
			return ledger.EditInput{}, apperror.NewValidation("invalid unitPrice format")
		}
		in.UnitPrice = price
	}
	return in, nil
}

// ReverseTransactionRequest nullifies a movement.
type ReverseTransactionRequest struct {
	Reason string `json:"reason"`
}

// BalanceResponse returns a derived item balance.
type BalanceResponse struct {
	ItemID  string `json:"itemId"`
	Balance int64  `json:"balance"`
}

// AuditEntryResponse is one audit trail row; changes are always returned
// decompressed.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId"`
	Changes   json.RawMessage `json:"changes"`
	CreatedAt time.Time       `json:"createdAt"`
}
