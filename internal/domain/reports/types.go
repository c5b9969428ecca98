// Package reports builds read-only views over the ledger: per-item balance
// rows and period turnover. Everything here is grouping and summation of
// committed ledger data; no report ever mutates state.
package reports

import (
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// StockBalanceRow is one item in the balance report.
type StockBalanceRow struct {
	ItemID       id.ID          `db:"item_id" json:"itemId"`
	Name         string         `db:"name" json:"name"`
	Unit         string         `db:"unit" json:"unit"`
	MinimumStock types.Quantity `db:"minimum_stock" json:"minimumStock"`
	Damaged      types.Quantity `db:"damaged" json:"damaged"`
	TotalIn      types.Quantity `db:"total_in" json:"totalIn"`
	TotalOut     types.Quantity `db:"total_out" json:"totalOut"`
	Balance      types.Quantity `db:"balance" json:"balance"`
	UnitPrice    types.Money    `db:"unit_price" json:"unitPrice"`
	StockValue   types.Money    `db:"-" json:"stockValue"`
	LowStock     bool           `db:"-" json:"lowStock"`
}

// StockBalanceFilter narrows the balance report.
type StockBalanceFilter struct {
	// Search matches a case-insensitive substring of the item name
	Search string
	// LowOnly keeps only rows flagged by the alert rule
	LowOnly bool
	Limit   int
	Offset  int
}

// TurnoverRow is one item's movement totals for a period.
type TurnoverRow struct {
	ItemID         id.ID          `db:"item_id" json:"itemId"`
	Name           string         `db:"name" json:"name"`
	Unit           string         `db:"unit" json:"unit"`
	OpeningBalance types.Quantity `db:"opening_balance" json:"openingBalance"`
	Receipt        types.Quantity `db:"receipt" json:"receipt"`
	Expense        types.Quantity `db:"expense" json:"expense"`
	ClosingBalance types.Quantity `db:"-" json:"closingBalance"`
}

// TurnoverFilter selects the reporting period and optional item.
type TurnoverFilter struct {
	FromDate time.Time
	ToDate   time.Time
	ItemID   *id.ID
	Limit    int
	Offset   int
}
