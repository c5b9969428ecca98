package reports

import (
	"context"
)

// Repository defines aggregate queries backing the reports.
type Repository interface {
	// GetStockBalanceRows returns per-item movement totals and derived
	// balances, ordered by name.
	GetStockBalanceRows(ctx context.Context, filter StockBalanceFilter) ([]StockBalanceRow, error)

	// GetTurnoverRows returns per-item opening balance and period totals.
	GetTurnoverRows(ctx context.Context, filter TurnoverFilter) ([]TurnoverRow, error)
}
