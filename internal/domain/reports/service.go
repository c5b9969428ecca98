package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stockbook/internal/core/apperror"
	"stockbook/internal/domain/alerts"
)

// Service generates reports over the ledger.
type Service struct {
	repo Repository
	rule *alerts.Rule
}

// NewService creates a reports service. rule flags low-stock rows; pass the
// default rule when no custom expression is configured.
func NewService(repo Repository, rule *alerts.Rule) *Service {
	return &Service{repo: repo, rule: rule}
}

// GetStockBalance builds the balance report: per-item totals, derived
// balance, stock value and the alert flag.
func (s *Service) GetStockBalance(ctx context.Context, filter StockBalanceFilter) ([]StockBalanceRow, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	rows, err := s.repo.GetStockBalanceRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock balance report: %w", err)
	}

	out := make([]StockBalanceRow, 0, len(rows))
	for _, row := range rows {
		flagged, err := s.rule.Eval(alerts.Vars{
			Balance:      row.Balance,
			MinimumStock: row.MinimumStock,
			Damaged:      row.Damaged,
			TotalIn:      row.TotalIn,
			TotalOut:     row.TotalOut,
		})
		if err != nil {
			return nil, err
		}
		row.LowStock = flagged
		row.StockValue = row.UnitPrice.Mul(decimal.NewFromInt(row.Balance.Int64()))

		if filter.LowOnly && !flagged {
			continue
		}
		out = append(out, row)
	}

	return out, nil
}

// GetLowStock returns only the rows flagged by the alert rule.
func (s *Service) GetLowStock(ctx context.Context, filter StockBalanceFilter) ([]StockBalanceRow, error) {
	filter.LowOnly = true
	return s.GetStockBalance(ctx, filter)
}

// GetTurnover builds the period turnover report.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) ([]TurnoverRow, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	rows, err := s.repo.GetTurnoverRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get turnover report: %w", err)
	}
	return rows, nil
}
