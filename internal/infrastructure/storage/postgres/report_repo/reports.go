// Package report_repo builds the aggregate report queries. Balances come
// straight out of the transactions table via conditional sums; nothing here
// reads a stored balance because none exists.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/domain/reports"
	"stockbook/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetStockBalanceRows aggregates per-item totals across the whole ledger.
func (r *ReportRepo) GetStockBalanceRows(ctx context.Context, filter reports.StockBalanceFilter) ([]reports.StockBalanceRow, error) {
	q := r.builder.Select(
		"i.id AS item_id",
		"i.name",
		"i.unit",
		"i.minimum_stock",
		"i.damaged",
		"i.unit_price",
		"COALESCE(SUM(CASE WHEN t.direction = 'in' THEN t.quantity ELSE 0 END), 0) AS total_in",
		"COALESCE(SUM(CASE WHEN t.direction = 'out' THEN t.quantity ELSE 0 END), 0) AS total_out",
		"COALESCE(SUM(CASE WHEN t.direction = 'in' THEN t.quantity ELSE -t.quantity END), 0) AS balance",
	).
		From("items i").
		LeftJoin("transactions t ON t.item_id = i.id").
		GroupBy("i.id", "i.name", "i.unit", "i.minimum_stock", "i.damaged", "i.unit_price").
		OrderBy("i.name")

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"i.name": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.StockBalanceRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select balance rows: %w", err)
	}
	return rows, nil
}

// GetTurnoverRows aggregates opening balance and period movement per item.
// The period is [FromDate, ToDate): movements dated before FromDate form the
// opening balance.
func (r *ReportRepo) GetTurnoverRows(ctx context.Context, filter reports.TurnoverFilter) ([]reports.TurnoverRow, error) {
	q := r.builder.Select("i.id AS item_id", "i.name", "i.unit").
		Column(squirrel.Alias(squirrel.Expr(
			"COALESCE(SUM(CASE WHEN t.date < ? THEN CASE WHEN t.direction = 'in' THEN t.quantity ELSE -t.quantity END ELSE 0 END), 0)",
			filter.FromDate,
		), "opening_balance")).
		Column(squirrel.Alias(squirrel.Expr(
			"COALESCE(SUM(CASE WHEN t.date >= ? AND t.date < ? AND t.direction = 'in' THEN t.quantity ELSE 0 END), 0)",
			filter.FromDate, filter.ToDate,
		), "receipt")).
		Column(squirrel.Alias(squirrel.Expr(
			"COALESCE(SUM(CASE WHEN t.date >= ? AND t.date < ? AND t.direction = 'out' THEN t.quantity ELSE 0 END), 0)",
			filter.FromDate, filter.ToDate,
		), "expense")).
		From("items i").
		LeftJoin("transactions t ON t.item_id = i.id").
		GroupBy("i.id", "i.name", "i.unit").
		OrderBy("i.name")

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"i.id": *filter.ItemID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.TurnoverRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select turnover rows: %w", err)
	}

	for i := range rows {
		rows[i].ClosingBalance = rows[i].OpeningBalance + rows[i].Receipt - rows[i].Expense
	}
	return rows, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
