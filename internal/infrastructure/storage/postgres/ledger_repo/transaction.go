// Package ledger_repo provides the PostgreSQL implementation of the ledger
// store. Every stock movement is one immutable-by-default row in the
// transactions table; balances are never stored, only summed.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/storage/postgres"
)

const transactionsTable = "transactions"

var transactionColumns = []string{
	"id", "item_id", "direction", "quantity", "date",
	"reference", "notes", "recorded_by", "supplier_id",
	"unit_price", "total_value", "reversed", "reversal_of",
	"created_at", "updated_at",
}

// TransactionRepo implements ledger.Repository and item.LedgerChecker.
type TransactionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(txManager *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SumQuantity returns total quantity moved for an item in one direction.
// Items with no movements sum to 0.
func (r *TransactionRepo) SumQuantity(ctx context.Context, itemID id.ID, direction ledger.Direction) (types.Quantity, error) {
	var total types.Quantity
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity), 0) FROM transactions WHERE item_id = $1 AND direction = $2",
		itemID, direction,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum quantity: %w", err)
	}
	return total, nil
}

// Insert stores a new transaction record.
func (r *TransactionRepo) Insert(ctx context.Context, t *ledger.Transaction) error {
	q := r.builder.Insert(transactionsTable).
		Columns(transactionColumns...).
		Values(t.ID, t.ItemID, t.Direction, t.Quantity, t.Date,
			t.Reference, t.Notes, t.RecordedBy, t.SupplierID,
			t.UnitPrice, t.TotalValue, t.Reversed, t.ReversalOf,
			t.CreatedAt, t.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// FindByID retrieves a transaction.
func (r *TransactionRepo) FindByID(ctx context.Context, txID id.ID) (*ledger.Transaction, error) {
	q := r.builder.Select(transactionColumns...).
		From(transactionsTable).
		Where(squirrel.Eq{"id": txID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t ledger.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", txID)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// FindByIDForUpdate retrieves a transaction and holds its row lock until the
// enclosing transaction ends. Concurrent engine operations on the same
// record queue on this lock and re-read committed state once they get it.
func (r *TransactionRepo) FindByIDForUpdate(ctx context.Context, txID id.ID) (*ledger.Transaction, error) {
	q := r.builder.Select(transactionColumns...).
		From(transactionsTable).
		Where(squirrel.Eq{"id": txID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t ledger.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", txID)
		}
		return nil, fmt.Errorf("get transaction for update: %w", err)
	}
	return &t, nil
}

// FindReversalOf retrieves the reversal record back-linked to txID.
func (r *TransactionRepo) FindReversalOf(ctx context.Context, txID id.ID) (*ledger.Transaction, error) {
	q := r.builder.Select(transactionColumns...).
		From(transactionsTable).
		Where(squirrel.Eq{"reversal_of": txID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t ledger.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("reversal record", txID)
		}
		return nil, fmt.Errorf("get reversal record: %w", err)
	}
	return &t, nil
}

func (r *TransactionRepo) buildUpdateQuery(t *ledger.Transaction) squirrel.UpdateBuilder {
	return r.builder.Update(transactionsTable).
		Set("item_id", t.ItemID).
		Set("direction", t.Direction).
		Set("quantity", t.Quantity).
		Set("date", t.Date).
		Set("reference", t.Reference).
		Set("notes", t.Notes).
		Set("recorded_by", t.RecordedBy).
		Set("supplier_id", t.SupplierID).
		Set("unit_price", t.UnitPrice).
		Set("total_value", t.TotalValue).
		Set("reversed", t.Reversed).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID})
}

// Update persists in-place transaction changes.
func (r *TransactionRepo) Update(ctx context.Context, t *ledger.Transaction) error {
	sql, args, err := r.buildUpdateQuery(t).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("transaction", t.ID)
	}
	return nil
}

// Delete removes a transaction row.
func (r *TransactionRepo) Delete(ctx context.Context, txID id.ID) error {
	q := r.builder.Delete(transactionsTable).Where(squirrel.Eq{"id": txID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("transaction", txID)
	}
	return nil
}

func (r *TransactionRepo) buildListQuery(filter ledger.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(transactionColumns...).
		From(transactionsTable).
		OrderBy("date DESC", "created_at DESC")

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *filter.Direction})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// List retrieves movement history, newest business date first.
func (r *TransactionRepo) List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	sql, args, err := r.buildListQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transactions []*ledger.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &transactions, sql, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return transactions, nil
}

// HasTransactions reports whether an item has any ledger history.
func (r *TransactionRepo) HasTransactions(ctx context.Context, itemID id.ID) (bool, error) {
	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM transactions WHERE item_id = $1)", itemID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item transactions: %w", err)
	}
	return exists, nil
}

// Ensure interface compliance.
var (
	_ ledger.Repository  = (*TransactionRepo)(nil)
	_ item.LedgerChecker = (*TransactionRepo)(nil)
)
