// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/infrastructure/storage/postgres"
)

const itemsTable = "items"

var itemColumns = []string{
	"id", "name", "unit", "minimum_stock", "damaged", "unit_price",
	"created_at", "updated_at",
}

// ItemRepo implements item.Repository and the engine's ItemRegistry locking.
type ItemRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new item.
func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(it.ID, it.Name, it.Unit, it.MinimumStock, it.Damaged, it.UnitPrice,
			it.CreatedAt, it.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Update persists item changes.
func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	q := r.builder.Update(itemsTable).
		Set("name", it.Name).
		Set("unit", it.Unit).
		Set("minimum_stock", it.MinimumStock).
		Set("damaged", it.Damaged).
		Set("unit_price", it.UnitPrice).
		Set("updated_at", it.UpdatedAt).
		Where(squirrel.Eq{"id": it.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", it.ID)
	}
	return nil
}

// Delete removes an item row.
func (r *ItemRepo) Delete(ctx context.Context, itemID id.ID) error {
	q := r.builder.Delete(itemsTable).Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID)
	}
	return nil
}

// GetByID retrieves an item.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it item.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", itemID)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// FindByName retrieves an item by exact name.
func (r *ItemRepo) FindByName(ctx context.Context, name string) (*item.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"name": name}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it item.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", name)
		}
		return nil, fmt.Errorf("find item by name: %w", err)
	}
	return &it, nil
}

// List retrieves items ordered by name.
func (r *ItemRepo) List(ctx context.Context, filter item.ListFilter) ([]*item.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		OrderBy("name")

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
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

	var items []*item.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// Exists reports whether the item id resolves.
func (r *ItemRepo) Exists(ctx context.Context, itemID id.ID) (bool, error) {
	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)", itemID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item exists: %w", err)
	}
	return exists, nil
}

// LockForUpdate takes row locks on the given items in sorted-ID order, so
// two operations locking the same pair can never deadlock. Must run inside
// a transaction; locking a missing id is a no-op (resolution errors belong
// to GetByID).
func (r *ItemRepo) LockForUpdate(ctx context.Context, itemIDs ...id.ID) error {
	if len(itemIDs) == 0 {
		return nil
	}

	sorted := make([]id.ID, len(itemIDs))
	copy(sorted, itemIDs)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	querier := r.txManager.GetQuerier(ctx)
	for _, itemID := range sorted {
		rows, err := querier.Query(ctx, "SELECT id FROM items WHERE id = $1 FOR UPDATE", itemID)
		if err != nil {
			return fmt.Errorf("lock item %s: %w", itemID, err)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("lock item %s: %w", itemID, err)
		}
	}
	return nil
}

// Ensure interface compliance.
var _ item.Repository = (*ItemRepo)(nil)
