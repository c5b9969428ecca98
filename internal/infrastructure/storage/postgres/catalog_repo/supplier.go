package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/infrastructure/storage/postgres"
)

const suppliersTable = "suppliers"

var supplierColumns = []string{
	"id", "name", "contact_person", "phone", "email", "address",
	"created_at", "updated_at",
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new supplier.
func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Insert(suppliersTable).
		Columns(supplierColumns...).
		Values(s.ID, s.Name, s.ContactPerson, s.Phone, s.Email, s.Address,
			s.CreatedAt, s.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// Update persists supplier changes.
func (r *SupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Update(suppliersTable).
		Set("name", s.Name).
		Set("contact_person", s.ContactPerson).
		Set("phone", s.Phone).
		Set("email", s.Email).
		Set("address", s.Address).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", s.ID)
	}
	return nil
}

// Delete removes a supplier row.
func (r *SupplierRepo) Delete(ctx context.Context, supplierID id.ID) error {
	q := r.builder.Delete(suppliersTable).Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID)
	}
	return nil
}

// GetByID retrieves a supplier.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).
		From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", supplierID)
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// List retrieves suppliers ordered by name.
func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).
		From(suppliersTable).
		OrderBy("name")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var suppliers []*supplier.Supplier
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &suppliers, sql, args...); err != nil {
		return nil, fmt.Errorf("select suppliers: %w", err)
	}
	return suppliers, nil
}

// Exists reports whether the supplier id resolves.
func (r *SupplierRepo) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1)", supplierID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check supplier exists: %w", err)
	}
	return exists, nil
}

// Ensure interface compliance.
var _ supplier.Repository = (*SupplierRepo)(nil)
