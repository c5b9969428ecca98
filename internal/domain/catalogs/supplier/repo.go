package supplier

import (
	"context"

	"stockbook/internal/core/id"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, supplierID id.ID) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	List(ctx context.Context, limit, offset int) ([]*Supplier, error)
	Exists(ctx context.Context, supplierID id.ID) (bool, error)
}
