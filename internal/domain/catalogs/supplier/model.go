// Package supplier provides the supplier catalog. Transactions reference
// suppliers by id only; the ledger core never depends on this package.
package supplier

import (
	"context"
	"strings"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

// Supplier represents a goods supplier.
type Supplier struct {
	ID            id.ID     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	ContactPerson string    `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	Email         string    `db:"email" json:"email,omitempty"`
	Address       string    `db:"address" json:"address,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a Supplier with a generated ID.
func New(name string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks supplier invariants.
func (s *Supplier) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("supplier name must not be blank").
			WithDetail("field", "name")
	}
	return nil
}
