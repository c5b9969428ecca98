package supplier

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/id"
	"stockbook/pkg/logger"
)

// Service provides CRUD over the supplier catalog.
type Service struct {
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	logger.Info(ctx, "supplier created", "id", sup.ID, "name", sup.Name)
	return nil
}

func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Supplier, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	sup.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sup); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	if _, err := s.repo.GetByID(ctx, supplierID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, supplierID)
}
