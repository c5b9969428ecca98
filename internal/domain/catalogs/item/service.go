package item

import (
	"context"
	"fmt"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/pkg/logger"
)

// Service provides business logic for the item catalog.
type Service struct {
	repo      Repository
	ledger    LedgerChecker
	txManager tx.Manager
}

// NewService creates a new item service.
func NewService(repo Repository, ledger LedgerChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		txManager: txManager,
	}
}

// Create validates and stores a new item. Name must be unique.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkNameFree(ctx, it.Name, it.ID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	logger.Info(ctx, "item created", "id", it.ID, "name", it.Name)
	return nil
}

// GetByID retrieves an item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// List retrieves items matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.List(ctx, filter)
}

// Update validates and persists item changes.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkNameFree(ctx, it.Name, it.ID); err != nil {
		return err
	}

	it.Touch()
	if err := s.repo.Update(ctx, it); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	logger.Info(ctx, "item updated", "id", it.ID, "name", it.Name)
	return nil
}

// Delete removes an item. Fails with CONFLICT while the item has ledger
// history; cascading deletion is an external policy this core never applies.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, itemID); err != nil {
			return err
		}

		has, err := s.ledger.HasTransactions(ctx, itemID)
		if err != nil {
			return fmt.Errorf("check transactions: %w", err)
		}
		if has {
			return apperror.NewConflict("item has recorded transactions and cannot be deleted").
				WithDetail("item_id", itemID)
		}

		if err := s.repo.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}

		logger.Info(ctx, "item deleted", "id", itemID)
		return nil
	})
}

// RecordDamage increments the damaged counter by qty.
// Damage is bookkeeping on the item itself; it does not post a ledger
// movement, so the stock balance is unaffected.
func (s *Service) RecordDamage(ctx context.Context, itemID id.ID, qty types.Quantity) (*Item, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("damaged quantity must be positive").
			WithDetail("quantity", qty)
	}

	var it *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockForUpdate(ctx, itemID); err != nil {
			return err
		}

		var err error
		it, err = s.repo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}

		it.Damaged += qty
		it.Touch()
		return s.repo.Update(ctx, it)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "damage recorded", "item_id", itemID, "quantity", qty, "damaged_total", it.Damaged)
	return it, nil
}

func (s *Service) checkNameFree(ctx context.Context, name string, excludeID id.ID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check name: %w", err)
	}
	if existing.ID != excludeID {
		return apperror.NewDuplicate("item", "name", name)
	}
	return nil
}
