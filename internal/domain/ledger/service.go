package ledger

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/pkg/logger"
)

// ItemRegistry is the slice of the item catalog the engine needs: resolve
// items and take row locks so same-item operations serialize.
type ItemRegistry interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
	LockForUpdate(ctx context.Context, itemIDs ...id.ID) error
}

// AuditLogger records ledger mutations for the audit trail. Optional;
// a nil logger disables auditing (tests).
type AuditLogger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Audit actions emitted by the engine.
const (
	AuditActionRecord      = "record"
	AuditActionEdit        = "edit"
	AuditActionReverse     = "reverse"
	AuditActionUndoReverse = "undo_reverse"

	// AuditEntityTransaction is the entity type the engine writes audit
	// entries under; history reads query by the same value.
	AuditEntityTransaction = "transaction"
)

// Service is the transaction engine. Each operation runs as one storage
// transaction: the affected item row(s) are locked before the balance read,
// so the insufficient-stock check and the commit are atomic per item.
// Operations on an existing record additionally lock its transaction row
// before the item rows; every operation takes locks in that same order.
type Service struct {
	repo      Repository
	items     ItemRegistry
	calc      *Calculator
	txManager tx.Manager
	audit     AuditLogger
}

// NewService creates the transaction engine.
func NewService(repo Repository, items ItemRegistry, txManager tx.Manager, audit AuditLogger) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		calc:      NewCalculator(repo),
		txManager: txManager,
		audit:     audit,
	}
}

// Calculator exposes the balance calculator backed by the same store.
func (s *Service) Calculator() *Calculator {
	return s.calc
}

// RecordInput carries a new movement.
type RecordInput struct {
	ItemID     id.ID
	Direction  Direction
	Quantity   types.Quantity
	Date       time.Time
	Reference  string
	Notes      string
	RecordedBy string
	SupplierID *id.ID
	// UnitPrice values the movement; zero falls back to the item's price
	UnitPrice types.Money
}

// EditInput carries the full replacement content for an existing movement.
type EditInput struct {
	ItemID     id.ID
	Direction  Direction
	Quantity   types.Quantity
	Date       time.Time
	Reference  string
	Notes      string
	RecordedBy string
	SupplierID *id.ID
	UnitPrice  types.Money
}

// Record validates and commits a new movement, returning it annotated with
// the item balance after the commit.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Transaction, error) {
	t := &Transaction{
		ID:         id.New(),
		ItemID:     in.ItemID,
		Direction:  in.Direction,
		Quantity:   in.Quantity,
		Date:       in.Date,
		Reference:  in.Reference,
		Notes:      in.Notes,
		RecordedBy: in.RecordedBy,
		SupplierID: in.SupplierID,
		UnitPrice:  in.UnitPrice,
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.items.LockForUpdate(ctx, t.ItemID); err != nil {
			return err
		}
		it, err := s.items.GetByID(ctx, t.ItemID)
		if err != nil {
			return err
		}

		balance, err := s.calc.Balance(ctx, t.ItemID)
		if err != nil {
			return err
		}
		if t.Direction == DirectionOut && t.Quantity > balance {
			return apperror.NewInsufficientStock(t.ItemID.String(), balance, t.Quantity)
		}

		if t.UnitPrice.IsZero() {
			t.UnitPrice = it.UnitPrice
		}
		t.TotalValue = types.TotalValue(t.Quantity, t.UnitPrice)
		now := time.Now().UTC()
		t.CreatedAt = now
		t.UpdatedAt = now

		if err := s.repo.Insert(ctx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		t.Balance = balance + t.SignedEffect()

		return s.logAudit(ctx, t.ID, AuditActionRecord, map[string]any{
			"item_id":   t.ItemID,
			"direction": t.Direction,
			"quantity":  t.Quantity,
			"balance":   t.Balance,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement recorded",
		"transaction_id", t.ID,
		"item_id", t.ItemID,
		"direction", t.Direction,
		"quantity", t.Quantity,
		"balance", t.Balance,
	)
	return t, nil
}

// Edit re-validates and mutates an existing movement in place. The check is
// a net-effect projection: undo the old posting, apply the new one, and only
// commit when no involved item would go negative. Transactions with a live
// reversal, and reversal records themselves, cannot be edited.
func (s *Service) Edit(ctx context.Context, txID id.ID, in EditInput) (*Transaction, error) {
	if !in.Direction.Valid() {
		return nil, apperror.NewValidation("direction must be 'in' or 'out'").
			WithDetail("direction", string(in.Direction))
	}
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", in.Quantity)
	}

	var t *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Lock the transaction row first: a concurrent Reverse or Edit of
		// the same record blocks here, and the state read below sees what
		// it committed.
		var err error
		t, err = s.repo.FindByIDForUpdate(ctx, txID)
		if err != nil {
			return err
		}
		if t.Reversed {
			return apperror.NewInvalidState("cannot edit a reversed transaction; undo the reversal first").
				WithDetail("transaction_id", txID)
		}
		if t.IsReversal() {
			return apperror.NewInvalidState("cannot edit a reversal record").
				WithDetail("transaction_id", txID)
		}

		oldItemID := t.ItemID
		oldEffect := t.SignedEffect()
		crossItem := oldItemID != in.ItemID

		if crossItem {
			if err := s.items.LockForUpdate(ctx, oldItemID, in.ItemID); err != nil {
				return err
			}
		} else {
			if err := s.items.LockForUpdate(ctx, oldItemID); err != nil {
				return err
			}
		}

		newItem, err := s.items.GetByID(ctx, in.ItemID)
		if err != nil {
			return err
		}

		newEffect := in.Quantity
		if in.Direction == DirectionOut {
			newEffect = in.Quantity.Neg()
		}

		if crossItem {
			// Old item must survive losing this posting.
			oldBalance, err := s.calc.Balance(ctx, oldItemID)
			if err != nil {
				return err
			}
			if ProjectedAfterRemoval(oldBalance, oldEffect).IsNegative() {
				return apperror.NewInsufficientStock(oldItemID.String(), oldBalance, t.Quantity)
			}

			// New item sees the posting as a fresh record; only OUT has a ceiling.
			newBalance, err := s.calc.Balance(ctx, in.ItemID)
			if err != nil {
				return err
			}
			if in.Direction == DirectionOut && in.Quantity > newBalance {
				return apperror.NewInsufficientStock(in.ItemID.String(), newBalance, in.Quantity)
			}
		} else {
			balance, err := s.calc.Balance(ctx, oldItemID)
			if err != nil {
				return err
			}
			if ProjectedAfterEdit(balance, oldEffect, newEffect).IsNegative() {
				return apperror.NewInsufficientStock(oldItemID.String(), ProjectedAfterRemoval(balance, oldEffect), in.Quantity)
			}
		}

		oldSnapshot := map[string]any{
			"item_id":   t.ItemID,
			"direction": t.Direction,
			"quantity":  t.Quantity,
		}

		t.ItemID = in.ItemID
		t.Direction = in.Direction
		t.Quantity = in.Quantity
		if !in.Date.IsZero() {
			t.Date = in.Date
		}
		t.Reference = in.Reference
		t.Notes = in.Notes
		if in.RecordedBy != "" {
			t.RecordedBy = in.RecordedBy
		}
		t.SupplierID = in.SupplierID
		if !in.UnitPrice.IsZero() {
			t.UnitPrice = in.UnitPrice
		} else if t.UnitPrice.IsZero() {
			t.UnitPrice = newItem.UnitPrice
		}
		t.TotalValue = types.TotalValue(t.Quantity, t.UnitPrice)
		t.Touch()

		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		balance, err := s.calc.Balance(ctx, t.ItemID)
		if err != nil {
			return err
		}
		t.Balance = balance

		return s.logAudit(ctx, t.ID, AuditActionEdit, map[string]any{
			"old": oldSnapshot,
			"new": map[string]any{
				"item_id":   t.ItemID,
				"direction": t.Direction,
				"quantity":  t.Quantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement edited",
		"transaction_id", t.ID,
		"item_id", t.ItemID,
		"direction", t.Direction,
		"quantity", t.Quantity,
		"balance", t.Balance,
	)
	return t, nil
}

// Reverse nullifies a movement by committing a counter-record with the
// opposite direction and identical quantity, then marks the original
// reversed. Reversing an IN is an OUT posting and is subject to the same
// insufficient-stock rule as Record.
func (s *Service) Reverse(ctx context.Context, txID id.ID, reason, reversedBy string) (*Transaction, error) {
	var rev *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Row-lock the original before checking its state. Two concurrent
		// Reverse calls serialize here; the loser re-reads reversed=true
		// and fails instead of posting a second reversal.
		orig, err := s.repo.FindByIDForUpdate(ctx, txID)
		if err != nil {
			return err
		}
		if orig.Reversed {
			return apperror.NewInvalidState("transaction is already reversed").
				WithDetail("transaction_id", txID)
		}
		if orig.IsReversal() {
			return apperror.NewInvalidState("cannot reverse a reversal record; undo the reversal instead").
				WithDetail("transaction_id", txID)
		}

		if err := s.items.LockForUpdate(ctx, orig.ItemID); err != nil {
			return err
		}

		balance, err := s.calc.Balance(ctx, orig.ItemID)
		if err != nil {
			return err
		}

		direction := orig.Direction.Opposite()
		if direction == DirectionOut && orig.Quantity > balance {
			return apperror.NewInsufficientStock(orig.ItemID.String(), balance, orig.Quantity)
		}

		now := time.Now().UTC()
		origID := orig.ID
		rev = &Transaction{
			ID:         id.New(),
			ItemID:     orig.ItemID,
			Direction:  direction,
			Quantity:   orig.Quantity,
			Date:       now,
			Reference:  orig.Reference,
			Notes:      reason,
			RecordedBy: reversedBy,
			SupplierID: orig.SupplierID,
			UnitPrice:  orig.UnitPrice,
			TotalValue: orig.TotalValue,
			ReversalOf: &origID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.repo.Insert(ctx, rev); err != nil {
			return fmt.Errorf("insert reversal: %w", err)
		}

		orig.Reversed = true
		orig.Touch()
		if err := s.repo.Update(ctx, orig); err != nil {
			return fmt.Errorf("mark reversed: %w", err)
		}

		rev.Balance = balance + rev.SignedEffect()

		return s.logAudit(ctx, orig.ID, AuditActionReverse, map[string]any{
			"reversal_id": rev.ID,
			"reason":      reason,
			"balance":     rev.Balance,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement reversed",
		"transaction_id", txID,
		"reversal_id", rev.ID,
		"balance", rev.Balance,
	)
	return rev, nil
}

// UndoReverse deletes a transaction's reversal record and clears its
// reversed flag, restoring the original's effect. This is the only path
// that removes a committed record. Removing an IN reversal subtracts stock
// and must not drive the balance negative.
func (s *Service) UndoReverse(ctx context.Context, txID id.ID) (*Transaction, error) {
	var orig *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		orig, err = s.repo.FindByIDForUpdate(ctx, txID)
		if err != nil {
			return err
		}
		if !orig.Reversed {
			return apperror.NewInvalidState("transaction is not reversed").
				WithDetail("transaction_id", txID)
		}

		rev, err := s.repo.FindReversalOf(ctx, orig.ID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInvalidState("no reversal record found for transaction").
					WithDetail("transaction_id", txID)
			}
			return err
		}

		if err := s.items.LockForUpdate(ctx, orig.ItemID); err != nil {
			return err
		}

		balance, err := s.calc.Balance(ctx, orig.ItemID)
		if err != nil {
			return err
		}
		if rev.Direction == DirectionIn {
			if ProjectedAfterRemoval(balance, rev.SignedEffect()).IsNegative() {
				return apperror.NewInsufficientStock(orig.ItemID.String(), balance, rev.Quantity)
			}
		}

		if err := s.repo.Delete(ctx, rev.ID); err != nil {
			return fmt.Errorf("delete reversal: %w", err)
		}

		orig.Reversed = false
		orig.Touch()
		if err := s.repo.Update(ctx, orig); err != nil {
			return fmt.Errorf("clear reversed flag: %w", err)
		}

		orig.Balance = ProjectedAfterRemoval(balance, rev.SignedEffect())

		return s.logAudit(ctx, orig.ID, AuditActionUndoReverse, map[string]any{
			"deleted_reversal_id": rev.ID,
			"balance":             orig.Balance,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reversal undone",
		"transaction_id", orig.ID,
		"balance", orig.Balance,
	)
	return orig, nil
}

// Get retrieves a transaction annotated with its item's current balance.
func (s *Service) Get(ctx context.Context, txID id.ID) (*Transaction, error) {
	t, err := s.repo.FindByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	balance, err := s.calc.Balance(ctx, t.ItemID)
	if err != nil {
		return nil, err
	}
	t.Balance = balance
	return t, nil
}

// List retrieves movement history.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.List(ctx, filter)
}

// Balance returns the current derived balance for an item, checking the
// item exists first.
func (s *Service) Balance(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return 0, err
	}
	return s.calc.Balance(ctx, itemID)
}

func (s *Service) logAudit(ctx context.Context, entityID id.ID, action string, changes map[string]any) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.LogChange(ctx, AuditEntityTransaction, entityID, action, changes); err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}
