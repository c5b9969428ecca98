package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/item"
)

// --- in-memory fakes ---

type memRepo struct {
	transactions map[id.ID]*Transaction
}

func newMemRepo() *memRepo {
	return &memRepo{transactions: make(map[id.ID]*Transaction)}
}

func (r *memRepo) SumQuantity(_ context.Context, itemID id.ID, direction Direction) (types.Quantity, error) {
	var total types.Quantity
	for _, t := range r.transactions {
		if t.ItemID == itemID && t.Direction == direction {
			total += t.Quantity
		}
	}
	return total, nil
}

func (r *memRepo) Insert(_ context.Context, t *Transaction) error {
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(_ context.Context, txID id.ID) (*Transaction, error) {
	t, ok := r.transactions[txID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", txID)
	}
	cp := *t
	return &cp, nil
}

func (r *memRepo) FindByIDForUpdate(ctx context.Context, txID id.ID) (*Transaction, error) {
	return r.FindByID(ctx, txID)
}

func (r *memRepo) FindReversalOf(_ context.Context, txID id.ID) (*Transaction, error) {
	for _, t := range r.transactions {
		if t.ReversalOf != nil && *t.ReversalOf == txID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("reversal record", txID)
}

func (r *memRepo) Update(_ context.Context, t *Transaction) error {
	if _, ok := r.transactions[t.ID]; !ok {
		return apperror.NewNotFound("transaction", t.ID)
	}
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, txID id.ID) error {
	if _, ok := r.transactions[txID]; !ok {
		return apperror.NewNotFound("transaction", txID)
	}
	delete(r.transactions, txID)
	return nil
}

func (r *memRepo) List(_ context.Context, filter ListFilter) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range r.transactions {
		if filter.ItemID != nil && t.ItemID != *filter.ItemID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepo) HasTransactions(_ context.Context, itemID id.ID) (bool, error) {
	for _, t := range r.transactions {
		if t.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

type memItems struct {
	items map[id.ID]*item.Item
}

func newMemItems(items ...*item.Item) *memItems {
	m := &memItems{items: make(map[id.ID]*item.Item)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *memItems) GetByID(_ context.Context, itemID id.ID) (*item.Item, error) {
	it, ok := m.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	cp := *it
	return &cp, nil
}

func (m *memItems) LockForUpdate(_ context.Context, _ ...id.ID) error {
	return nil
}

// noopTxManager runs the function directly; serialization is exercised
// against a real database, not here.
type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestEngine(items ...*item.Item) (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, newMemItems(items...), noopTxManager{}, nil), repo
}

func testItem(name string) *item.Item {
	it := item.New(name, "pcs", 10)
	it.UnitPrice = types.MustMoney("2.50")
	return it
}

func record(t *testing.T, engine *Service, itemID id.ID, dir Direction, qty int64) *Transaction {
	t.Helper()
	tx, err := engine.Record(context.Background(), RecordInput{
		ItemID:    itemID,
		Direction: dir,
		Quantity:  types.Quantity(qty),
	})
	require.NoError(t, err)
	return tx
}

// --- Record ---

func TestRecordReceiptIncreasesBalance(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	tx := record(t, engine, it.ID, DirectionIn, 100)

	assert.Equal(t, types.Quantity(100), tx.Balance)
	assert.Equal(t, DirectionIn, tx.Direction)
	assert.False(t, tx.Reversed)
	assert.Nil(t, tx.ReversalOf)
}

func TestRecordConsumptionDecreasesBalance(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	record(t, engine, it.ID, DirectionIn, 100)
	tx := record(t, engine, it.ID, DirectionOut, 30)

	assert.Equal(t, types.Quantity(70), tx.Balance)
}

func TestRecordConsumptionToExactlyZero(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	record(t, engine, it.ID, DirectionIn, 50)
	tx := record(t, engine, it.ID, DirectionOut, 50)

	assert.Equal(t, types.Quantity(0), tx.Balance)
}

func TestRecordConsumptionExceedingBalanceFails(t *testing.T) {
	it := testItem("paper")
	engine, repo := newTestEngine(it)

	record(t, engine, it.ID, DirectionIn, 100)
	record(t, engine, it.ID, DirectionOut, 30)

	_, err := engine.Record(context.Background(), RecordInput{
		ItemID:    it.ID,
		Direction: DirectionOut,
		Quantity:  1000,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Insufficient stock. Available: 70, Requested: 1000", appErr.Message)

	// The rejected movement must not reach the ledger.
	assert.Len(t, repo.transactions, 2)
}

func TestRecordConsumptionOneOverBalanceFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	record(t, engine, it.ID, DirectionIn, 10)

	_, err := engine.Record(context.Background(), RecordInput{
		ItemID:    it.ID,
		Direction: DirectionOut,
		Quantity:  11,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestRecordConsumptionFromEmptyItemFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	_, err := engine.Record(context.Background(), RecordInput{
		ItemID:    it.ID,
		Direction: DirectionOut,
		Quantity:  1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "Insufficient stock. Available: 0, Requested: 1", appErr.Message)
}

func TestRecordValidation(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	_, err := engine.Record(ctx, RecordInput{ItemID: it.ID, Direction: "sideways", Quantity: 1})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = engine.Record(ctx, RecordInput{ItemID: it.ID, Direction: DirectionIn, Quantity: 0})
	require.Error(t, err)
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = engine.Record(ctx, RecordInput{ItemID: it.ID, Direction: DirectionIn, Quantity: -5})
	require.Error(t, err)
}

func TestRecordUnknownItemFails(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Record(context.Background(), RecordInput{
		ItemID:    id.New(),
		Direction: DirectionIn,
		Quantity:  1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordDefaultsPriceFromItem(t *testing.T) {
	it := testItem("paper") // unit price 2.50
	engine, _ := newTestEngine(it)

	tx := record(t, engine, it.ID, DirectionIn, 4)

	assert.True(t, tx.UnitPrice.Equal(types.MustMoney("2.50")))
	assert.True(t, tx.TotalValue.Equal(types.MustMoney("10.00")))
}

// --- Edit ---

func TestEditQuantityRechecksBalance(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)
	record(t, engine, it.ID, DirectionOut, 80)

	// Shrinking the receipt below what was consumed must fail.
	_, err := engine.Edit(ctx, in.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  50,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Shrinking to exactly the consumed amount is allowed.
	edited, err := engine.Edit(ctx, in.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  80,
	})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), edited.Balance)
}

func TestEditQuantityDownWithNoConsumption(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	in := record(t, engine, it.ID, DirectionIn, 100)

	edited, err := engine.Edit(context.Background(), in.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  80,
	})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(80), edited.Balance)
	assert.Equal(t, types.Quantity(80), edited.Quantity)
}

func TestEditDirectionFlip(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	record(t, engine, it.ID, DirectionIn, 100)
	out := record(t, engine, it.ID, DirectionOut, 20)

	// Flipping an OUT 20 to an IN 20 swings the balance by +40.
	edited, err := engine.Edit(ctx, out.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(120), edited.Balance)
}

func TestEditCrossItemMove(t *testing.T) {
	a := testItem("paper")
	b := testItem("pens")
	engine, _ := newTestEngine(a, b)
	ctx := context.Background()

	record(t, engine, a.ID, DirectionIn, 50)
	record(t, engine, b.ID, DirectionIn, 30)
	out := record(t, engine, a.ID, DirectionOut, 10)

	// Move the consumption from item a to item b.
	edited, err := engine.Edit(ctx, out.ID, EditInput{
		ItemID:    b.ID,
		Direction: DirectionOut,
		Quantity:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, b.ID, edited.ItemID)
	assert.Equal(t, types.Quantity(20), edited.Balance)

	balA, err := engine.Balance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(50), balA)
}

func TestEditCrossItemMoveReceipt(t *testing.T) {
	a := testItem("paper")
	b := testItem("pens")
	engine, _ := newTestEngine(a, b)
	ctx := context.Background()

	in := record(t, engine, a.ID, DirectionIn, 100)

	// Move the whole receipt to an empty item b.
	edited, err := engine.Edit(ctx, in.ID, EditInput{
		ItemID:    b.ID,
		Direction: DirectionIn,
		Quantity:  100,
	})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(100), edited.Balance)

	balA, err := engine.Balance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), balA)
}

func TestEditCrossItemMoveInsufficientOnTarget(t *testing.T) {
	a := testItem("paper")
	b := testItem("pens")
	engine, _ := newTestEngine(a, b)
	ctx := context.Background()

	record(t, engine, a.ID, DirectionIn, 50)
	record(t, engine, b.ID, DirectionIn, 5)
	out := record(t, engine, a.ID, DirectionOut, 10)

	_, err := engine.Edit(ctx, out.ID, EditInput{
		ItemID:    b.ID,
		Direction: DirectionOut,
		Quantity:  10,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestEditCrossItemMoveGuardsSourceItem(t *testing.T) {
	a := testItem("paper")
	b := testItem("pens")
	engine, _ := newTestEngine(a, b)
	ctx := context.Background()

	in := record(t, engine, a.ID, DirectionIn, 50)
	record(t, engine, a.ID, DirectionOut, 40)
	record(t, engine, b.ID, DirectionIn, 100)

	// Moving the receipt away would leave item a at -40.
	_, err := engine.Edit(ctx, in.ID, EditInput{
		ItemID:    b.ID,
		Direction: DirectionIn,
		Quantity:  50,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestEditReversedTransactionFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)
	_, err := engine.Reverse(ctx, in.ID, "mistake", "tester")
	require.NoError(t, err)

	_, err = engine.Edit(ctx, in.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  50,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestEditReversalRecordFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	record(t, engine, it.ID, DirectionIn, 100)
	out := record(t, engine, it.ID, DirectionOut, 10)
	rev, err := engine.Reverse(ctx, out.ID, "wrong entry", "tester")
	require.NoError(t, err)

	_, err = engine.Edit(ctx, rev.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  10,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestEditUnknownTransactionFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	_, err := engine.Edit(context.Background(), id.New(), EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// --- Reverse ---

func TestReverseReceiptCreatesCounterRecord(t *testing.T) {
	it := testItem("paper")
	engine, repo := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)
	rev, err := engine.Reverse(ctx, in.ID, "wrong delivery", "tester")
	require.NoError(t, err)

	assert.Equal(t, DirectionOut, rev.Direction)
	assert.Equal(t, types.Quantity(100), rev.Quantity)
	require.NotNil(t, rev.ReversalOf)
	assert.Equal(t, in.ID, *rev.ReversalOf)
	assert.Equal(t, types.Quantity(0), rev.Balance)
	assert.Equal(t, "wrong delivery", rev.Notes)

	stored, err := repo.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.True(t, stored.Reversed)
}

func TestReverseConsumptionRestoresStock(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	record(t, engine, it.ID, DirectionIn, 100)
	out := record(t, engine, it.ID, DirectionOut, 40)

	rev, err := engine.Reverse(ctx, out.ID, "", "tester")
	require.NoError(t, err)
	assert.Equal(t, DirectionIn, rev.Direction)
	assert.Equal(t, types.Quantity(100), rev.Balance)
}

func TestReverseReceiptWithConsumedStockFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)
	record(t, engine, it.ID, DirectionOut, 60)

	// Undoing the IN 100 would need 100 on hand; only 40 remains.
	_, err := engine.Reverse(ctx, in.ID, "", "tester")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestReverseTwiceFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)
	_, err := engine.Reverse(ctx, in.ID, "", "tester")
	require.NoError(t, err)

	_, err = engine.Reverse(ctx, in.ID, "", "tester")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReverseReversalRecordFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	record(t, engine, it.ID, DirectionIn, 100)
	out := record(t, engine, it.ID, DirectionOut, 10)
	rev, err := engine.Reverse(ctx, out.ID, "", "tester")
	require.NoError(t, err)

	_, err = engine.Reverse(ctx, rev.ID, "", "tester")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

// --- UndoReverse ---

func TestUndoReverseRestoresOriginalEffect(t *testing.T) {
	it := testItem("paper")
	engine, repo := newTestEngine(it)
	ctx := context.Background()

	record(t, engine, it.ID, DirectionIn, 100)
	out := record(t, engine, it.ID, DirectionOut, 40)
	rev, err := engine.Reverse(ctx, out.ID, "", "tester")
	require.NoError(t, err)

	restored, err := engine.UndoReverse(ctx, out.ID)
	require.NoError(t, err)
	assert.False(t, restored.Reversed)
	assert.Equal(t, types.Quantity(60), restored.Balance)

	// The reversal record is gone.
	_, err = repo.FindByID(ctx, rev.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUndoReverseOfReceiptRestoresBalance(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)
	rev, err := engine.Reverse(ctx, in.ID, "", "tester")
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), rev.Balance)

	restored, err := engine.UndoReverse(ctx, in.ID)
	require.NoError(t, err)
	assert.False(t, restored.Reversed)
	assert.Equal(t, types.Quantity(100), restored.Balance)
}

// lockRacer models a caller that queued on the transaction row lock while a
// rival operation committed: the rival runs at the moment this caller
// acquires the lock, so the subsequent read sees the rival's commit.
type lockRacer struct {
	*memRepo
	rival func()
	fired bool
}

func (r *lockRacer) FindByIDForUpdate(ctx context.Context, txID id.ID) (*Transaction, error) {
	if !r.fired {
		r.fired = true
		r.rival()
	}
	return r.memRepo.FindByIDForUpdate(ctx, txID)
}

func TestConcurrentReverseSecondCallerFails(t *testing.T) {
	it := testItem("paper")
	repo := newMemRepo()
	items := newMemItems(it)
	first := NewService(repo, items, noopTxManager{}, nil)
	ctx := context.Background()

	in := record(t, first, it.ID, DirectionIn, 100)

	racer := &lockRacer{memRepo: repo, rival: func() {
		_, err := first.Reverse(ctx, in.ID, "stock count error", "alice")
		require.NoError(t, err)
	}}
	second := NewService(racer, items, noopTxManager{}, nil)

	_, err := second.Reverse(ctx, in.ID, "duplicate entry", "bob")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	// Exactly one live reversal, and the original's effect stays nullified
	// exactly once.
	reversals := 0
	for _, tr := range repo.transactions {
		if tr.IsReversal() {
			reversals++
		}
	}
	assert.Equal(t, 1, reversals)

	balance, err := first.Balance(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), balance)
}

func TestEditLosingRaceToReverseFails(t *testing.T) {
	it := testItem("paper")
	repo := newMemRepo()
	items := newMemItems(it)
	engine := NewService(repo, items, noopTxManager{}, nil)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)

	racer := &lockRacer{memRepo: repo, rival: func() {
		_, err := engine.Reverse(ctx, in.ID, "", "alice")
		require.NoError(t, err)
	}}
	editor := NewService(racer, items, noopTxManager{}, nil)

	_, err := editor.Edit(ctx, in.ID, EditInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  50,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	// The reversal pair is intact: original still 100, net effect zero.
	stored, err := engine.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.True(t, stored.Reversed)
	assert.Equal(t, types.Quantity(100), stored.Quantity)
	assert.Equal(t, types.Quantity(0), stored.Balance)
}

func TestConcurrentUndoReverseSecondCallerFails(t *testing.T) {
	it := testItem("paper")
	repo := newMemRepo()
	items := newMemItems(it)
	first := NewService(repo, items, noopTxManager{}, nil)
	ctx := context.Background()

	in := record(t, first, it.ID, DirectionIn, 100)
	_, err := first.Reverse(ctx, in.ID, "", "alice")
	require.NoError(t, err)

	racer := &lockRacer{memRepo: repo, rival: func() {
		_, err := first.UndoReverse(ctx, in.ID)
		require.NoError(t, err)
	}}
	second := NewService(racer, items, noopTxManager{}, nil)

	_, err = second.UndoReverse(ctx, in.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	balance, err := first.Balance(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(100), balance)
}

func TestUndoReverseNotReversedFails(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	in := record(t, engine, it.ID, DirectionIn, 100)
	_, err := engine.UndoReverse(context.Background(), in.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestUndoReverseBlockedWhenStockConsumed(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	record(t, engine, it.ID, DirectionIn, 100)
	out := record(t, engine, it.ID, DirectionOut, 40)

	// Reversing the OUT restores 40; consume most of it afterwards.
	_, err := engine.Reverse(ctx, out.ID, "", "tester")
	require.NoError(t, err)
	record(t, engine, it.ID, DirectionOut, 90)

	// Re-applying the OUT 40 would need 40 on hand; only 10 remains.
	_, err = engine.UndoReverse(ctx, out.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestUndoReverseThenReverseAgain(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)
	ctx := context.Background()

	in := record(t, engine, it.ID, DirectionIn, 100)

	_, err := engine.Reverse(ctx, in.ID, "first", "tester")
	require.NoError(t, err)
	_, err = engine.UndoReverse(ctx, in.ID)
	require.NoError(t, err)

	// After an undo the transaction can be reversed again.
	rev, err := engine.Reverse(ctx, in.ID, "second", "tester")
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), rev.Balance)
}

// --- read path ---

func TestGetAnnotatesBalance(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	in := record(t, engine, it.ID, DirectionIn, 100)
	record(t, engine, it.ID, DirectionOut, 30)

	got, err := engine.Get(context.Background(), in.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(70), got.Balance)
}

func TestBalanceUnknownItemFails(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Balance(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordKeepsBusinessDate(t *testing.T) {
	it := testItem("paper")
	engine, _ := newTestEngine(it)

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tx, err := engine.Record(context.Background(), RecordInput{
		ItemID:    it.ID,
		Direction: DirectionIn,
		Quantity:  5,
		Date:      date,
	})
	require.NoError(t, err)
	assert.Equal(t, date, tx.Date)
	assert.NotEqual(t, date, tx.CreatedAt)
}
