package item

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

type memRepo struct {
	items map[id.ID]*Item
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[id.ID]*Item)}
}

func (r *memRepo) Create(_ context.Context, it *Item) error {
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, it *Item) error {
	if _, ok := r.items[it.ID]; !ok {
		return apperror.NewNotFound("item", it.ID)
	}
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, itemID id.ID) error {
	if _, ok := r.items[itemID]; !ok {
		return apperror.NewNotFound("item", itemID)
	}
	delete(r.items, itemID)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, itemID id.ID) (*Item, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	cp := *it
	return &cp, nil
}

func (r *memRepo) FindByName(_ context.Context, name string) (*Item, error) {
	for _, it := range r.items {
		if it.Name == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("item", name)
}

func (r *memRepo) List(_ context.Context, filter ListFilter) ([]*Item, error) {
	var out []*Item
	for _, it := range r.items {
		if filter.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepo) Exists(_ context.Context, itemID id.ID) (bool, error) {
	_, ok := r.items[itemID]
	return ok, nil
}

func (r *memRepo) LockForUpdate(_ context.Context, _ ...id.ID) error {
	return nil
}

type fakeLedger struct {
	has bool
}

func (f fakeLedger) HasTransactions(_ context.Context, _ id.ID) (bool, error) {
	return f.has, nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(hasTransactions bool) (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, fakeLedger{has: hasTransactions}, noopTxManager{}), repo
}

func TestCreateItem(t *testing.T) {
	svc, repo := newTestService(false)
	ctx := context.Background()

	it := New("Copy paper", "ream", 20)
	require.NoError(t, svc.Create(ctx, it))
	assert.Len(t, repo.items, 1)
}

func TestCreateItemValidation(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	err := svc.Create(ctx, New("   ", "pcs", 5))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	err = svc.Create(ctx, New("Pens", "pcs", 0))
	require.Error(t, err, "minimum stock must be positive")
}

func TestCreateItemDuplicateName(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, New("Toner", "pcs", 2)))

	err := svc.Create(ctx, New("Toner", "pcs", 3))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestUpdateKeepsOwnName(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	it := New("Toner", "pcs", 2)
	require.NoError(t, svc.Create(ctx, it))

	it.MinimumStock = 4
	require.NoError(t, svc.Update(ctx, it), "updating without renaming is not a name conflict")
}

func TestDeleteItemWithHistoryFails(t *testing.T) {
	svc, repo := newTestService(true)
	ctx := context.Background()

	it := New("Toner", "pcs", 2)
	require.NoError(t, svc.Create(ctx, it))

	err := svc.Delete(ctx, it.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Len(t, repo.items, 1, "item must survive a rejected delete")
}

func TestDeleteItemWithoutHistory(t *testing.T) {
	svc, repo := newTestService(false)
	ctx := context.Background()

	it := New("Toner", "pcs", 2)
	require.NoError(t, svc.Create(ctx, it))
	require.NoError(t, svc.Delete(ctx, it.ID))
	assert.Empty(t, repo.items)
}

func TestDeleteUnknownItemFails(t *testing.T) {
	svc, _ := newTestService(false)

	err := svc.Delete(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordDamage(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	it := New("Desk lamp", "pcs", 3)
	require.NoError(t, svc.Create(ctx, it))

	updated, err := svc.RecordDamage(ctx, it.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Damaged.Int64())

	updated, err = svc.RecordDamage(ctx, it.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Damaged.Int64(), "damage accumulates")
}

func TestRecordDamageRejectsNonPositive(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	it := New("Desk lamp", "pcs", 3)
	require.NoError(t, svc.Create(ctx, it))

	_, err := svc.RecordDamage(ctx, it.ID, 0)
	require.Error(t, err)

	_, err = svc.RecordDamage(ctx, it.ID, -1)
	require.Error(t, err)
}
