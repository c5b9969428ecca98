package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

func TestCalculatorBalance(t *testing.T) {
	repo := newMemRepo()
	calc := NewCalculator(repo)
	ctx := context.Background()
	itemID := id.New()

	balance, err := calc.Balance(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), balance, "item with no movements has zero balance")

	require.NoError(t, repo.Insert(ctx, &Transaction{ID: id.New(), ItemID: itemID, Direction: DirectionIn, Quantity: 100}))
	require.NoError(t, repo.Insert(ctx, &Transaction{ID: id.New(), ItemID: itemID, Direction: DirectionIn, Quantity: 25}))
	require.NoError(t, repo.Insert(ctx, &Transaction{ID: id.New(), ItemID: itemID, Direction: DirectionOut, Quantity: 40}))

	// Movements of other items never leak in.
	require.NoError(t, repo.Insert(ctx, &Transaction{ID: id.New(), ItemID: id.New(), Direction: DirectionIn, Quantity: 999}))

	balance, err = calc.Balance(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(85), balance)
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(5, 10))
	assert.True(t, IsLowStock(10, 10), "balance equal to minimum is low")
	assert.False(t, IsLowStock(11, 10))
	assert.True(t, IsLowStock(0, 1))
}

func TestProjectedAfterEdit(t *testing.T) {
	// IN 100 edited down to IN 80 with current balance 20: 20 - 100 + 80.
	assert.Equal(t, types.Quantity(0), ProjectedAfterEdit(20, 100, 80))
	// OUT 30 (-30) edited to OUT 50 (-50) with balance 70: 70 + 30 - 50.
	assert.Equal(t, types.Quantity(50), ProjectedAfterEdit(70, -30, -50))
	// Direction flip: OUT 20 (-20) to IN 20 (+20) swings by 40.
	assert.Equal(t, types.Quantity(120), ProjectedAfterEdit(80, -20, 20))
}

func TestProjectedAfterRemoval(t *testing.T) {
	assert.Equal(t, types.Quantity(-40), ProjectedAfterRemoval(60, 100))
	assert.Equal(t, types.Quantity(90), ProjectedAfterRemoval(60, -30))
}
