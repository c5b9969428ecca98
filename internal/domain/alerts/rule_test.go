package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRule(t *testing.T) {
	rule := MustCompile(DefaultExpression)

	flagged, err := rule.Eval(Vars{Balance: 5, MinimumStock: 10})
	require.NoError(t, err)
	assert.True(t, flagged)

	flagged, err = rule.Eval(Vars{Balance: 10, MinimumStock: 10})
	require.NoError(t, err)
	assert.True(t, flagged, "balance at the threshold is low stock")

	flagged, err = rule.Eval(Vars{Balance: 11, MinimumStock: 10})
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestCustomRule(t *testing.T) {
	// Operators can fold damage into the alert condition.
	rule, err := Compile("balance - damaged <= minimum_stock")
	require.NoError(t, err)

	flagged, err := rule.Eval(Vars{Balance: 15, Damaged: 6, MinimumStock: 10})
	require.NoError(t, err)
	assert.True(t, flagged)

	flagged, err = rule.Eval(Vars{Balance: 15, Damaged: 2, MinimumStock: 10})
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	_, err := Compile("balance +")
	assert.Error(t, err, "syntax error")

	_, err = Compile("balance + minimum_stock")
	assert.Error(t, err, "non-boolean result")

	_, err = Compile("warehouse == 'main'")
	assert.Error(t, err, "unknown variable")
}

func TestExpression(t *testing.T) {
	rule := MustCompile("total_in > total_out")
	assert.Equal(t, "total_in > total_out", rule.Expression())
}
