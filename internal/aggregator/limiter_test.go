package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetailBudgetCapsAttempts(t *testing.T) {
	budget := newDetailBudget(2)

	assert.True(t, budget.Take())
	assert.True(t, budget.Take())
	assert.False(t, budget.Take())
	assert.False(t, budget.Take())

	assert.Equal(t, 2, budget.Used())
	assert.True(t, budget.Exhausted())
}

func TestDetailBudgetZeroMeansNoDetails(t *testing.T) {
	budget := newDetailBudget(0)

	assert.False(t, budget.Take())
	assert.Equal(t, 0, budget.Used())
	assert.True(t, budget.Exhausted())
}

func TestDetailBudgetNegativeMeansUnlimited(t *testing.T) {
	budget := newDetailBudget(-1)

	for i := 0; i < 1000; i++ {
		assert.True(t, budget.Take())
	}
	assert.Equal(t, 1000, budget.Used())
	assert.False(t, budget.Exhausted())
}
