package party

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("SUPPLIER")
	require.NoError(t, err)
	assert.Equal(t, KindSupplier, k)

	_, err = ParseKind("EMPLOYEE")
	require.Error(t, err)
}

func TestNewParty(t *testing.T) {
	t.Run("starts with opening balance as current", func(t *testing.T) {
		p, err := NewParty(KindCustomer, "Acme Ltd", decimal.NewFromInt(250))
		require.NoError(t, err)
		assert.True(t, p.CurrentBalance.Equal(decimal.NewFromInt(250)))
		for _, c := range Categories() {
			assert.True(t, p.SubBalances[c].IsZero(), string(c))
		}
	})

	t.Run("rejects invalid kind and empty name", func(t *testing.T) {
		_, err := NewParty("VENDOR", "X", decimal.Zero)
		require.Error(t, err)
		_, err = NewParty(KindCustomer, "", decimal.Zero)
		require.Error(t, err)
	})
}

func TestApplyBreakdown(t *testing.T) {
	p, err := NewParty(KindCustomer, "Acme Ltd", decimal.NewFromInt(50))
	require.NoError(t, err)
	initialVersion := p.Version

	b := Breakdown{
		Opening: decimal.NewFromInt(185),
		SubBalances: map[Category]decimal.Decimal{
			CategorySales:      decimal.NewFromInt(1000),
			CategoryPaymentsIn: decimal.NewFromInt(400),
		},
		CurrentBalance: decimal.NewFromInt(600),
		Approximate:    true,
		ComputedAt:     time.Now(),
	}
	p.ApplyBreakdown(b)

	assert.True(t, p.CurrentBalance.Equal(decimal.NewFromInt(600)))
	assert.True(t, p.SubBalances[CategorySales].Equal(decimal.NewFromInt(1000)))
	// absent categories are normalized to zero
	assert.True(t, p.SubBalances[CategoryExpenses].IsZero())
	assert.True(t, p.Approximate)
	assert.NotNil(t, p.BalanceAsOf)
	assert.Greater(t, p.Version, initialVersion)
	// the opening balance feeds the computation and is never written back
	assert.True(t, p.OpeningBalance.Equal(decimal.NewFromInt(50)))

	view := p.BreakdownView()
	assert.True(t, view.CurrentBalance.Equal(decimal.NewFromInt(600)))
	assert.True(t, view.Get(CategoryPaymentsIn).Equal(decimal.NewFromInt(400)))
}
