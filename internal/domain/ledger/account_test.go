package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("creates account with matching type prefix", func(t *testing.T) {
		a, err := NewAccount("1250", "Employee Advances", AccountTypeAsset)
		require.NoError(t, err)
		assert.Equal(t, "1250", a.Code)
		assert.True(t, a.Active)
	})

	t.Run("rejects type that contradicts the code prefix", func(t *testing.T) {
		_, err := NewAccount("1250", "Employee Advances", AccountTypeRevenue)
		require.Error(t, err)
	})

	t.Run("rejects code without a known prefix", func(t *testing.T) {
		_, err := NewAccount("9999", "Mystery", AccountTypeAsset)
		require.Error(t, err)
	})

	t.Run("rejects empty code or name", func(t *testing.T) {
		_, err := NewAccount("", "X", AccountTypeAsset)
		require.Error(t, err)
		_, err = NewAccount("1100", "", AccountTypeAsset)
		require.Error(t, err)
	})
}

func TestTypeForCode(t *testing.T) {
	cases := map[string]AccountType{
		"1100": AccountTypeAsset,
		"2110": AccountTypeLiability,
		"3100": AccountTypeEquity,
		"4100": AccountTypeRevenue,
		"5210": AccountTypeExpense,
	}
	for code, want := range cases {
		got, ok := TypeForCode(code)
		require.True(t, ok, code)
		assert.Equal(t, want, got)
	}

	_, ok := TypeForCode("")
	assert.False(t, ok)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.NotEmpty(t, chart)

	codes := make(map[string]bool, len(chart))
	for _, a := range chart {
		assert.True(t, a.Active)
		derived, ok := TypeForCode(a.Code)
		require.True(t, ok)
		assert.Equal(t, derived, a.Type)
		assert.False(t, codes[a.Code], "duplicate code %s", a.Code)
		codes[a.Code] = true
	}

	// accounts the posting engine hardwires must exist
	for _, code := range []string{
		CodeCash, CodeBank, CodeAccountsReceivable, CodeChecksReceivable,
		CodeInventory, CodeAccountsPayable, CodeChecksPayable, CodeOpeningEquity,
		CodeRevenue, CodeServiceRevenue, CodeCOGS,
	} {
		assert.True(t, codes[code], "missing %s", code)
	}
}
