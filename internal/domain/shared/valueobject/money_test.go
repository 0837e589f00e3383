package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	t.Run("accepts known codes", func(t *testing.T) {
		c, err := ParseCurrency("USD")
		require.NoError(t, err)
		assert.Equal(t, USD, c)
	})

	t.Run("rejects unknown codes", func(t *testing.T) {
		_, err := ParseCurrency("XXX")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown currency")
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCurrency("")
		require.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyILSFromFloat(100.50)
		b := NewMoneyILSFromFloat(49.50)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("add rejects currency mismatch", func(t *testing.T) {
		a := NewMoneyILSFromFloat(100)
		b, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		_, err = a.Add(b)
		require.Error(t, err)
	})

	t.Run("sub same currency", func(t *testing.T) {
		a := NewMoneyILSFromFloat(1000)
		b := NewMoneyILSFromFloat(400)
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(600)))
	})

	t.Run("neg and abs", func(t *testing.T) {
		m := NewMoneyILSFromFloat(75.25)
		assert.True(t, m.Neg().IsNegative())
		assert.True(t, m.Neg().Abs().Equal(m))
	})
}

func TestMoneyConvert(t *testing.T) {
	usd, err := NewMoney(decimal.NewFromInt(100), USD)
	require.NoError(t, err)

	rate := decimal.NewFromFloat(3.65)
	ils := usd.Convert(rate, ILS)

	assert.Equal(t, ILS, ils.Currency())
	assert.Equal(t, "365.00 ILS", ils.String())
}

func TestMoneyRound2(t *testing.T) {
	m := NewMoneyILS(decimal.NewFromFloat(10.005))
	assert.Equal(t, "10.01", m.Round2().Amount().StringFixed(2))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyILSFromFloat(123.45)
	data, err := m.MarshalJSON()
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.True(t, m.Equal(decoded))
}
