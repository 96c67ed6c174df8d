package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressiveIncomeTax(t *testing.T) {
	tests := []struct {
		gross   float64
		want    float64
		bracket string
	}{
		{0, 0, "low"},
		{-500, 0, "low"},
		{10_000, 1_200, "low"},
		{50_000, 6_000, "medium"},
		{75_000, 11_500, "medium"},
		{150_000, 6_000 + 11_000 + 16_000, "high"},
		{300_000, 6_000 + 11_000 + 32_000 + 37_000, "very_high"},
	}
	for _, tc := range tests {
		got := Calculate(tc.gross, 0, 0)
		assert.Equal(t, tc.want, got.IncomeTax, "gross %v", tc.gross)
		assert.Equal(t, tc.bracket, got.Bracket, "gross %v", tc.gross)
	}
}

func TestCapitalGainsAndDividendsFlatAtBracket(t *testing.T) {
	got := Calculate(75_000, 1_000, 2_000)
	assert.Equal(t, 11_500.0, got.IncomeTax)
	assert.Equal(t, 150.0, got.CapitalGainsTax)
	assert.Equal(t, 300.0, got.DividendTax)
	assert.Equal(t, 11_950.0, got.TotalTax)
	assert.Equal(t, 78_000.0-11_950.0, got.NetIncome)
	assert.InDelta(t, 11_950.0/78_000.0, got.EffectiveTaxRate, 1e-12)

	low := Calculate(5_000, 1_000, 1_000)
	assert.Zero(t, low.CapitalGainsTax)
	assert.Zero(t, low.DividendTax)
	assert.Equal(t, 600.0, low.TotalTax)
}

func TestBracketsAreContiguousCopies(t *testing.T) {
	got := Brackets()
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Min.Equal(got[i-1].Max), "gap before %s", got[i].Name)
	}
	got[0].Name = "changed"
	assert.Equal(t, "low", Brackets()[0].Name)
}

func TestTotalsConsistent(t *testing.T) {
	for _, gross := range []float64{0, 1, 4_999.5, 49_999, 99_999, 123_456.78, 1_000_000} {
		got := Calculate(gross, gross*0.1, gross*0.2)
		assert.InDelta(t, got.IncomeTax+got.CapitalGainsTax+got.DividendTax, got.TotalTax, 1e-6)
		if gross == 0 {
			assert.Zero(t, got.EffectiveTaxRate)
		}
	}
}
