package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound2(t *testing.T) {
	assert.True(t, d("10.13").Equal(Round2(d("10.125"))))
	assert.True(t, d("10.12").Equal(Round2(d("10.124"))))
	assert.True(t, d("0").Equal(Round2(d("0.001"))))
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		weights []string
		want    []string
	}{
		{"exact proportions", "590", []string{"200", "390"}, []string{"200", "390"}},
		{"coupon split", "100", []string{"300", "700"}, []string{"30", "70"}},
		{"three way remainder", "100", []string{"1", "1", "1"}, []string{"33.34", "33.33", "33.33"}},
		{"zero weights", "50", []string{"0", "0"}, []string{"0", "0"}},
		{"zero total", "0", []string{"10", "20"}, []string{"0", "0"}},
		{"zero weight item skipped", "10", []string{"0", "5", "5"}, []string{"0", "5", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := make([]decimal.Decimal, len(tt.weights))
			for i, w := range tt.weights {
				weights[i] = d(w)
			}

			got := Allocate(d(tt.total), weights)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Truef(t, d(w).Equal(got[i]), "share %d: want %s got %s", i, w, got[i])
			}
		})
	}
}

func TestAllocate_SumsToTotal(t *testing.T) {
	weights := []decimal.Decimal{d("199.99"), d("349.50"), d("12.01"), d("0.99"), d("77.77")}

	for _, total := range []string{"826.20", "1", "0.07", "999.99", "123456.78"} {
		shares := Allocate(d(total), weights)

		sum := decimal.Zero
		for _, s := range shares {
			assert.False(t, s.IsNegative())
			sum = sum.Add(s)
		}
		assert.Truef(t, d(total).Equal(sum), "total %s, sum %s", total, sum)
	}
}
