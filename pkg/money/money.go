package money

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Places là số chữ số thập phân cho mọi số tiền (paisa)
const Places int32 = 2

var hundred = decimal.NewFromInt(100)

// Round2 làm tròn về 2 chữ số thập phân (half away from zero)
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent trả về value% của amount, chưa làm tròn
func Percent(amount, value decimal.Decimal) decimal.Decimal {
	return amount.Mul(value).Div(hundred)
}

// Min trả về giá trị nhỏ hơn
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative chặn dưới ở 0
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Allocate chia total theo tỉ lệ weights, làm tròn đến paisa bằng phương pháp largest remainder.
//
// Tổng các phần luôn bằng đúng Round2(total). Phần dư (tính theo paisa) được cộng lần lượt
// cho các phần có phần lẻ lớn nhất; bằng nhau thì ưu tiên index nhỏ hơn.
// Nếu tổng weights <= 0 thì mọi phần bằng 0.
func Allocate(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	sum := decimal.Zero
	for _, w := range weights {
		if w.IsPositive() {
			sum = sum.Add(w)
		}
	}
	if !sum.IsPositive() || !total.IsPositive() {
		return shares
	}

	totalCents := Round2(total).Mul(hundred).IntPart()

	type remainder struct {
		idx  int
		frac decimal.Decimal
	}
	rems := make([]remainder, 0, len(weights))

	var allocated int64
	for i, w := range weights {
		if !w.IsPositive() {
			continue
		}
		raw := decimal.NewFromInt(totalCents).Mul(w).Div(sum)
		floor := raw.Floor()
		cents := floor.IntPart()
		allocated += cents
		shares[i] = decimal.NewFromInt(cents)
		rems = append(rems, remainder{idx: i, frac: raw.Sub(floor)})
	}

	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac.GreaterThan(rems[b].frac)
	})

	left := totalCents - allocated
	for i := 0; left > 0 && len(rems) > 0; i++ {
		idx := rems[i%len(rems)].idx
		shares[idx] = shares[idx].Add(decimal.NewFromInt(1))
		left--
	}

	for i := range shares {
		shares[i] = shares[i].Div(hundred)
	}
	return shares
}
