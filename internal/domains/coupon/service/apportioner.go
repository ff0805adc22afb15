package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/coupon/model"
	"bookstore-storefront/pkg/money"
)

// proportion lưu 4 chữ số, đủ để hiển thị và audit
const proportionPlaces int32 = 4

// TotalDiscount tính tổng tiền giảm của coupon trên subtotal (đã trừ offer).
//   - percentage: subtotal × value/100, chặn trên bởi MaxDiscountValue nếu có
//   - fixed: value, không vượt quá subtotal
func TotalDiscount(coupon *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case model.DiscountTypePercentage:
		discount = money.Percent(subtotal, coupon.DiscountValue)
		if coupon.MaxDiscountValue != nil {
			discount = money.Min(discount, *coupon.MaxDiscountValue)
		}
	case model.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	return money.Round2(money.Min(money.NonNegative(discount), subtotal))
}

// Apportion chia tổng giảm giá của coupon cho từng dòng theo tỉ lệ subtotal sau offer.
//
// Phần chia làm tròn đến paisa bằng largest remainder nên tổng các Amount luôn bằng TotalDiscount.
// Subtotal bằng 0 thì mọi phần đều 0. Cùng một product xuất hiện nhiều dòng thì được gộp lại.
func Apportion(coupon *model.Coupon, items []model.ApportionItem) model.Apportionment {
	result := model.Apportionment{
		TotalDiscount: decimal.Zero,
		ItemDiscounts: make(map[uuid.UUID]model.ItemDiscount, len(items)),
	}

	order := make([]uuid.UUID, 0, len(items))
	subtotals := make(map[uuid.UUID]decimal.Decimal, len(items))
	subtotal := decimal.Zero

	for _, it := range items {
		lineTotal := money.NonNegative(it.DiscountedPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		if _, seen := subtotals[it.ProductID]; !seen {
			order = append(order, it.ProductID)
			subtotals[it.ProductID] = decimal.Zero
		}
		subtotals[it.ProductID] = subtotals[it.ProductID].Add(lineTotal)
		subtotal = subtotal.Add(lineTotal)
	}

	for _, id := range order {
		result.ItemDiscounts[id] = model.ItemDiscount{Amount: decimal.Zero, Proportion: decimal.Zero}
	}
	if !subtotal.IsPositive() {
		return result
	}

	total := TotalDiscount(coupon, subtotal)
	result.TotalDiscount = total

	weights := make([]decimal.Decimal, len(order))
	for i, id := range order {
		weights[i] = subtotals[id]
	}
	shares := money.Allocate(total, weights)

	for i, id := range order {
		result.ItemDiscounts[id] = model.ItemDiscount{
			Amount:     shares[i],
			Proportion: weights[i].Div(subtotal).Round(proportionPlaces),
		}
	}
	return result
}
