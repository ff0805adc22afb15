package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/offer/model"
	"bookstore-storefront/pkg/money"
)

// SelectBestOffer chọn một offer tốt nhất trong candidates cho product/category.
//
// Thứ tự ưu tiên:
//  1. Scope cụ thể hơn thắng (specific_products > specific_categories > all_products > all_categories)
//  2. Cùng scope: DiscountValue lớn hơn thắng
//  3. Cùng value: percentage thắng fixed
//  4. Còn hoà: giữ offer xuất hiện trước
//
// Bước 2-3 so sánh giá trị thô, không quy đổi ra tiền. Đây là quy tắc nghiệp vụ đã chốt.
func SelectBestOffer(candidates []*model.Offer, productID uuid.UUID, categoryID *uuid.UUID, now time.Time) *model.Offer {
	var best *model.Offer
	for _, o := range candidates {
		if o == nil || !o.IsLive(now) || !o.Matches(productID, categoryID) {
			continue
		}
		if best == nil || outranks(o, best) {
			best = o
		}
	}
	return best
}

func outranks(a, b *model.Offer) bool {
	pa, pb := a.AppliesTo.Priority(), b.AppliesTo.Priority()
	if pa != pb {
		return pa < pb
	}
	if cmp := a.DiscountValue.Cmp(b.DiscountValue); cmp != 0 {
		return cmp > 0
	}
	return a.DiscountType == model.DiscountTypePercentage && b.DiscountType == model.DiscountTypeFixed
}

// CalculateDiscount áp offer lên price. Kết quả làm tròn 2 chữ số.
// offer nil hoặc price <= 0 → không giảm, FinalPrice = price.
func CalculateDiscount(offer *model.Offer, price decimal.Decimal) model.DiscountResult {
	if offer == nil || !price.IsPositive() {
		return model.DiscountResult{
			DiscountAmount:     decimal.Zero,
			DiscountPercentage: decimal.Zero,
			FinalPrice:         money.Round2(money.NonNegative(price)),
		}
	}

	var amount decimal.Decimal
	switch offer.DiscountType {
	case model.DiscountTypePercentage:
		amount = money.Percent(price, offer.DiscountValue)
	case model.DiscountTypeFixed:
		amount = offer.DiscountValue
	default:
		amount = decimal.Zero
	}
	amount = money.Round2(money.Min(money.NonNegative(amount), price))

	return model.DiscountResult{
		DiscountAmount:     amount,
		DiscountPercentage: money.Round2(amount.Div(price).Mul(decimal.NewFromInt(100))),
		FinalPrice:         money.Round2(price.Sub(amount)),
	}
}
