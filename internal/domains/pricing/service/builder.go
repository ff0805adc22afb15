package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	couponModel "bookstore-storefront/internal/domains/coupon/model"
	couponService "bookstore-storefront/internal/domains/coupon/service"
	offerService "bookstore-storefront/internal/domains/offer/service"
	"bookstore-storefront/internal/domains/pricing/model"
	"bookstore-storefront/pkg/money"
)

// Builder dựng PriceBreakdown cho từng dòng và tổng đơn.
// Thuần tính toán: không đọc DB, cùng input luôn ra cùng output.
type Builder struct {
	taxRate decimal.Decimal
}

func NewBuilder(taxRate decimal.Decimal) *Builder {
	return &Builder{taxRate: taxRate}
}

func (b *Builder) TaxRate() decimal.Decimal {
	return b.taxRate
}

// Build tính báo giá. coupon nil = không áp coupon.
//
// Từng dòng:
//
//	subtotal        = unitPrice × qty
//	offerDiscount   = discount/đơn vị × qty
//	priceAfterOffer = subtotal - offerDiscount
//	couponDiscount  = phần coupon chia theo priceAfterOffer (chỉ dòng thuộc phạm vi coupon)
//	finalPrice      = priceAfterOffer - couponDiscount
//
// Tổng đơn: tax = round2(rate × (subtotal - discount - couponDiscount)), total = subtotal - discount - couponDiscount + tax.
func (b *Builder) Build(lines []model.LineInput, coupon *couponModel.Coupon) (*model.Quote, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	quote := &model.Quote{
		Lines:          make([]model.QuoteLine, 0, len(lines)),
		Subtotal:       decimal.Zero,
		Discount:       decimal.Zero,
		CouponDiscount: decimal.Zero,
		TaxRate:        b.taxRate,
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	eligible := make([]couponModel.ApportionItem, 0, len(lines))

	for _, in := range lines {
		if in.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if _, dup := seen[in.ProductID]; dup {
			return nil, model.ErrDuplicateLine
		}
		seen[in.ProductID] = struct{}{}

		qty := decimal.NewFromInt(int64(in.Quantity))
		perUnit := offerService.CalculateDiscount(in.Offer, in.UnitPrice)

		subtotal := money.Round2(in.UnitPrice.Mul(qty))
		offerDiscount := perUnit.DiscountAmount.Mul(qty)
		afterOffer := subtotal.Sub(offerDiscount)

		bd := model.PriceBreakdown{
			OriginalPrice:    in.UnitPrice,
			Subtotal:         subtotal,
			OfferDiscount:    offerDiscount,
			PriceAfterOffer:  afterOffer,
			CouponDiscount:   decimal.Zero,
			CouponProportion: decimal.Zero,
			FinalPrice:       afterOffer,
		}
		if in.Offer != nil && perUnit.DiscountAmount.IsPositive() {
			bd.OfferTitle = in.Offer.Title
		}

		quote.Lines = append(quote.Lines, model.QuoteLine{
			ProductID:       in.ProductID,
			CategoryID:      in.CategoryID,
			Title:           in.Title,
			ImageURL:        in.ImageURL,
			UnitPrice:       in.UnitPrice,
			DiscountedPrice: perUnit.FinalPrice,
			Quantity:        in.Quantity,
			Breakdown:       bd,
		})

		if coupon != nil && coupon.AppliesTo(in.ProductID, in.CategoryID) {
			eligible = append(eligible, couponModel.ApportionItem{
				ProductID:       in.ProductID,
				DiscountedPrice: perUnit.FinalPrice,
				Quantity:        in.Quantity,
			})
		}

		quote.Subtotal = quote.Subtotal.Add(subtotal)
		quote.Discount = quote.Discount.Add(offerDiscount)
	}

	if coupon != nil && len(eligible) > 0 {
		apportioned := couponService.Apportion(coupon, eligible)
		for i := range quote.Lines {
			line := &quote.Lines[i]
			share, ok := apportioned.ItemDiscounts[line.ProductID]
			if !ok {
				continue
			}
			line.Breakdown.CouponDiscount = share.Amount
			line.Breakdown.CouponProportion = share.Proportion
			line.Breakdown.FinalPrice = line.Breakdown.PriceAfterOffer.Sub(share.Amount)
		}

		if apportioned.TotalDiscount.IsPositive() {
			id := coupon.ID
			quote.CouponID = &id
			quote.CouponCode = coupon.Code
			quote.CouponDiscount = apportioned.TotalDiscount
		}
	}

	taxable := quote.Subtotal.Sub(quote.Discount).Sub(quote.CouponDiscount)
	quote.Tax = money.Round2(money.NonNegative(taxable).Mul(b.taxRate))
	quote.Total = taxable.Add(quote.Tax)

	return quote, nil
}
