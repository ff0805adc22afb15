package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	couponModel "bookstore-storefront/internal/domains/coupon/model"
	offerModel "bookstore-storefront/internal/domains/offer/model"
	offerService "bookstore-storefront/internal/domains/offer/service"
	"bookstore-storefront/internal/domains/pricing/model"
	productModel "bookstore-storefront/internal/domains/product/model"
	"bookstore-storefront/pkg/metrics"
)

type ProductReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*productModel.Product, error)
}

type OfferResolver interface {
	ResolveBestOffer(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) (*offerModel.Offer, error)
}

type CouponValidator interface {
	Validate(ctx context.Context, code string, userID uuid.UUID, lines []couponModel.Line) (*couponModel.Validation, error)
}

// QuoterInterface được checkout và order dùng
type QuoterInterface interface {
	Quote(ctx context.Context, userID uuid.UUID, items []model.CartItem, couponCode string) (*model.Quote, error)
}

// Quoter ghép product lookup + offer resolver + coupon validation + Builder
type Quoter struct {
	products ProductReader
	offers   OfferResolver
	coupons  CouponValidator
	builder  *Builder
}

func NewQuoter(products ProductReader, offers OfferResolver, coupons CouponValidator, builder *Builder) *Quoter {
	return &Quoter{
		products: products,
		offers:   offers,
		coupons:  coupons,
		builder:  builder,
	}
}

var _ QuoterInterface = (*Quoter)(nil)

// Quote tính giá cho items tại thời điểm hiện tại. couponCode rỗng = không coupon.
// Coupon không hợp lệ trả lỗi (AppError của coupon domain), không âm thầm bỏ qua.
func (q *Quoter) Quote(ctx context.Context, userID uuid.UUID, items []model.CartItem, couponCode string) (*model.Quote, error) {
	merged, order, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	products, err := q.products.GetByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	inputs := make([]model.LineInput, 0, len(order))
	couponLines := make([]couponModel.Line, 0, len(order))

	for _, id := range order {
		qty := merged[id]
		p, ok := products[id]
		if !ok {
			return nil, &model.UnavailableError{ProductID: id, Requested: qty}
		}
		if !p.IsPurchasable(qty) {
			return nil, &model.UnavailableError{ProductID: id, Requested: qty, Available: p.Stock}
		}

		categoryID := p.CategoryID
		offer, err := q.offers.ResolveBestOffer(ctx, p.ID, &categoryID)
		if err != nil {
			return nil, fmt.Errorf("resolve offer for %s: %w", p.ID, err)
		}

		inputs = append(inputs, model.LineInput{
			ProductID:  p.ID,
			CategoryID: p.CategoryID,
			Title:      p.Title,
			ImageURL:   p.ImageURL,
			UnitPrice:  p.Price,
			Quantity:   qty,
			Offer:      offer,
		})
		couponLines = append(couponLines, couponModel.Line{
			ProductID:       p.ID,
			CategoryID:      p.CategoryID,
			DiscountedPrice: offerService.CalculateDiscount(offer, p.Price).FinalPrice,
			Quantity:        qty,
		})
	}

	var coupon *couponModel.Coupon
	if strings.TrimSpace(couponCode) != "" {
		v, err := q.coupons.Validate(ctx, couponCode, userID, couponLines)
		if err != nil {
			return nil, err
		}
		coupon = v.Coupon
	}

	quote, err := q.builder.Build(inputs, coupon)
	if err != nil {
		return nil, err
	}

	metrics.QuotesTotal.WithLabelValues(fmt.Sprintf("%t", quote.CouponID != nil)).Inc()
	return quote, nil
}

// mergeItems gộp các dòng trùng product, giữ thứ tự xuất hiện đầu tiên
func mergeItems(items []model.CartItem) (map[uuid.UUID]int, []uuid.UUID, error) {
	if len(items) == 0 {
		return nil, nil, model.ErrEmptyCart
	}

	merged := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, nil, model.ErrInvalidQuantity
		}
		if _, ok := merged[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		merged[it.ProductID] += it.Quantity
	}
	return merged, order, nil
}
