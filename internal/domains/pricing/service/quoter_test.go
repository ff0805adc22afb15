package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	couponModel "bookstore-storefront/internal/domains/coupon/model"
	offerModel "bookstore-storefront/internal/domains/offer/model"
	"bookstore-storefront/internal/domains/pricing/model"
	productModel "bookstore-storefront/internal/domains/product/model"
)

type stubProducts map[uuid.UUID]*productModel.Product

func (s stubProducts) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*productModel.Product, error) {
	out := make(map[uuid.UUID]*productModel.Product)
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubOffers map[uuid.UUID]*offerModel.Offer

func (s stubOffers) ResolveBestOffer(_ context.Context, productID uuid.UUID, _ *uuid.UUID) (*offerModel.Offer, error) {
	return s[productID], nil
}

type stubCoupons struct {
	coupon *couponModel.Coupon
	err    error
	lines  []couponModel.Line
}

func (s *stubCoupons) Validate(_ context.Context, _ string, _ uuid.UUID, lines []couponModel.Line) (*couponModel.Validation, error) {
	s.lines = lines
	if s.err != nil {
		return nil, s.err
	}
	return &couponModel.Validation{Coupon: s.coupon, EligibleLines: lines}, nil
}

func newQuoter(coupons *stubCoupons) *Quoter {
	products := stubProducts{
		bookA: {ID: bookA, CategoryID: catX, Title: "A", Price: d("500"), Stock: 5, IsActive: true},
		bookB: {ID: bookB, CategoryID: catY, Title: "B", Price: d("300"), Stock: 1, IsActive: true},
	}
	offers := stubOffers{bookA: twentyPercent()}
	return NewQuoter(products, offers, coupons, NewBuilder(d("0.18")))
}

func TestQuoteMergesDuplicateItems(t *testing.T) {
	q := newQuoter(&stubCoupons{})

	quote, err := q.Quote(context.Background(), uuid.New(), []model.CartItem{
		{ProductID: bookA, Quantity: 1},
		{ProductID: bookA, Quantity: 2},
	}, "")
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, 3, quote.Lines[0].Quantity)
	assertDec(t, "1200", quote.Lines[0].Breakdown.FinalPrice)
}

func TestQuotePassesOfferPricesToCouponValidation(t *testing.T) {
	coupons := &stubCoupons{coupon: flatCoupon("100")}
	q := newQuoter(coupons)

	quote, err := q.Quote(context.Background(), uuid.New(), []model.CartItem{
		{ProductID: bookA, Quantity: 1},
		{ProductID: bookB, Quantity: 1},
	}, "flat")
	require.NoError(t, err)

	require.Len(t, coupons.lines, 2)
	assertDec(t, "400", coupons.lines[0].DiscountedPrice)
	assertDec(t, "300", coupons.lines[1].DiscountedPrice)
	assertDec(t, "100", quote.CouponDiscount)
}

func TestQuoteCouponErrorIsReturned(t *testing.T) {
	q := newQuoter(&stubCoupons{err: couponModel.ErrCouponExpired})

	_, err := q.Quote(context.Background(), uuid.New(), []model.CartItem{{ProductID: bookA, Quantity: 1}}, "OLD")
	assert.ErrorIs(t, err, couponModel.ErrCouponExpired)
}

func TestQuoteUnavailableProducts(t *testing.T) {
	q := newQuoter(&stubCoupons{})

	_, err := q.Quote(context.Background(), uuid.New(), []model.CartItem{{ProductID: bookB, Quantity: 2}}, "")
	assert.ErrorIs(t, err, model.ErrProductUnavailable)

	var unavailable *model.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 1, unavailable.Available)

	_, err = q.Quote(context.Background(), uuid.New(), []model.CartItem{{ProductID: uuid.New(), Quantity: 1}}, "")
	assert.ErrorIs(t, err, model.ErrProductUnavailable)

	_, err = q.Quote(context.Background(), uuid.New(), nil, "")
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}
