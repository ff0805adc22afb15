package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bookstore-storefront/internal/domains/coupon/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedCoupon(value string) *model.Coupon {
	return &model.Coupon{Code: "FLAT", DiscountType: model.DiscountTypeFixed, DiscountValue: d(value), IsActive: true}
}

func percentCoupon(value string, maxDiscount *string) *model.Coupon {
	c := &model.Coupon{Code: "PCT", DiscountType: model.DiscountTypePercentage, DiscountValue: d(value), IsActive: true}
	if maxDiscount != nil {
		m := d(*maxDiscount)
		c.MaxDiscountValue = &m
	}
	return c
}

func strPtr(s string) *string { return &s }

func TestApportionFixedCoupon(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	got := Apportion(fixedCoupon("100"), []model.ApportionItem{
		{ProductID: p1, DiscountedPrice: d("150"), Quantity: 2},
		{ProductID: p2, DiscountedPrice: d("700"), Quantity: 1},
	})

	assert.True(t, d("100").Equal(got.TotalDiscount))
	assert.True(t, d("30").Equal(got.For(p1).Amount), got.For(p1).Amount.String())
	assert.True(t, d("70").Equal(got.For(p2).Amount), got.For(p2).Amount.String())
	assert.True(t, d("0.3").Equal(got.For(p1).Proportion))
	assert.True(t, d("0.7").Equal(got.For(p2).Proportion))
}

func TestApportionFixedCappedAtSubtotal(t *testing.T) {
	p1 := uuid.New()

	got := Apportion(fixedCoupon("500"), []model.ApportionItem{
		{ProductID: p1, DiscountedPrice: d("120.50"), Quantity: 1},
	})

	assert.True(t, d("120.50").Equal(got.TotalDiscount))
	assert.True(t, d("120.50").Equal(got.For(p1).Amount))
}

func TestApportionPercentageCap(t *testing.T) {
	items := []model.ApportionItem{
		{ProductID: uuid.New(), DiscountedPrice: d("999.99"), Quantity: 10},
		{ProductID: uuid.New(), DiscountedPrice: d("10"), Quantity: 3},
	}

	capped := Apportion(percentCoupon("50", strPtr("250")), items)
	assert.True(t, d("250").Equal(capped.TotalDiscount))

	uncapped := Apportion(percentCoupon("10", nil), items)
	assert.True(t, d("1002.99").Equal(uncapped.TotalDiscount), uncapped.TotalDiscount.String())
}

func TestApportionSharesSumToTotal(t *testing.T) {
	items := []model.ApportionItem{
		{ProductID: uuid.New(), DiscountedPrice: d("33.33"), Quantity: 1},
		{ProductID: uuid.New(), DiscountedPrice: d("33.33"), Quantity: 1},
		{ProductID: uuid.New(), DiscountedPrice: d("33.34"), Quantity: 1},
	}

	got := Apportion(fixedCoupon("10"), items)

	sum := decimal.Zero
	for _, it := range got.ItemDiscounts {
		sum = sum.Add(it.Amount)
		assert.True(t, it.Amount.Equal(it.Amount.Round(2)))
	}
	assert.True(t, d("10").Equal(sum), sum.String())
}

func TestApportionZeroSubtotal(t *testing.T) {
	p1 := uuid.New()

	got := Apportion(fixedCoupon("100"), []model.ApportionItem{
		{ProductID: p1, DiscountedPrice: decimal.Zero, Quantity: 2},
	})

	assert.True(t, got.TotalDiscount.IsZero())
	assert.True(t, got.For(p1).Amount.IsZero())
	assert.True(t, got.For(p1).Proportion.IsZero())
}

func TestApportionMergesRepeatedProduct(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	got := Apportion(fixedCoupon("100"), []model.ApportionItem{
		{ProductID: p1, DiscountedPrice: d("100"), Quantity: 1},
		{ProductID: p2, DiscountedPrice: d("500"), Quantity: 1},
		{ProductID: p1, DiscountedPrice: d("400"), Quantity: 1},
	})

	assert.Len(t, got.ItemDiscounts, 2)
	assert.True(t, d("50").Equal(got.For(p1).Amount))
	assert.True(t, d("50").Equal(got.For(p2).Amount))
}

func TestTotalDiscount(t *testing.T) {
	assert.True(t, TotalDiscount(nil, d("100")).IsZero())
	assert.True(t, TotalDiscount(fixedCoupon("10"), d("-1")).IsZero())
	assert.True(t, d("12.35").Equal(TotalDiscount(percentCoupon("12.345", nil), d("100"))))
}
