package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	pricingModel "bookstore-storefront/internal/domains/pricing/model"
	"bookstore-storefront/internal/shared"
)

func TestItemTransitions(t *testing.T) {
	tests := []struct {
		from, to ItemStatus
		want     bool
	}{
		{ItemStatusActive, ItemStatusCancelled, true},
		{ItemStatusActive, ItemStatusDelivered, true},
		{ItemStatusActive, ItemStatusReturnRequested, false},
		{ItemStatusDelivered, ItemStatusReturnRequested, true},
		{ItemStatusDelivered, ItemStatusCancelled, false},
		{ItemStatusReturnRequested, ItemStatusReturned, true},
		{ItemStatusReturnRequested, ItemStatusDelivered, true},
		{ItemStatusCancelled, ItemStatusActive, false},
		{ItemStatusReturned, ItemStatusDelivered, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderTransitions(t *testing.T) {
	assert.True(t, OrderStatusPlaced.CanTransitionTo(OrderStatusProcessing))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusPlaced.CanTransitionTo(OrderStatusDelivered))

	assert.True(t, OrderStatusPlaced.IsCancellable())
	assert.True(t, OrderStatusProcessing.IsCancellable())
	assert.False(t, OrderStatusShipped.IsCancellable())
	assert.False(t, OrderStatusReturnRequested.IsAdminSettable())
}

func items(statuses ...ItemStatus) []OrderItem {
	out := make([]OrderItem, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, OrderItem{ID: uuid.New(), Status: s})
	}
	return out
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		items   []OrderItem
		want    OrderStatus
	}{
		{"all cancelled", OrderStatusPlaced, items(ItemStatusCancelled, ItemStatusCancelled), OrderStatusCancelled},
		{"partial cancel keeps progress", OrderStatusProcessing, items(ItemStatusCancelled, ItemStatusActive), OrderStatusProcessing},
		{"any return requested", OrderStatusDelivered, items(ItemStatusReturnRequested, ItemStatusDelivered), OrderStatusReturnRequested},
		{"all non-cancelled returned", OrderStatusReturnRequested, items(ItemStatusReturned, ItemStatusCancelled), OrderStatusReturned},
		{"request rejected", OrderStatusReturnRequested, items(ItemStatusDelivered, ItemStatusDelivered), OrderStatusDelivered},
		{"partial return settled", OrderStatusReturnRequested, items(ItemStatusReturned, ItemStatusDelivered), OrderStatusDelivered},
		{"no items", OrderStatusPlaced, nil, OrderStatusPlaced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.current, tt.items))
		})
	}
}

func TestFindItem_ByItemOrProductID(t *testing.T) {
	o := &Order{Items: items(ItemStatusActive, ItemStatusActive)}
	o.Items[1].ProductID = uuid.New()

	got, ok := o.FindItem(o.Items[0].ID)
	assert.True(t, ok)
	assert.Equal(t, o.Items[0].ID, got.ID)

	got, ok = o.FindItem(o.Items[1].ProductID)
	assert.True(t, ok)
	assert.Equal(t, o.Items[1].ID, got.ID)

	_, ok = o.FindItem(uuid.New())
	assert.False(t, ok)
}

func TestNewOrderFromQuote(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := decimal.RequireFromString
	quote := &pricingModel.Quote{
		Lines: []pricingModel.QuoteLine{{
			ProductID:       uuid.New(),
			Title:           "Go in Action",
			UnitPrice:       d("750"),
			DiscountedPrice: d("750"),
			Quantity:        1,
			Breakdown:       pricingModel.PriceBreakdown{FinalPrice: d("750")},
		}},
		CouponCode: "WELCOME",
		Subtotal:   d("750"),
		Discount:   decimal.Zero,
		Tax:        d("76.20"),
		Total:      d("826.20"),
	}

	o := NewOrderFromQuote(uuid.New(), quote, shared.ShippingAddress{City: "Pune"}, PaymentMethodCOD, now)
	assert.Equal(t, OrderStatusPlaced, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, "WELCOME", *o.CouponCode)
	assert.Len(t, o.Items, 1)
	assert.Equal(t, o.ID, o.Items[0].OrderID)
	assert.Equal(t, ItemStatusActive, o.Items[0].Status)
	assert.True(t, o.IsConsistent())
	assert.Regexp(t, `^ORD-20260102-[0-9A-F]{8}$`, o.OrderNumber)
}
