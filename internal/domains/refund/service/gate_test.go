package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	orderModel "bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/refund/model"
)

func TestGate_COD(t *testing.T) {
	gate := NewGate(model.DefaultConfig())
	delivered := time.Now()

	tests := []struct {
		name   string
		mutate func(o *orderModel.Order)
		want   bool
	}{
		{"never delivered nor paid", func(o *orderModel.Order) {}, false},
		{"paid", func(o *orderModel.Order) { o.PaymentStatus = orderModel.PaymentStatusPaid }, true},
		{"order delivered", func(o *orderModel.Order) { o.Status = orderModel.OrderStatusDelivered }, true},
		{"delivered_at set", func(o *orderModel.Order) { o.DeliveredAt = &delivered }, true},
		{"an item was returned", func(o *orderModel.Order) { o.Items[1].Status = orderModel.ItemStatusReturned }, true},
		{"shipped only", func(o *orderModel.Order) { o.Status = orderModel.OrderStatusShipped }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrder(orderModel.PaymentMethodCOD, "590", "200", "390")
			tt.mutate(o)

			dec := gate.Evaluate(o, d("200"))
			assert.Equal(t, tt.want, dec.ShouldRefund)
			if tt.want {
				assertDec(t, "200", dec.Amount)
			} else {
				assert.True(t, dec.Amount.IsZero())
				assert.NotEmpty(t, dec.Reason)
			}
		})
	}
}

func TestGate_COD_EvidenceNotRequired(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.CODRequiresEvidence = false
	gate := NewGate(cfg)

	o := newOrder(orderModel.PaymentMethodCOD, "590", "200", "390")
	assert.True(t, gate.Evaluate(o, d("200")).ShouldRefund)
}

func TestGate_NonCOD(t *testing.T) {
	gate := NewGate(model.DefaultConfig())

	tests := []struct {
		status orderModel.PaymentStatus
		want   bool
	}{
		{orderModel.PaymentStatusPaid, true},
		{orderModel.PaymentStatusPartiallyRefunded, true},
		{orderModel.PaymentStatusPending, false},
		{orderModel.PaymentStatusFailed, false},
		{orderModel.PaymentStatusRefunded, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := newOrder(orderModel.PaymentMethodRazorpay, "590", "200", "390")
			o.PaymentStatus = tt.status
			assert.Equal(t, tt.want, gate.Evaluate(o, d("390")).ShouldRefund)
		})
	}
}

func TestGate_ZeroAmount(t *testing.T) {
	gate := NewGate(model.DefaultConfig())
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
	assert.False(t, gate.Evaluate(o, d("0")).ShouldRefund)
}
