package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-storefront/internal/config"
	orderModel "bookstore-storefront/internal/domains/order/model"
)

func TestRefundConfig(t *testing.T) {
	cfg, err := RefundConfig(config.RefundConfig{
		SingleItemFullTotal:       false,
		RefundableItemStatuses:    []string{"Cancelled", "Returned"},
		RefundablePaymentStatuses: []string{"Paid"},
		CODRequiresEvidence:       true,
	})
	require.NoError(t, err)

	assert.False(t, cfg.SingleItemFullTotal)
	assert.True(t, cfg.CODRequiresEvidence)
	assert.Equal(t, []orderModel.ItemStatus{orderModel.ItemStatusCancelled, orderModel.ItemStatusReturned}, cfg.RefundableItemStatuses)
	assert.Equal(t, []orderModel.PaymentStatus{orderModel.PaymentStatusPaid}, cfg.RefundablePaymentStatuses)

	_, err = RefundConfig(config.RefundConfig{RefundableItemStatuses: []string{"Shipped"}})
	assert.ErrorContains(t, err, "invalid refund config")
}
