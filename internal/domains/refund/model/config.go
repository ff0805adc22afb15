package model

import (
	"fmt"

	orderModel "bookstore-storefront/internal/domains/order/model"
)

// Config là chính sách hoàn tiền, truyền vào NewCalculator / NewGate / NewProcessor
type Config struct {
	// SingleItemFullTotal: đơn chỉ có một dòng thì hoàn đúng order.total
	SingleItemFullTotal bool
	// RefundableItemStatuses: trạng thái dòng hàng được phép hoàn lẻ
	RefundableItemStatuses []orderModel.ItemStatus
	// RefundablePaymentStatuses: trạng thái thanh toán (non-COD) được phép hoàn
	RefundablePaymentStatuses []orderModel.PaymentStatus
	// CODRequiresEvidence: COD chỉ hoàn khi có bằng chứng đã thu tiền
	CODRequiresEvidence bool
}

// DefaultConfig là chính sách mặc định của storefront
func DefaultConfig() Config {
	return Config{
		SingleItemFullTotal: true,
		RefundableItemStatuses: []orderModel.ItemStatus{
			orderModel.ItemStatusCancelled,
			orderModel.ItemStatusActive,
			orderModel.ItemStatusReturnRequested,
			orderModel.ItemStatusReturned,
		},
		RefundablePaymentStatuses: []orderModel.PaymentStatus{
			orderModel.PaymentStatusPaid,
			orderModel.PaymentStatusPartiallyRefunded,
		},
		CODRequiresEvidence: true,
	}
}

// ItemRefundable kiểm tra trạng thái dòng hàng có nằm trong tập được hoàn
func (c Config) ItemRefundable(s orderModel.ItemStatus) bool {
	for _, allowed := range c.RefundableItemStatuses {
		if allowed == s {
			return true
		}
	}
	return false
}

// PaymentRefundable kiểm tra trạng thái thanh toán non-COD
func (c Config) PaymentRefundable(s orderModel.PaymentStatus) bool {
	for _, allowed := range c.RefundablePaymentStatuses {
		if allowed == s {
			return true
		}
	}
	return false
}

// ParseConfig dựng Config từ dạng chuỗi đọc ở env, trạng thái lạ thì báo lỗi ngay lúc khởi động
func ParseConfig(singleItemFullTotal bool, itemStatuses, paymentStatuses []string, codRequiresEvidence bool) (Config, error) {
	cfg := Config{
		SingleItemFullTotal: singleItemFullTotal,
		CODRequiresEvidence: codRequiresEvidence,
	}

	for _, raw := range itemStatuses {
		s := orderModel.ItemStatus(raw)
		if !s.IsValid() {
			return Config{}, fmt.Errorf("unknown refundable item status %q", raw)
		}
		cfg.RefundableItemStatuses = append(cfg.RefundableItemStatuses, s)
	}

	for _, raw := range paymentStatuses {
		s := orderModel.PaymentStatus(raw)
		if !s.IsValid() {
			return Config{}, fmt.Errorf("unknown refundable payment status %q", raw)
		}
		cfg.RefundablePaymentStatuses = append(cfg.RefundablePaymentStatuses, s)
	}

	return cfg, nil
}
