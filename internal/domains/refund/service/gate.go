package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	orderModel "bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/refund/model"
)

// Gate quyết định có thực sự chi tiền hay không, theo phương thức thanh toán
type Gate struct {
	cfg model.Config
}

func NewGate(cfg model.Config) *Gate {
	return &Gate{cfg: cfg}
}

// Evaluate: skip không phải lỗi, chỉ là "không có gì để hoàn"
func (g *Gate) Evaluate(order *orderModel.Order, amount decimal.Decimal) model.Decision {
	if !amount.IsPositive() {
		return model.Decision{Amount: decimal.Zero, Reason: "no refundable amount"}
	}

	if order.PaymentMethod == orderModel.PaymentMethodCOD {
		if g.cfg.CODRequiresEvidence && !cashCollected(order) {
			return model.Decision{Amount: decimal.Zero, Reason: "COD payment was never collected"}
		}
		return model.Decision{ShouldRefund: true, Amount: amount, Reason: "COD payment collected"}
	}

	if !g.cfg.PaymentRefundable(order.PaymentStatus) {
		return model.Decision{
			Amount: decimal.Zero,
			Reason: fmt.Sprintf("payment status %q is not refundable", order.PaymentStatus),
		}
	}
	return model.Decision{ShouldRefund: true, Amount: amount, Reason: "payment confirmed"}
}

// cashCollected: Paid, đơn Delivered, có deliveredAt, hoặc có dòng đã Delivered/Returned
func cashCollected(order *orderModel.Order) bool {
	if order.PaymentStatus == orderModel.PaymentStatusPaid ||
		order.PaymentStatus == orderModel.PaymentStatusPartiallyRefunded {
		return true
	}
	if order.Status == orderModel.OrderStatusDelivered || order.DeliveredAt != nil {
		return true
	}
	return len(order.ItemsWithStatus(orderModel.ItemStatusDelivered, orderModel.ItemStatusReturned)) > 0
}
