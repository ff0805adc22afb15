package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// =====================================================
// CUSTOMER REQUESTS
// =====================================================

// PlaceOrderRequest: đặt hàng từ checkout session
type PlaceOrderRequest struct {
	SessionToken  string        `json:"session_token"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

func (r PlaceOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionToken, validation.Required),
		validation.Field(&r.PaymentMethod, validation.Required,
			validation.In(PaymentMethodCOD, PaymentMethodRazorpay, PaymentMethodWallet)),
	)
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r CancelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Length(0, 500)),
	)
}

type ReturnRequest struct {
	Reason string `json:"reason"`
}

func (r ReturnRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Required, validation.Length(5, 500)),
	)
}

// =====================================================
// ADMIN REQUESTS
// =====================================================

type UpdateStatusRequest struct {
	Status        OrderStatus    `json:"status"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		)),
		validation.Field(&r.PaymentStatus, validation.NilOrNotEmpty, validation.In(
			PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		)),
	)
}

// ListFilter dùng cho danh sách đơn (customer + admin)
type ListFilter struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

// ReportRow là một dòng trong báo cáo doanh thu
type ReportRow struct {
	OrderNumber    string
	CreatedAt      time.Time
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	Status         OrderStatus
	ItemCount      int
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	CouponCode     string
	CouponDiscount decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	RefundedTotal  decimal.Decimal
}

// PlaceOrderResponse trả về sau khi đặt hàng
type PlaceOrderResponse struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// RetryRefundRequest: admin chạy lại refund cho một dòng hoặc phần còn lại của đơn
type RetryRefundRequest struct {
	ItemID *string `json:"item_id,omitempty"`
	Event  string  `json:"event"`
}

func (r RetryRefundRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.Event, validation.Required, validation.In("cancellation", "return")),
	)
}
