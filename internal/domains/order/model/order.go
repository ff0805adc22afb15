package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pricingModel "bookstore-storefront/internal/domains/pricing/model"
	"bookstore-storefront/internal/shared"
)

// Order là bản ghi trung tâm. Invariant: Total = Subtotal - Discount - CouponDiscount + Tax (±0.01).
type Order struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	UserID          uuid.UUID              `json:"user_id"`
	Items           []OrderItem            `json:"items"`
	ShippingAddress shared.ShippingAddress `json:"shipping_address"`

	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        OrderStatus   `json:"status"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"` // tổng offer discount
	CouponID       *uuid.UUID      `json:"coupon_id,omitempty"`
	CouponCode     *string         `json:"coupon_code,omitempty"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	RefundedTotal  decimal.Decimal `json:"refunded_total"`

	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	IsDeleted    bool       `json:"-"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OrderItem là một dòng hàng. Breakdown ghi một lần lúc đặt và không bao giờ tính lại;
// RefundedAmount là sổ cái số tiền đã hoàn cho dòng này.
type OrderItem struct {
	ID              uuid.UUID                   `json:"id"`
	OrderID         uuid.UUID                   `json:"order_id"`
	ProductID       uuid.UUID                   `json:"product_id"`
	Title           string                      `json:"title"`
	ImageURL        string                      `json:"image_url,omitempty"`
	OriginalPrice   decimal.Decimal             `json:"original_price"`
	DiscountedPrice decimal.Decimal             `json:"discounted_price"`
	Quantity        int                         `json:"quantity"`
	Status          ItemStatus                  `json:"status"`
	Breakdown       pricingModel.PriceBreakdown `json:"price_breakdown"`
	RefundedAmount  decimal.Decimal             `json:"refunded_amount"`
	ReturnReason    *string                     `json:"return_reason,omitempty"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// FindItem tìm dòng hàng theo item ID, không thấy thì thử theo product ID
func (o *Order) FindItem(id uuid.UUID) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	for i := range o.Items {
		if o.Items[i].ProductID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// ItemsWithStatus trả các dòng đang ở một trong các trạng thái cho trước
func (o *Order) ItemsWithStatus(statuses ...ItemStatus) []*OrderItem {
	out := make([]*OrderItem, 0, len(o.Items))
	for i := range o.Items {
		for _, s := range statuses {
			if o.Items[i].Status == s {
				out = append(out, &o.Items[i])
				break
			}
		}
	}
	return out
}

// BelongsTo kiểm tra quyền sở hữu
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsConsistent kiểm tra invariant tổng tiền trong sai số 0.01
func (o *Order) IsConsistent() bool {
	expected := o.Subtotal.Sub(o.Discount).Sub(o.CouponDiscount).Add(o.Tax)
	return expected.Sub(o.Total).Abs().LessThanOrEqual(decimal.RequireFromString("0.01"))
}

// NewOrderFromQuote dựng order (chưa lưu) từ báo giá của checkout session
func NewOrderFromQuote(userID uuid.UUID, quote *pricingModel.Quote, address shared.ShippingAddress, method PaymentMethod, now time.Time) *Order {
	o := &Order{
		ID:              uuid.New(),
		OrderNumber:     GenerateOrderNumber(now),
		UserID:          userID,
		ShippingAddress: address,
		PaymentMethod:   method,
		PaymentStatus:   method.InitialPaymentStatus(),
		Status:          OrderStatusPlaced,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		CouponID:        quote.CouponID,
		CouponDiscount:  quote.CouponDiscount,
		Tax:             quote.Tax,
		Total:           quote.Total,
		RefundedTotal:   decimal.Zero,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if quote.CouponCode != "" {
		code := quote.CouponCode
		o.CouponCode = &code
	}

	o.Items = make([]OrderItem, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		o.Items = append(o.Items, OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ProductID:       l.ProductID,
			Title:           l.Title,
			ImageURL:        l.ImageURL,
			OriginalPrice:   l.UnitPrice,
			DiscountedPrice: l.DiscountedPrice,
			Quantity:        l.Quantity,
			Status:          ItemStatusActive,
			Breakdown:       l.Breakdown,
			RefundedAmount:  decimal.Zero,
			UpdatedAt:       now,
		})
	}
	return o
}

// GenerateOrderNumber: ORD-YYYYMMDD-XXXXXXXX, phần đuôi lấy từ UUID v4
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
