package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	pricingModel "bookstore-storefront/internal/domains/pricing/model"
	"bookstore-storefront/internal/shared"
)

// Session là phiên checkout phía server, lưu trong cache theo token và tự hết hạn.
// Thay cho pendingOrder/appliedCoupon nằm trong cookie session.
type Session struct {
	Token           string                  `json:"token"`
	UserID          uuid.UUID               `json:"user_id"`
	Items           []pricingModel.CartItem `json:"items"`
	CouponCode      string                  `json:"coupon_code,omitempty"`
	ShippingAddress shared.ShippingAddress  `json:"shipping_address"`
	CreatedAt       time.Time               `json:"created_at"`
	ExpiresAt       time.Time               `json:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// View là session kèm báo giá tính tại thời điểm đọc
type View struct {
	Session *Session            `json:"session"`
	Quote   *pricingModel.Quote `json:"quote"`
}

// =====================================================
// REQUESTS
// =====================================================

type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r ItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

type AddressRequest struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

func (r AddressRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Phone, validation.Required, validation.Length(8, 15)),
		validation.Field(&r.Line1, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.City, validation.Required),
		validation.Field(&r.State, validation.Required),
		validation.Field(&r.PostalCode, validation.Required, validation.Length(4, 10)),
		validation.Field(&r.CountryCode, validation.Length(2, 2)),
	)
}

func (r AddressRequest) ToShippingAddress() shared.ShippingAddress {
	country := r.CountryCode
	if country == "" {
		country = "IN"
	}
	return shared.ShippingAddress{
		FullName:    r.FullName,
		Phone:       r.Phone,
		Line1:       r.Line1,
		Line2:       r.Line2,
		City:        r.City,
		State:       r.State,
		PostalCode:  r.PostalCode,
		CountryCode: country,
	}
}

// StartRequest mở phiên checkout từ giỏ hàng
type StartRequest struct {
	Items           []ItemRequest  `json:"items"`
	ShippingAddress AddressRequest `json:"shipping_address"`
	CouponCode      string         `json:"coupon_code"`
}

func (r StartRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.ShippingAddress),
		validation.Field(&r.CouponCode, validation.Length(0, 50)),
	)
}

func (r StartRequest) CartItems() []pricingModel.CartItem {
	out := make([]pricingModel.CartItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, pricingModel.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

func (r ApplyCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(3, 50)),
	)
}

// =====================================================
// ERRORS
// =====================================================
const (
	ErrCodeSessionNotFound = "CHK001"
	ErrCodeSessionInvalid  = "CHK002"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found or expired")
	ErrSessionOwner    = errors.New("checkout session belongs to another user")
)
