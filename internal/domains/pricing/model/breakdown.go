package model

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	offerModel "bookstore-storefront/internal/domains/offer/model"
)

// PriceBreakdown là bản ghi giá của một dòng hàng, ghi một lần lúc đặt đơn.
// FinalPrice = PriceAfterOffer - CouponDiscount là số tiền khách thực trả cho dòng này
// và là căn cứ duy nhất cho mọi phép tính hoàn tiền về sau.
type PriceBreakdown struct {
	OriginalPrice    decimal.Decimal `json:"original_price"` // đơn giá gốc
	Subtotal         decimal.Decimal `json:"subtotal"`       // đơn giá gốc × số lượng
	OfferDiscount    decimal.Decimal `json:"offer_discount"`
	OfferTitle       string          `json:"offer_title,omitempty"`
	PriceAfterOffer  decimal.Decimal `json:"price_after_offer"`
	CouponDiscount   decimal.Decimal `json:"coupon_discount"`
	CouponProportion decimal.Decimal `json:"coupon_proportion"`
	FinalPrice       decimal.Decimal `json:"final_price"`
}

// LineInput là đầu vào của Builder cho một sản phẩm (mỗi product chỉ một dòng)
type LineInput struct {
	ProductID  uuid.UUID
	CategoryID uuid.UUID
	Title      string
	ImageURL   string
	UnitPrice  decimal.Decimal
	Quantity   int
	Offer      *offerModel.Offer // nil = không có offer
}

type QuoteLine struct {
	ProductID       uuid.UUID       `json:"product_id"`
	CategoryID      uuid.UUID       `json:"category_id"`
	Title           string          `json:"title"`
	ImageURL        string          `json:"image_url,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"` // đơn giá sau offer
	Quantity        int             `json:"quantity"`
	Breakdown       PriceBreakdown  `json:"price_breakdown"`
}

// Quote là báo giá hoàn chỉnh cho giỏ hàng/checkout session.
// Total = Subtotal - Discount - CouponDiscount + Tax
type Quote struct {
	Lines          []QuoteLine     `json:"lines"`
	CouponID       *uuid.UUID      `json:"coupon_id,omitempty"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"` // tổng offer discount
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// CartItem là một dòng khách gửi lên
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

const (
	ErrCodeEmptyCart          = "PRC001"
	ErrCodeProductUnavailable = "PRC002"
	ErrCodeInvalidQuantity    = "PRC003"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrDuplicateLine      = errors.New("product appears in more than one line")
	ErrProductUnavailable = errors.New("product is unavailable or out of stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

// UnavailableError chỉ rõ sản phẩm nào không mua được
type UnavailableError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *UnavailableError) Error() string {
	return ErrProductUnavailable.Error() + ": " + e.ProductID.String()
}

func (e *UnavailableError) Unwrap() error {
	return ErrProductUnavailable
}
