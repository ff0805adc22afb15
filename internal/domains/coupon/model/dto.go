package model

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// CouponRequest dùng chung cho create/update (admin)
type CouponRequest struct {
	Code              string           `json:"code"`
	Description       string           `json:"description"`
	DiscountType      DiscountType     `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MaxDiscountValue  *decimal.Decimal `json:"max_discount_value"`
	MinOrderAmount    decimal.Decimal  `json:"min_order_amount"`
	StartDate         time.Time        `json:"start_date"`
	ExpiryDate        time.Time        `json:"expiry_date"`
	UsageLimitGlobal  *int             `json:"usage_limit_global"`
	UsageLimitPerUser *int             `json:"usage_limit_per_user"`
	CategoryIDs       []uuid.UUID      `json:"category_ids"`
	ProductIDs        []uuid.UUID      `json:"product_ids"`
	IsActive          *bool            `json:"is_active"`
}

// Validate gọi sau Normalize
func (r CouponRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("Coupon code is required"),
			validation.Length(3, 50),
			validation.Match(codePattern).Error("Code may only contain A-Z, 0-9, '_' and '-'"),
		),
		validation.Field(&r.DiscountType, validation.Required,
			validation.In(DiscountTypePercentage, DiscountTypeFixed)),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.ExpiryDate, validation.Required),
		validation.Field(&r.UsageLimitGlobal, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.UsageLimitPerUser, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
	if err != nil {
		return err
	}

	if !r.DiscountValue.IsPositive() {
		return errors.New("discount_value must be positive")
	}
	if r.DiscountType == DiscountTypePercentage && r.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("percentage discount cannot exceed 100")
	}
	if r.MaxDiscountValue != nil {
		if r.DiscountType != DiscountTypePercentage {
			return errors.New("max_discount_value only applies to percentage coupons")
		}
		if !r.MaxDiscountValue.IsPositive() {
			return errors.New("max_discount_value must be positive")
		}
	}
	if r.MinOrderAmount.IsNegative() {
		return errors.New("min_order_amount cannot be negative")
	}
	if !r.ExpiryDate.After(r.StartDate) {
		return errors.New("expiry_date must be after start_date")
	}
	return nil
}

// Normalize uppercase code trước khi validate/lưu
func (r *CouponRequest) Normalize() {
	r.Code = NormalizeCode(r.Code)
}

func (r CouponRequest) ToCoupon() *Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Coupon{
		Code:              r.Code,
		Description:       r.Description,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		MaxDiscountValue:  r.MaxDiscountValue,
		MinOrderAmount:    r.MinOrderAmount,
		StartDate:         r.StartDate,
		ExpiryDate:        r.ExpiryDate,
		UsageLimitGlobal:  r.UsageLimitGlobal,
		UsageLimitPerUser: r.UsageLimitPerUser,
		CategoryIDs:       r.CategoryIDs,
		ProductIDs:        r.ProductIDs,
		IsActive:          active,
	}
}

// Line là một dòng giỏ hàng dùng để validate coupon: đã có category và đơn giá sau offer
type Line struct {
	ProductID       uuid.UUID
	CategoryID      uuid.UUID
	DiscountedPrice decimal.Decimal
	Quantity        int
}

// Subtotal = đơn giá sau offer × số lượng
func (l Line) Subtotal() decimal.Decimal {
	return l.DiscountedPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validation là kết quả Validate: coupon dùng được + các dòng được áp
type Validation struct {
	Coupon        *Coupon
	EligibleLines []Line
}
