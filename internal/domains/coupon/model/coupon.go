package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (dt DiscountType) IsValid() bool {
	switch dt {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// Coupon là mã giảm giá khách nhập ở checkout
type Coupon struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"` // luôn uppercase
	Description      string           `json:"description,omitempty"`
	DiscountType     DiscountType     `json:"discount_type"`
	DiscountValue    decimal.Decimal  `json:"discount_value"`
	MaxDiscountValue *decimal.Decimal `json:"max_discount_value,omitempty"` // chỉ cho percentage
	MinOrderAmount   decimal.Decimal  `json:"min_order_amount"`

	StartDate  time.Time `json:"start_date"`
	ExpiryDate time.Time `json:"expiry_date"`

	UsageLimitGlobal  *int    `json:"usage_limit_global,omitempty"`
	UsageLimitPerUser *int    `json:"usage_limit_per_user,omitempty"`
	UsedCount         int     `json:"used_count"`
	UsedBy            []Usage `json:"used_by,omitempty"`

	// Rỗng cả hai = áp dụng toàn đơn
	CategoryIDs []uuid.UUID `json:"category_ids"`
	ProductIDs  []uuid.UUID `json:"product_ids"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usage là số lần một user đã dùng coupon
type Usage struct {
	UserID uuid.UUID `json:"user_id"`
	Count  int       `json:"count"`
	UsedAt time.Time `json:"used_at"`
}

// NormalizeCode chuẩn hoá mã: trim + uppercase
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsRestricted: coupon chỉ áp dụng cho một số danh mục/sản phẩm
func (c *Coupon) IsRestricted() bool {
	return len(c.CategoryIDs) > 0 || len(c.ProductIDs) > 0
}

// AppliesTo kiểm tra một dòng hàng có nằm trong phạm vi coupon không
func (c *Coupon) AppliesTo(productID, categoryID uuid.UUID) bool {
	if !c.IsRestricted() {
		return true
	}
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	for _, id := range c.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// UsageBy trả số lần userID đã dùng
func (c *Coupon) UsageBy(userID uuid.UUID) int {
	for _, u := range c.UsedBy {
		if u.UserID == userID {
			return u.Count
		}
	}
	return 0
}

// ApportionItem là một dòng hàng đã trừ offer, đầu vào của Apportion
type ApportionItem struct {
	ProductID       uuid.UUID
	DiscountedPrice decimal.Decimal // đơn giá sau offer
	Quantity        int
}

// ItemDiscount là phần coupon chia cho một dòng hàng
type ItemDiscount struct {
	Amount     decimal.Decimal `json:"amount"`
	Proportion decimal.Decimal `json:"proportion"`
}

type Apportionment struct {
	TotalDiscount decimal.Decimal            `json:"total_discount"`
	ItemDiscounts map[uuid.UUID]ItemDiscount `json:"item_discounts"`
}

// For trả phần chia cho productID, không có thì zero
func (a Apportionment) For(productID uuid.UUID) ItemDiscount {
	if d, ok := a.ItemDiscounts[productID]; ok {
		return d
	}
	return ItemDiscount{Amount: decimal.Zero, Proportion: decimal.Zero}
}
