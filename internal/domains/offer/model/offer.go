package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Scope là phạm vi áp dụng của offer
type Scope string

const (
	ScopeAllProducts        Scope = "all_products"
	ScopeSpecificProducts   Scope = "specific_products"
	ScopeAllCategories      Scope = "all_categories"
	ScopeSpecificCategories Scope = "specific_categories"
)

// Priority: số nhỏ hơn thắng. Offer càng cụ thể càng được ưu tiên.
func (s Scope) Priority() int {
	switch s {
	case ScopeSpecificProducts:
		return 1
	case ScopeSpecificCategories:
		return 2
	case ScopeAllProducts:
		return 3
	case ScopeAllCategories:
		return 4
	default:
		return 99
	}
}

func (s Scope) IsValid() bool {
	return s.Priority() != 99
}

// Offer là khuyến mãi tự động theo sản phẩm/danh mục (không cần nhập mã)
type Offer struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	AppliesTo     Scope           `json:"applies_to"`
	ProductIDs    []uuid.UUID     `json:"product_ids"`
	CategoryIDs   []uuid.UUID     `json:"category_ids"`
	IsActive      bool            `json:"is_active"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsLive: đang bật và now nằm trong [StartDate, EndDate]
func (o *Offer) IsLive(now time.Time) bool {
	return o.IsActive && !now.Before(o.StartDate) && !now.After(o.EndDate)
}

// Matches kiểm tra offer có áp dụng cho product/category này không
func (o *Offer) Matches(productID uuid.UUID, categoryID *uuid.UUID) bool {
	switch o.AppliesTo {
	case ScopeAllProducts, ScopeAllCategories:
		return true
	case ScopeSpecificProducts:
		return containsID(o.ProductIDs, productID)
	case ScopeSpecificCategories:
		return categoryID != nil && containsID(o.CategoryIDs, *categoryID)
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// DiscountResult là kết quả áp offer lên một đơn giá
type DiscountResult struct {
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	FinalPrice         decimal.Decimal `json:"final_price"`
}
