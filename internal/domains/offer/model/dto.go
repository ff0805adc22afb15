package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ADMIN REQUESTS
// =====================================================

type OfferRequest struct {
	Title         string          `json:"title"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	AppliesTo     Scope           `json:"applies_to"`
	ProductIDs    []uuid.UUID     `json:"product_ids"`
	CategoryIDs   []uuid.UUID     `json:"category_ids"`
	IsActive      *bool           `json:"is_active"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
}

func (r OfferRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.DiscountType, validation.Required,
			validation.In(DiscountTypePercentage, DiscountTypeFixed)),
		validation.Field(&r.AppliesTo, validation.Required,
			validation.In(ScopeAllProducts, ScopeSpecificProducts, ScopeAllCategories, ScopeSpecificCategories)),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.EndDate, validation.Required),
		validation.Field(&r.ProductIDs,
			validation.When(r.AppliesTo == ScopeSpecificProducts, validation.Required),
			validation.When(r.AppliesTo != ScopeSpecificProducts, validation.Empty)),
		validation.Field(&r.CategoryIDs,
			validation.When(r.AppliesTo == ScopeSpecificCategories, validation.Required),
			validation.When(r.AppliesTo != ScopeSpecificCategories, validation.Empty)),
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
	if !r.EndDate.After(r.StartDate) {
		return errors.New("end_date must be after start_date")
	}
	return nil
}

// ToOffer map request sang entity, IsActive mặc định true
func (r OfferRequest) ToOffer() *Offer {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Offer{
		Title:         r.Title,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		AppliesTo:     r.AppliesTo,
		ProductIDs:    r.ProductIDs,
		CategoryIDs:   r.CategoryIDs,
		IsActive:      active,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
	}
}

// BestOfferResponse trả cho trang sản phẩm
type BestOfferResponse struct {
	Offer    *Offer          `json:"offer"`
	Price    decimal.Decimal `json:"price"`
	Discount DiscountResult  `json:"discount"`
}
