package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/offer/model"
)

// ServiceInterface là contract handler dùng
type ServiceInterface interface {
	Resolver
	BestOfferForProduct(ctx context.Context, productID uuid.UUID) (*model.BestOfferResponse, error)

	Create(ctx context.Context, req model.OfferRequest) (*model.Offer, error)
	Update(ctx context.Context, id uuid.UUID, req model.OfferRequest) (*model.Offer, error)
	Toggle(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	List(ctx context.Context, page, limit int) ([]*model.Offer, int, error)
	PreviewDiscount(ctx context.Context, id uuid.UUID, price decimal.Decimal) (model.DiscountResult, error)
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

var _ ServiceInterface = (*OfferService)(nil)
