package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookstore-storefront/internal/domains/offer/model"
)

type Repository interface {
	// ListLive trả các offer đang bật và còn hiệu lực tại now
	ListLive(ctx context.Context, now time.Time) ([]*model.Offer, error)
	List(ctx context.Context, page, limit int) ([]*model.Offer, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	Create(ctx context.Context, offer *model.Offer) error
	Update(ctx context.Context, offer *model.Offer) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Offer, error)
	// DeactivateExpired tắt các offer đã qua EndDate, trả số dòng bị ảnh hưởng
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}
