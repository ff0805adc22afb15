package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookstore-storefront/internal/domains/coupon/model"
)

type Repository interface {
	// GetByCode trả coupon kèm usage của userID (nil = không cần usage)
	GetByCode(ctx context.Context, code string, userID *uuid.UUID) (*model.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Coupon, error)
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)

	// RecordUsageWithTx tăng used_count và usage của user trong cùng transaction đặt hàng.
	// Giới hạn global/per-user được kiểm tra ngay trong câu UPDATE nên hai đơn song song
	// không thể cùng vượt limit.
	RecordUsageWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) error
}
