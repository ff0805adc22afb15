package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/coupon/model"
	"bookstore-storefront/internal/domains/coupon/repository"
	"bookstore-storefront/pkg/logger"
)

// ServiceInterface là contract cho handler, pricing và order
type ServiceInterface interface {
	Validate(ctx context.Context, code string, userID uuid.UUID, lines []model.Line) (*model.Validation, error)
	RecordUsageWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) error

	Create(ctx context.Context, req model.CouponRequest) (*model.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, req model.CouponRequest) (*model.Coupon, error)
	Toggle(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

type CouponService struct {
	repo repository.Repository
	now  func() time.Time
}

func NewCouponService(repo repository.Repository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

func (s *CouponService) WithClock(now func() time.Time) *CouponService {
	s.now = now
	return s
}

var _ ServiceInterface = (*CouponService)(nil)

// Validate kiểm tra coupon có dùng được cho giỏ hàng này không.
//
// Thứ tự kiểm tra: tồn tại → active → thời hạn → phạm vi áp dụng → đơn tối thiểu → limit global → limit user.
// Đơn tối thiểu so với subtotal sau offer của toàn giỏ.
func (s *CouponService) Validate(ctx context.Context, code string, userID uuid.UUID, lines []model.Line) (*model.Validation, error) {
	coupon, err := s.repo.GetByCode(ctx, model.NormalizeCode(code), &userID)
	if err != nil {
		return nil, err
	}
	return CheckEligibility(coupon, userID, lines, s.now())
}

// CheckEligibility là phần thuần của Validate, tách ra để test không cần repository
func CheckEligibility(coupon *model.Coupon, userID uuid.UUID, lines []model.Line, now time.Time) (*model.Validation, error) {
	if !coupon.IsActive {
		return nil, model.ErrCouponInactive
	}
	if now.Before(coupon.StartDate) {
		return nil, model.ErrCouponNotStarted
	}
	if now.After(coupon.ExpiryDate) {
		return nil, model.ErrCouponExpired
	}

	subtotal := decimal.Zero
	eligible := make([]model.Line, 0, len(lines))
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
		if coupon.AppliesTo(l.ProductID, l.CategoryID) {
			eligible = append(eligible, l)
		}
	}
	if len(eligible) == 0 {
		return nil, model.ErrNotApplicable
	}

	if subtotal.LessThan(coupon.MinOrderAmount) {
		return nil, model.ErrMinOrderNotMet.WithDetails(map[string]interface{}{
			"min_order_amount": coupon.MinOrderAmount.StringFixed(2),
			"subtotal":         subtotal.StringFixed(2),
		})
	}
	if coupon.UsageLimitGlobal != nil && coupon.UsedCount >= *coupon.UsageLimitGlobal {
		return nil, model.ErrUsageLimitReached
	}
	if coupon.UsageLimitPerUser != nil && coupon.UsageBy(userID) >= *coupon.UsageLimitPerUser {
		return nil, model.ErrUserLimitReached
	}

	return &model.Validation{Coupon: coupon, EligibleLines: eligible}, nil
}

func (s *CouponService) RecordUsageWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) error {
	return s.repo.RecordUsageWithTx(ctx, tx, couponID, userID)
}

// =====================================================
// ADMIN
// =====================================================

func (s *CouponService) Create(ctx context.Context, req model.CouponRequest) (*model.Coupon, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.ErrInvalidRequest.WithDetails(map[string]interface{}{"info": err.Error()})
	}

	coupon := req.ToCoupon()
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	logger.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID.String(),
		"code":      coupon.Code,
	})
	return coupon, nil
}

func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req model.CouponRequest) (*model.Coupon, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.ErrInvalidRequest.WithDetails(map[string]interface{}{"info": err.Error()})
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	coupon := req.ToCoupon()
	coupon.ID = id
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) Toggle(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.SetActive(ctx, id, !current.IsActive)
}

func (s *CouponService) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CouponService) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *CouponService) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.DeactivateExpired(ctx, asOf)
}
