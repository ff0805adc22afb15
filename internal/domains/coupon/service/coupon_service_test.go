package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-storefront/internal/domains/coupon/model"
)

var (
	now    = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	userID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
)

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func liveCoupon() *model.Coupon {
	c := fixedCoupon("100")
	c.ID = uuid.New()
	c.Code = "SAVE100"
	c.MinOrderAmount = d("500")
	c.StartDate = now.Add(-time.Hour)
	c.ExpiryDate = now.Add(time.Hour)
	return c
}

func cartLines() []model.Line {
	return []model.Line{
		{ProductID: uuid.New(), CategoryID: uuid.New(), DiscountedPrice: d("300"), Quantity: 1},
		{ProductID: uuid.New(), CategoryID: uuid.New(), DiscountedPrice: d("350"), Quantity: 2},
	}
}

func TestCheckEligibility(t *testing.T) {
	lines := cartLines()

	tests := []struct {
		name    string
		mutate  func(c *model.Coupon)
		lines   []model.Line
		wantErr error
	}{
		{name: "valid", mutate: func(*model.Coupon) {}},
		{name: "inactive", mutate: func(c *model.Coupon) { c.IsActive = false }, wantErr: model.ErrCouponInactive},
		{name: "not started", mutate: func(c *model.Coupon) { c.StartDate = now.Add(time.Minute) }, wantErr: model.ErrCouponNotStarted},
		{name: "expired", mutate: func(c *model.Coupon) { c.ExpiryDate = now.Add(-time.Minute) }, wantErr: model.ErrCouponExpired},
		{name: "below minimum", mutate: func(c *model.Coupon) { c.MinOrderAmount = d("1000.01") }, wantErr: model.ErrMinOrderNotMet},
		{name: "minimum is inclusive", mutate: func(c *model.Coupon) { c.MinOrderAmount = d("1000") }},
		{
			name: "global limit reached",
			mutate: func(c *model.Coupon) {
				c.UsageLimitGlobal = intPtr(5)
				c.UsedCount = 5
			},
			wantErr: model.ErrUsageLimitReached,
		},
		{
			name: "user limit reached",
			mutate: func(c *model.Coupon) {
				c.UsageLimitPerUser = intPtr(1)
				c.UsedBy = []model.Usage{{UserID: userID, Count: 1, UsedAt: now}}
			},
			wantErr: model.ErrUserLimitReached,
		},
		{
			name: "other user's usage does not count",
			mutate: func(c *model.Coupon) {
				c.UsageLimitPerUser = intPtr(1)
				c.UsedBy = []model.Usage{{UserID: uuid.New(), Count: 1, UsedAt: now}}
			},
		},
		{
			name:    "restricted to products not in cart",
			mutate:  func(c *model.Coupon) { c.ProductIDs = []uuid.UUID{uuid.New()} },
			wantErr: model.ErrNotApplicable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := liveCoupon()
			tt.mutate(c)

			v, err := CheckEligibility(c, userID, lines, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.Len(t, v.EligibleLines, 2)
		})
	}
}

func TestCheckEligibilityRestrictedToCategory(t *testing.T) {
	lines := cartLines()
	c := liveCoupon()
	c.CategoryIDs = []uuid.UUID{lines[1].CategoryID}

	v, err := CheckEligibility(c, userID, lines, now)
	require.NoError(t, err)
	require.Len(t, v.EligibleLines, 1)
	assert.Equal(t, lines[1].ProductID, v.EligibleLines[0].ProductID)
}

type stubRepo struct {
	coupon   *model.Coupon
	codeSeen string
}

func (s *stubRepo) GetByCode(_ context.Context, code string, _ *uuid.UUID) (*model.Coupon, error) {
	s.codeSeen = code
	if s.coupon == nil || s.coupon.Code != code {
		return nil, model.ErrCouponNotFound
	}
	return s.coupon, nil
}
func (s *stubRepo) GetByID(context.Context, uuid.UUID) (*model.Coupon, error) { return s.coupon, nil }
func (s *stubRepo) List(context.Context, int, int) ([]*model.Coupon, int, error) {
	return nil, 0, nil
}
func (s *stubRepo) Create(_ context.Context, c *model.Coupon) error {
	c.ID = uuid.New()
	s.coupon = c
	return nil
}
func (s *stubRepo) Update(context.Context, *model.Coupon) error { return nil }
func (s *stubRepo) SetActive(_ context.Context, _ uuid.UUID, active bool) (*model.Coupon, error) {
	cp := *s.coupon
	cp.IsActive = active
	return &cp, nil
}
func (s *stubRepo) DeactivateExpired(context.Context, time.Time) (int64, error) { return 0, nil }
func (s *stubRepo) RecordUsageWithTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) error {
	return nil
}

func TestValidateNormalizesCode(t *testing.T) {
	repo := &stubRepo{coupon: liveCoupon()}
	svc := NewCouponService(repo).WithClock(func() time.Time { return now })

	v, err := svc.Validate(context.Background(), "  save100 ", userID, cartLines())
	require.NoError(t, err)
	assert.Equal(t, "SAVE100", repo.codeSeen)
	assert.Equal(t, "SAVE100", v.Coupon.Code)

	_, err = svc.Validate(context.Background(), "NOPE", userID, cartLines())
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
}

func TestCreateValidatesRequest(t *testing.T) {
	repo := &stubRepo{}
	svc := NewCouponService(repo)

	_, err := svc.Create(context.Background(), model.CouponRequest{
		Code:             "flat50",
		DiscountType:     model.DiscountTypeFixed,
		DiscountValue:    d("50"),
		MaxDiscountValue: decPtr("10"),
		StartDate:        now,
		ExpiryDate:       now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	created, err := svc.Create(context.Background(), model.CouponRequest{
		Code:          "flat50",
		DiscountType:  model.DiscountTypeFixed,
		DiscountValue: d("50"),
		StartDate:     now,
		ExpiryDate:    now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "FLAT50", created.Code)
	assert.True(t, created.IsActive)
}
