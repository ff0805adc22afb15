package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookstore-storefront/internal/domains/checkout/model"
	pricingService "bookstore-storefront/internal/domains/pricing/service"
	"bookstore-storefront/pkg/cache"
	"bookstore-storefront/pkg/logger"
)

const sessionKeyPrefix = "checkout:session:"

// ServiceInterface là contract handler + order service dùng
type ServiceInterface interface {
	Start(ctx context.Context, userID uuid.UUID, req model.StartRequest) (*model.View, error)
	Get(ctx context.Context, userID uuid.UUID, token string) (*model.View, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, token, code string) (*model.View, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID, token string) (*model.View, error)
	// Consume xoá session sau khi đặt hàng thành công
	Consume(ctx context.Context, userID uuid.UUID, token string) error
}

type CheckoutService struct {
	cache  cache.Cache
	quoter pricingService.QuoterInterface
	ttl    time.Duration
	now    func() time.Time
}

func NewCheckoutService(c cache.Cache, quoter pricingService.QuoterInterface, ttl time.Duration) *CheckoutService {
	return &CheckoutService{
		cache:  c,
		quoter: quoter,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *CheckoutService) WithClock(now func() time.Time) *CheckoutService {
	s.now = now
	return s
}

var _ ServiceInterface = (*CheckoutService)(nil)

// Start tính báo giá trước, chỉ lưu session khi giỏ hàng (và coupon nếu có) hợp lệ
func (s *CheckoutService) Start(ctx context.Context, userID uuid.UUID, req model.StartRequest) (*model.View, error) {
	now := s.now()
	session := &model.Session{
		Token:           uuid.NewString(),
		UserID:          userID,
		Items:           req.CartItems(),
		CouponCode:      strings.TrimSpace(req.CouponCode),
		ShippingAddress: req.ShippingAddress.ToShippingAddress(),
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}

	quote, err := s.quoter.Quote(ctx, userID, session.Items, session.CouponCode)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("Checkout session started", map[string]interface{}{
		"user_id": userID.String(),
		"items":   len(session.Items),
		"total":   quote.Total.StringFixed(2),
	})
	return &model.View{Session: session, Quote: quote}, nil
}

// Get luôn tính lại báo giá: giá, offer, coupon có thể đã đổi từ lúc mở session
func (s *CheckoutService) Get(ctx context.Context, userID uuid.UUID, token string) (*model.View, error) {
	session, err := s.load(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoter.Quote(ctx, userID, session.Items, session.CouponCode)
	if err != nil {
		return nil, err
	}
	return &model.View{Session: session, Quote: quote}, nil
}

func (s *CheckoutService) ApplyCoupon(ctx context.Context, userID uuid.UUID, token, code string) (*model.View, error) {
	session, err := s.load(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	// coupon lỗi thì session giữ nguyên
	quote, err := s.quoter.Quote(ctx, userID, session.Items, code)
	if err != nil {
		return nil, err
	}

	session.CouponCode = strings.TrimSpace(code)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &model.View{Session: session, Quote: quote}, nil
}

func (s *CheckoutService) RemoveCoupon(ctx context.Context, userID uuid.UUID, token string) (*model.View, error) {
	session, err := s.load(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	session.CouponCode = ""
	quote, err := s.quoter.Quote(ctx, userID, session.Items, "")
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &model.View{Session: session, Quote: quote}, nil
}

func (s *CheckoutService) Consume(ctx context.Context, userID uuid.UUID, token string) error {
	if _, err := s.load(ctx, userID, token); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("delete checkout session: %w", err)
	}
	return nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *CheckoutService) load(ctx context.Context, userID uuid.UUID, token string) (*model.Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, model.ErrSessionNotFound
	}

	var session model.Session
	found, err := s.cache.Get(ctx, sessionKeyPrefix+token, &session)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	if !found || session.IsExpired(s.now()) {
		return nil, model.ErrSessionNotFound
	}
	if session.UserID != userID {
		logger.Warn("Checkout session accessed by another user", map[string]interface{}{
			"owner":   session.UserID.String(),
			"user_id": userID.String(),
		})
		return nil, model.ErrSessionOwner
	}
	return &session, nil
}

// save giữ nguyên ExpiresAt, TTL cache là thời gian còn lại
func (s *CheckoutService) save(ctx context.Context, session *model.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return model.ErrSessionNotFound
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+session.Token, session, ttl); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}
