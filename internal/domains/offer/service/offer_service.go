package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/offer/model"
	"bookstore-storefront/internal/domains/offer/repository"
	productModel "bookstore-storefront/internal/domains/product/model"
	"bookstore-storefront/pkg/cache"
	"bookstore-storefront/pkg/logger"
)

const liveOffersCacheKey = "offers:live"

// ProductReader là phần product repository mà resolver cần
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*productModel.Product, error)
}

// Resolver là contract pricing dùng để lấy offer tốt nhất cho một sản phẩm
type Resolver interface {
	ResolveBestOffer(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) (*model.Offer, error)
}

type OfferService struct {
	repo     repository.Repository
	products ProductReader
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
}

func NewOfferService(repo repository.Repository, products ProductReader, c cache.Cache, ttl time.Duration) *OfferService {
	return &OfferService{
		repo:     repo,
		products: products,
		cache:    c,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock dùng cho test
func (s *OfferService) WithClock(now func() time.Time) *OfferService {
	s.now = now
	return s
}

// ResolveBestOffer tìm offer tốt nhất; categoryID nil thì tra qua product
func (s *OfferService) ResolveBestOffer(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) (*model.Offer, error) {
	if categoryID == nil {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("resolve category for product %s: %w", productID, err)
		}
		categoryID = &p.CategoryID
	}

	offers, err := s.liveOffers(ctx)
	if err != nil {
		return nil, err
	}
	return SelectBestOffer(offers, productID, categoryID, s.now()), nil
}

// BestOfferForProduct dùng cho endpoint public: offer + discount trên giá hiện tại
func (s *OfferService) BestOfferForProduct(ctx context.Context, productID uuid.UUID) (*model.BestOfferResponse, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	offer, err := s.ResolveBestOffer(ctx, p.ID, &p.CategoryID)
	if err != nil {
		return nil, err
	}
	return &model.BestOfferResponse{
		Offer:    offer,
		Price:    p.Price,
		Discount: CalculateDiscount(offer, p.Price),
	}, nil
}

// liveOffers đọc cache trước; cache lỗi thì fallback DB, không fail request
func (s *OfferService) liveOffers(ctx context.Context) ([]*model.Offer, error) {
	return cache.Remember(ctx, s.cache, liveOffersCacheKey, s.ttl, func(ctx context.Context) ([]*model.Offer, error) {
		return s.repo.ListLive(ctx, s.now())
	})
}

func (s *OfferService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, liveOffersCacheKey); err != nil {
		logger.Error("Failed to invalidate live offers cache", err)
	}
}

// =====================================================
// ADMIN
// =====================================================

func (s *OfferService) Create(ctx context.Context, req model.OfferRequest) (*model.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	offer := req.ToOffer()
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	s.invalidate(ctx)

	logger.Info("Offer created", map[string]interface{}{
		"offer_id":   offer.ID.String(),
		"applies_to": string(offer.AppliesTo),
	})
	return offer, nil
}

func (s *OfferService) Update(ctx context.Context, id uuid.UUID, req model.OfferRequest) (*model.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	offer := req.ToOffer()
	offer.ID = id
	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return offer, nil
}

// Toggle đảo trạng thái active (admin soft-disable, không xoá)
func (s *OfferService) Toggle(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	offer, err := s.repo.SetActive(ctx, id, !current.IsActive)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return offer, nil
}

func (s *OfferService) List(ctx context.Context, page, limit int) ([]*model.Offer, int, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *OfferService) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

// PreviewDiscount tiện cho admin xem trước một offer trên giá bất kỳ
func (s *OfferService) PreviewDiscount(ctx context.Context, id uuid.UUID, price decimal.Decimal) (model.DiscountResult, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.DiscountResult{}, err
	}
	return CalculateDiscount(offer, price), nil
}
