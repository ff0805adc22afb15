package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookstore-storefront/internal/domains/offer/model"
	productModel "bookstore-storefront/internal/domains/product/model"
	"bookstore-storefront/pkg/cache"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) ListLive(ctx context.Context, at time.Time) ([]*model.Offer, error) {
	args := m.Called(ctx, at)
	return args.Get(0).([]*model.Offer), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, page, limit int) ([]*model.Offer, int, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]*model.Offer), args.Int(1), args.Error(2)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Offer)
	return o, args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, o *model.Offer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockRepo) Update(ctx context.Context, o *model.Offer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Offer, error) {
	args := m.Called(ctx, id, active)
	o, _ := args.Get(0).(*model.Offer)
	return o, args.Error(1)
}

func (m *mockRepo) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

type stubProducts map[uuid.UUID]*productModel.Product

func (s stubProducts) GetByID(_ context.Context, id uuid.UUID) (*productModel.Product, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, productModel.ErrProductNotFound
}

func newTestService(repo *mockRepo) (*OfferService, cache.Cache) {
	c := cache.NewMemoryCache()
	products := stubProducts{
		productID: {ID: productID, CategoryID: catID, Price: d("500"), IsActive: true, Stock: 3},
	}
	svc := NewOfferService(repo, products, c, time.Minute).WithClock(func() time.Time { return now })
	return svc, c
}

func TestResolveBestOfferLooksUpCategory(t *testing.T) {
	repo := new(mockRepo)
	svc, _ := newTestService(repo)

	cat := newOffer("category sale", model.ScopeSpecificCategories, model.DiscountTypePercentage, "20")
	repo.On("ListLive", mock.Anything, now).Return([]*model.Offer{cat}, nil).Once()

	best, err := svc.ResolveBestOffer(context.Background(), productID, nil)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "category sale", best.Title)

	// lần hai đọc từ cache
	best, err = svc.ResolveBestOffer(context.Background(), productID, &catID)
	require.NoError(t, err)
	assert.Equal(t, "category sale", best.Title)
	repo.AssertExpectations(t)
}

func TestResolveBestOfferUnknownProduct(t *testing.T) {
	svc, _ := newTestService(new(mockRepo))

	_, err := svc.ResolveBestOffer(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, productModel.ErrProductNotFound)
}

func TestBestOfferForProduct(t *testing.T) {
	repo := new(mockRepo)
	svc, _ := newTestService(repo)

	repo.On("ListLive", mock.Anything, now).
		Return([]*model.Offer{newOffer("20 off", model.ScopeAllProducts, model.DiscountTypePercentage, "20")}, nil)

	res, err := svc.BestOfferForProduct(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, d("100").Equal(res.Discount.DiscountAmount))
	assert.True(t, d("400").Equal(res.Discount.FinalPrice))
}

func TestToggleInvalidatesCache(t *testing.T) {
	repo := new(mockRepo)
	svc, c := newTestService(repo)
	ctx := context.Background()

	o := newOffer("sale", model.ScopeAllProducts, model.DiscountTypeFixed, "10")
	require.NoError(t, c.Set(ctx, liveOffersCacheKey, []*model.Offer{o}, time.Minute))

	toggled := *o
	toggled.IsActive = false
	repo.On("GetByID", ctx, o.ID).Return(o, nil)
	repo.On("SetActive", ctx, o.ID, false).Return(&toggled, nil)

	got, err := svc.Toggle(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	var cached []*model.Offer
	found, err := c.Get(ctx, liveOffersCacheKey, &cached)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateRejectsInvalidRequest(t *testing.T) {
	repo := new(mockRepo)
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), model.OfferRequest{
		Title:         "Too much",
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: d("120"),
		AppliesTo:     model.ScopeAllProducts,
		StartDate:     now,
		EndDate:       now.Add(time.Hour),
	})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeactivateExpired(t *testing.T) {
	repo := new(mockRepo)
	svc, _ := newTestService(repo)

	repo.On("DeactivateExpired", mock.Anything, now).Return(int64(2), nil)

	n, err := svc.DeactivateExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
