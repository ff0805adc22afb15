package main

import (
	"github.com/hibiken/asynq"

	couponJob "bookstore-storefront/internal/domains/coupon/job"
	offerJob "bookstore-storefront/internal/domains/offer/job"
	"bookstore-storefront/internal/shared"
	"bookstore-storefront/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	expireOffers  *offerJob.ExpireOffersHandler
	expireCoupons *couponJob.ExpireCouponsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		// offer service tự xoá cache danh sách live sau khi deactivate
		expireOffers:  offerJob.NewExpireOffersHandler(c.OfferService),
		expireCoupons: couponJob.NewExpireCouponsHandler(c.CouponService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeExpireOffers, h.expireOffers.ProcessTask)
	mux.HandleFunc(shared.TypeExpireCoupons, h.expireCoupons.ProcessTask)
}
