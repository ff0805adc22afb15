package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-storefront/internal/domains/checkout/model"
	"bookstore-storefront/internal/domains/checkout/service"
	couponHandler "bookstore-storefront/internal/domains/coupon/handler"
	couponModel "bookstore-storefront/internal/domains/coupon/model"
	pricingModel "bookstore-storefront/internal/domains/pricing/model"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/internal/shared/utils"
	"bookstore-storefront/pkg/logger"
)

type CheckoutHandler struct {
	service     service.ServiceInterface
	couponLimit gin.HandlerFunc
}

// NewCheckoutHandler: couponLimit là middleware rate limit cho endpoint apply coupon (nil = không giới hạn)
func NewCheckoutHandler(s service.ServiceInterface, couponLimit gin.HandlerFunc) *CheckoutHandler {
	return &CheckoutHandler{service: s, couponLimit: couponLimit}
}

// RegisterRoutes: router đã có AuthMiddleware
func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/checkout/sessions")
	{
		sessions.POST("", h.Start)
		sessions.GET("/:token", h.Get)
		if h.couponLimit != nil {
			sessions.POST("/:token/coupon", h.couponLimit, h.ApplyCoupon)
		} else {
			sessions.POST("/:token/coupon", h.ApplyCoupon)
		}
		sessions.DELETE("/:token/coupon", h.RemoveCoupon)
	}
}

// Start godoc
// @Router /v1/checkout/sessions [post]
func (h *CheckoutHandler) Start(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeSessionInvalid,
		})
		return
	}

	view, err := h.service.Start(c.Request.Context(), userID, req)
	if err != nil {
		HandleQuoteError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Checkout session started", view)
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	view, err := h.service.Get(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		HandleQuoteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Checkout session retrieved", view)
}

func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": couponModel.ErrCodeValidationFailed,
		})
		return
	}

	view, err := h.service.ApplyCoupon(c.Request.Context(), userID, c.Param("token"), req.Code)
	if err != nil {
		HandleQuoteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon applied", view)
}

func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	view, err := h.service.RemoveCoupon(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		HandleQuoteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon removed", view)
}

// HandleQuoteError map lỗi session / báo giá / coupon sang HTTP.
// Order handler dùng lại khi đặt hàng từ session.
func HandleQuoteError(c *gin.Context, err error) {
	var appErr *couponModel.AppError
	if errors.As(err, &appErr) {
		couponHandler.HandleAppError(c, appErr)
		return
	}

	var unavailable *pricingModel.UnavailableError
	if errors.As(err, &unavailable) {
		response.Error(c, http.StatusConflict, "Product unavailable", gin.H{
			"code":       pricingModel.ErrCodeProductUnavailable,
			"product_id": unavailable.ProductID.String(),
			"requested":  unavailable.Requested,
			"available":  unavailable.Available,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), gin.H{"code": model.ErrCodeSessionNotFound})
	case errors.Is(err, model.ErrSessionOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, pricingModel.ErrEmptyCart):
		response.Error(c, http.StatusBadRequest, err.Error(), gin.H{"code": pricingModel.ErrCodeEmptyCart})
	case errors.Is(err, pricingModel.ErrInvalidQuantity), errors.Is(err, pricingModel.ErrDuplicateLine):
		response.Error(c, http.StatusBadRequest, err.Error(), gin.H{"code": pricingModel.ErrCodeInvalidQuantity})
	default:
		logger.Error("Checkout request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
