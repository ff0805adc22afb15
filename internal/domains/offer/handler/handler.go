package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/offer/model"
	"bookstore-storefront/internal/domains/offer/service"
	productModel "bookstore-storefront/internal/domains/product/model"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/internal/shared/utils"
	"bookstore-storefront/pkg/logger"
)

type OfferHandler struct {
	service service.ServiceInterface
}

func NewOfferHandler(s service.ServiceInterface) *OfferHandler {
	return &OfferHandler{service: s}
}

// RegisterRoutes gắn route public
func (h *OfferHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/offer", h.GetBestOffer)
}

// RegisterAdminRoutes gắn route admin (router đã có Auth + Admin middleware)
func (h *OfferHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	offers := router.Group("/offers")
	{
		offers.GET("", h.List)
		offers.POST("", h.Create)
		offers.PUT("/:id", h.Update)
		offers.PATCH("/:id/toggle", h.Toggle)
		offers.GET("/:id/preview", h.Preview)
	}
}

// GetBestOffer godoc
// @Router /v1/products/{id}/offer [get]
func (h *OfferHandler) GetBestOffer(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid product ID", map[string]string{"code": model.ErrCodeOfferInvalid})
		return
	}

	result, err := h.service.BestOfferForProduct(c.Request.Context(), productID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Best offer resolved", result)
}

func (h *OfferHandler) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c)
	offers, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "Offers retrieved", offers, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *OfferHandler) Create(c *gin.Context) {
	var req model.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeOfferInvalid,
		})
		return
	}

	offer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Offer created", offer)
}

func (h *OfferHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid offer ID", map[string]string{"code": model.ErrCodeOfferInvalid})
		return
	}

	var req model.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeOfferInvalid,
		})
		return
	}

	offer, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Offer updated", offer)
}

func (h *OfferHandler) Toggle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid offer ID", map[string]string{"code": model.ErrCodeOfferInvalid})
		return
	}

	offer, err := h.service.Toggle(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Offer status updated", offer)
}

// Preview: /admin/offers/:id/preview?price=500
func (h *OfferHandler) Preview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid offer ID", map[string]string{"code": model.ErrCodeOfferInvalid})
		return
	}
	price, err := decimal.NewFromString(c.Query("price"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid price", map[string]string{"code": model.ErrCodeOfferInvalid})
		return
	}

	result, err := h.service.PreviewDiscount(c.Request.Context(), id, price)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Discount preview", result)
}

func (h *OfferHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrOfferNotFound):
		response.Error(c, http.StatusNotFound, "Offer not found", map[string]string{"code": model.ErrCodeOfferNotFound})
	case errors.Is(err, productModel.ErrProductNotFound):
		response.NotFound(c, "Product not found")
	default:
		logger.Error("Offer request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
