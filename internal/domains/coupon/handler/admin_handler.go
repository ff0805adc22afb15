package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookstore-storefront/internal/domains/coupon/model"
	"bookstore-storefront/internal/domains/coupon/service"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/internal/shared/utils"
	"bookstore-storefront/pkg/logger"
)

// AdminHandler xử lý các API quản trị coupon (admin-only)
type AdminHandler struct {
	service service.ServiceInterface
}

func NewAdminHandler(s service.ServiceInterface) *AdminHandler {
	return &AdminHandler{service: s}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	coupons := router.Group("/coupons")
	{
		coupons.GET("", h.List)
		coupons.POST("", h.Create)
		coupons.GET("/:id", h.Get)
		coupons.PUT("/:id", h.Update)
		coupons.PATCH("/:id/toggle", h.Toggle)
	}
}

// -------------------------------------------------------------------
// CREATE & UPDATE
// -------------------------------------------------------------------

// Create godoc
// @Router /v1/admin/coupons [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req model.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Coupon created", coupon)
}

// Update godoc
// @Router /v1/admin/coupons/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	coupon, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon updated", coupon)
}

func (h *AdminHandler) Toggle(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	coupon, err := h.service.Toggle(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon status updated", coupon)
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	coupon, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon retrieved", coupon)
}

func (h *AdminHandler) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	coupons, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "Coupons retrieved", coupons, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *AdminHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid coupon ID", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeValidationFailed,
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) handleError(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		HandleAppError(c, appErr)
		return
	}

	logger.Error("Coupon admin request failed", err)
	response.Error(c, http.StatusInternalServerError, "Internal server error", gin.H{
		"code": model.ErrCodeInternalError,
	})
}

// HandleAppError ghi response cho lỗi coupon, checkout handler cũng dùng
func HandleAppError(c *gin.Context, appErr *model.AppError) {
	details := gin.H{"code": appErr.Code}
	for k, v := range appErr.Details {
		details[k] = v
	}
	response.Error(c, appErr.HTTPStatus, appErr.Message, details)
}
