package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/internal/domains/wallet/service"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/internal/shared/utils"
	"bookstore-storefront/pkg/logger"
)

type WalletHandler struct {
	service service.ServiceInterface
}

func NewWalletHandler(s service.ServiceInterface) *WalletHandler {
	return &WalletHandler{service: s}
}

// RegisterRoutes: router đã qua AuthMiddleware
func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/wallet", h.GetMyWallet)
}

func (h *WalletHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/wallets/funds", h.AddFunds)
}

// GetMyWallet godoc
// @Router /v1/wallet [get]
func (h *WalletHandler) GetMyWallet(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	page, limit := utils.ParsePagination(c)

	view, err := h.service.GetWallet(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "Wallet retrieved", view, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: view.Total,
	})
}

// AddFunds godoc
// @Router /v1/admin/wallets/funds [post]
func (h *WalletHandler) AddFunds(c *gin.Context) {
	var req model.AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeInvalidAmount,
		})
		return
	}

	txn, err := h.service.AddFunds(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Funds added", txn)
}

func (h *WalletHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidAmount):
		response.Error(c, http.StatusBadRequest, "Amount must be positive", map[string]string{"code": model.ErrCodeInvalidAmount})
	case errors.Is(err, model.ErrInsufficientBalance):
		response.Error(c, http.StatusUnprocessableEntity, "Insufficient wallet balance", map[string]string{"code": model.ErrCodeInsufficientBalance})
	case errors.Is(err, model.ErrDuplicateTransaction):
		response.Error(c, http.StatusConflict, "Transaction already recorded", map[string]string{"code": model.ErrCodeDuplicate})
	default:
		logger.Error("Wallet request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
