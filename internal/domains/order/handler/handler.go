package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	checkoutHandler "bookstore-storefront/internal/domains/checkout/handler"
	"bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/order/service"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/internal/shared/utils"
	"bookstore-storefront/pkg/logger"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers customer order routes (router đã có AuthMiddleware)
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	userRoutes := router.Group("/orders")
	{
		userRoutes.POST("", h.PlaceOrder)                                 // POST /v1/orders
		userRoutes.GET("", h.ListOrders)                                  // GET /v1/orders?page=1&limit=20&status=Placed
		userRoutes.GET("/:id", h.GetOrder)                                // GET /v1/orders/:id
		userRoutes.PATCH("/:id/cancel", h.CancelOrder)                    // PATCH /v1/orders/:id/cancel
		userRoutes.PATCH("/:id/items/:itemId/cancel", h.CancelItem)       // PATCH /v1/orders/:id/items/:itemId/cancel
		userRoutes.POST("/:id/return", h.RequestReturn)                   // POST /v1/orders/:id/return
		userRoutes.POST("/:id/items/:itemId/return", h.RequestItemReturn) // POST /v1/orders/:id/items/:itemId/return
	}
}

// RegisterAdminRoutes: router đã có Auth + Admin middleware
func (h *OrderHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	adminRoutes := router.Group("/orders")
	{
		adminRoutes.GET("", h.ListAllOrders)                      // GET /v1/admin/orders
		adminRoutes.GET("/:id", h.GetOrderAdmin)                  // GET /v1/admin/orders/:id
		adminRoutes.PATCH("/:id/status", h.UpdateOrderStatus)     // PATCH /v1/admin/orders/:id/status
		adminRoutes.POST("/:id/returns/approve", h.ApproveReturn) // ?item_id= tuỳ chọn
		adminRoutes.POST("/:id/returns/reject", h.RejectReturn)   // ?item_id= tuỳ chọn
		adminRoutes.POST("/:id/refunds/retry", h.RetryRefund)
	}
}

// =====================================================
// PLACE ORDER
// =====================================================

// PlaceOrder godoc
// @Summary Place order from a checkout session
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body model.PlaceOrderRequest true "Place order request"
// @Success 201 {object} response.Response{data=model.PlaceOrderResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /v1/orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req model.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeInvalidOrder,
		})
		return
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Order placed successfully", result)
}

// =====================================================
// READ
// =====================================================

// ListOrders godoc
// @Router /v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), userID, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "Orders retrieved", orders, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// GetOrder godoc
// @Router /v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved", order)
}

// =====================================================
// CANCEL / RETURN (CUSTOMER)
// =====================================================

// CancelOrder godoc
// @Summary Cancel the remaining items of an order and refund them
// @Router /v1/orders/{id}/cancel [patch]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.CancelRequest
	if !h.bindOptional(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{"info": err.Error()})
		return
	}

	result, err := h.orderService.CancelOrder(c.Request.Context(), orderID, userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order cancelled", result)
}

// CancelItem godoc
// @Router /v1/orders/{id}/items/{itemId}/cancel [patch]
func (h *OrderHandler) CancelItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req model.CancelRequest
	if !h.bindOptional(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{"info": err.Error()})
		return
	}

	result, err := h.orderService.CancelItem(c.Request.Context(), orderID, itemID, userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Item cancelled", result)
}

func (h *OrderHandler) RequestReturn(c *gin.Context) {
	h.requestReturn(c, nil)
}

func (h *OrderHandler) RequestItemReturn(c *gin.Context) {
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}
	h.requestReturn(c, &itemID)
}

func (h *OrderHandler) requestReturn(c *gin.Context, itemID *uuid.UUID) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.RequestReturn(c.Request.Context(), orderID, itemID, userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Return requested", order)
}

// =====================================================
// ADMIN
// =====================================================

// ListAllOrders godoc
// @Router /v1/admin/orders [get]
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListAllOrders(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "Orders retrieved", orders, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

func (h *OrderHandler) GetOrderAdmin(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderAdmin(c.Request.Context(), orderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved", order)
}

// UpdateOrderStatus godoc
// @Router /v1/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order status updated", result)
}

func (h *OrderHandler) ApproveReturn(c *gin.Context) {
	orderID, itemID, ok := h.orderAndOptionalItem(c)
	if !ok {
		return
	}

	result, err := h.orderService.ApproveReturn(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Return approved", result)
}

func (h *OrderHandler) RejectReturn(c *gin.Context) {
	orderID, itemID, ok := h.orderAndOptionalItem(c)
	if !ok {
		return
	}

	order, err := h.orderService.RejectReturn(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Return rejected", order)
}

// RetryRefund godoc
// @Summary Re-run the refund for a cancellation or return event
// @Router /v1/admin/orders/{id}/refunds/retry [post]
func (h *OrderHandler) RetryRefund(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.RetryRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	outcome, err := h.orderService.RetryRefund(c.Request.Context(), orderID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Refund processed", outcome)
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

func (h *OrderHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", map[string]string{
			"code": model.ErrCodeUnauthorized,
		})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *OrderHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid "+name, map[string]string{
			"code": model.ErrCodeInvalidOrder,
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) orderAndOptionalItem(c *gin.Context) (uuid.UUID, *uuid.UUID, bool) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return uuid.Nil, nil, false
	}

	raw := c.Query("item_id")
	if raw == "" {
		return orderID, nil, true
	}
	itemID, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid item_id", map[string]string{
			"code": model.ErrCodeItemNotFound,
		})
		return uuid.Nil, nil, false
	}
	return orderID, &itemID, true
}

// bindOptional: body rỗng được chấp nhận (cancel không bắt buộc lý do)
func (h *OrderHandler) bindOptional(c *gin.Context, dest interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

func (h *OrderHandler) parseFilter(c *gin.Context) (model.ListFilter, bool) {
	page, limit := utils.ParsePagination(c)
	filter := model.ListFilter{Page: page, Limit: limit}

	if raw := c.Query("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.IsValid() {
			response.Error(c, http.StatusBadRequest, "Invalid status filter", map[string]string{
				"code": model.ErrCodeInvalidStatus,
			})
			return filter, false
		}
		filter.Status = &status
	}
	return filter, true
}

// handleServiceError maps service errors to HTTP responses
func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	// Check if it's a custom OrderError
	var orderErr *model.OrderError
	if errors.As(err, &orderErr) {
		statusCode := h.getHTTPStatusFromErrorCode(orderErr.Code)
		if statusCode >= http.StatusInternalServerError {
			logger.Error(orderErr.Message, err)
		}
		response.Error(c, statusCode, orderErr.Message, map[string]string{
			"code": orderErr.Code,
		})
		return
	}

	// lỗi session / coupon / stock từ bước báo giá
	checkoutHandler.HandleQuoteError(c, err)
}

// getHTTPStatusFromErrorCode maps business error codes to HTTP status codes
func (h *OrderHandler) getHTTPStatusFromErrorCode(code string) int {
	statusMap := map[string]int{
		model.ErrCodeOrderNotFound:        http.StatusNotFound,
		model.ErrCodeOrderCannotCancel:    http.StatusUnprocessableEntity,
		model.ErrCodeVersionMismatch:      http.StatusConflict,
		model.ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
		model.ErrCodeItemNotFound:         http.StatusNotFound,
		model.ErrCodeInvalidTransition:    http.StatusUnprocessableEntity,
		model.ErrCodeSessionInvalid:       http.StatusBadRequest,
		model.ErrCodeInsufficientWallet:   http.StatusPaymentRequired,
		model.ErrCodeInvalidAddress:       http.StatusBadRequest,
		model.ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
		model.ErrCodeUnauthorized:         http.StatusForbidden,
		model.ErrCodeInvalidStatus:        http.StatusBadRequest,
		model.ErrCodeReturnNotAllowed:     http.StatusUnprocessableEntity,
		model.ErrCodeInvalidOrder:         http.StatusBadRequest,
		model.ErrCodeRefundFailed:         http.StatusInternalServerError,
		model.ErrCodeNothingToRetry:       http.StatusUnprocessableEntity,
	}

	if status, ok := statusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
