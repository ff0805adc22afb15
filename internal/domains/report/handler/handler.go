package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-storefront/internal/domains/report/model"
	"bookstore-storefront/internal/domains/report/service"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/pkg/logger"
)

type ReportHandler struct {
	service service.ServiceInterface
}

func NewReportHandler(s service.ServiceInterface) *ReportHandler {
	return &ReportHandler{service: s}
}

// RegisterAdminRoutes: router đã có Auth + Admin middleware
func (h *ReportHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/reports/sales", h.SalesReport)
}

// SalesReport godoc
// @Summary Export sales report (xlsx). store=true uploads it and returns a download link
// @Router /v1/admin/reports/sales [get]
func (h *ReportHandler) SalesReport(c *gin.Context) {
	var req model.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", gin.H{
			"info": err.Error(),
			"code": model.ErrCodeInvalidRange,
		})
		return
	}

	if req.Store {
		stored, err := h.service.StoreSalesReport(c.Request.Context(), req)
		if err != nil {
			h.handleError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, "Report stored", stored)
		return
	}

	f, _, err := h.service.BuildSalesReport(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.Filename(req)))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to stream sales report", err)
	}
}

func (h *ReportHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRange), errors.Is(err, model.ErrRangeTooLarge):
		response.Error(c, http.StatusBadRequest, err.Error(), gin.H{"code": model.ErrCodeInvalidRange})
	case errors.Is(err, model.ErrStoreDisabled):
		response.Error(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		logger.Error("Sales report failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
