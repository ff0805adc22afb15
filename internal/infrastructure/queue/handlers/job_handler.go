package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"bookstore-storefront/internal/infrastructure/queue"
	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/pkg/logger"
)

// Enqueuer là phần queue.Client mà handler cần
type Enqueuer interface {
	EnqueueExpire(ctx context.Context, job string, asOf *time.Time) (*asynq.TaskInfo, error)
}

// JobHandler cho admin chạy tay job expire (không chờ cron)
type JobHandler struct {
	queue Enqueuer
}

func NewJobHandler(q Enqueuer) *JobHandler {
	return &JobHandler{queue: q}
}

func (h *JobHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/jobs/expire/:job", h.TriggerExpire)
}

type triggerRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// TriggerExpire godoc
// @Summary Enqueue offer/coupon expiry now, optionally as of a past instant
// @Router /v1/admin/jobs/expire/{job} [post]
func (h *JobHandler) TriggerExpire(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	info, err := h.queue.EnqueueExpire(c.Request.Context(), c.Param("job"), req.AsOf)
	if err != nil {
		if errors.Is(err, queue.ErrUnknownJob) {
			response.NotFound(c, err.Error())
			return
		}
		logger.Error("Failed to enqueue expiry job", err)
		response.InternalServerError(c, "Failed to enqueue job")
		return
	}

	response.Success(c, http.StatusAccepted, "Job enqueued", gin.H{
		"task_id": info.ID,
		"type":    info.Type,
		"queue":   info.Queue,
	})
}
