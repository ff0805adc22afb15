package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"bookstore-storefront/internal/shared"
	"bookstore-storefront/internal/shared/utils"
	"bookstore-storefront/pkg/logger"
	"bookstore-storefront/pkg/metrics"
)

// Expirer là phần offer service mà job cần
type Expirer interface {
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

// ExpireOffersHandler tắt các offer đã hết hạn để danh sách live (và cache) luôn gọn.
// Resolver vẫn tự lọc theo ngày nên job chạy trễ không làm sai giá.
type ExpireOffersHandler struct {
	offers Expirer
}

func NewExpireOffersHandler(offers Expirer) *ExpireOffersHandler {
	return &ExpireOffersHandler{offers: offers}
}

func (h *ExpireOffersHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ExpirePayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireOffers, "bad_payload").Inc()
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	asOf, err := payload.ResolveAsOf(time.Now())
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireOffers, "bad_payload").Inc()
		return fmt.Errorf("parse as_of: %w: %w", err, asynq.SkipRetry)
	}

	n, err := h.offers.DeactivateExpired(ctx, asOf)
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireOffers, "error").Inc()
		logger.Error("Failed to deactivate expired offers", err)
		return err
	}

	metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireOffers, "ok").Inc()
	logger.Info("Expired offers deactivated", map[string]interface{}{
		"count": n,
		"as_of": asOf.Format(time.RFC3339),
	})
	return nil
}
