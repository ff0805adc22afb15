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

type Expirer interface {
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

// ExpireCouponsHandler tắt coupon quá expiry_date (admin list hiển thị đúng trạng thái)
type ExpireCouponsHandler struct {
	coupons Expirer
}

func NewExpireCouponsHandler(coupons Expirer) *ExpireCouponsHandler {
	return &ExpireCouponsHandler{coupons: coupons}
}

func (h *ExpireCouponsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ExpirePayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireCoupons, "bad_payload").Inc()
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	asOf, err := payload.ResolveAsOf(time.Now())
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireCoupons, "bad_payload").Inc()
		return fmt.Errorf("parse as_of: %w: %w", err, asynq.SkipRetry)
	}

	n, err := h.coupons.DeactivateExpired(ctx, asOf)
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireCoupons, "error").Inc()
		return fmt.Errorf("deactivate expired coupons: %w", err)
	}

	metrics.JobRunsTotal.WithLabelValues(shared.TypeExpireCoupons, "ok").Inc()
	logger.Info("Expired coupons deactivated", map[string]interface{}{
		"count": n,
		"as_of": asOf.Format(time.RFC3339),
	})
	return nil
}
