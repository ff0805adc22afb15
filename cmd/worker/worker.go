package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"bookstore-storefront/internal/infrastructure/queue"
	"bookstore-storefront/internal/shared"
	"bookstore-storefront/pkg/container"
	"bookstore-storefront/pkg/logger"
	"bookstore-storefront/pkg/metrics"
)

// worker gồm asynq server (xử lý task) và scheduler (đẩy task theo cron)
type worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *queue.Scheduler
}

func newWorker(c *container.Container, handlers *HandlerRegistry) *worker {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	server := asynq.NewServer(c.RedisOpt(), asynq.Config{
		Queues: map[string]int{
			shared.QueuePromotion: 6,
			shared.QueueDefault:   4,
		},
		Concurrency: c.Config.Worker.Concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				metrics.JobRunsTotal.WithLabelValues(task.Type(), "dead").Inc()
			}
			logger.ErrorWithFields("Task failed", err, map[string]interface{}{
				"type":    task.Type(),
				"retried": retried,
			})
		}),
	})

	return &worker{
		server:    server,
		mux:       mux,
		scheduler: queue.NewScheduler(c.RedisOpt(), c.Config.Worker),
	}
}

// Start đăng ký cron job rồi chạy server và scheduler, cả hai không block
func (w *worker) Start() error {
	if err := w.scheduler.RegisterExpiryJobs(); err != nil {
		return fmt.Errorf("register scheduler jobs: %w", err)
	}

	// Start (không phải Run): trả lỗi ngay nếu không kết nối được Redis
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}

	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}
	log.Println("[Worker] ✓ Server and scheduler running")
	return nil
}

// Shutdown dừng scheduler trước để không đẩy thêm task, rồi chờ task đang chạy
func (w *worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}
