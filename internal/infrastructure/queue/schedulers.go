package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"bookstore-storefront/internal/config"
	"bookstore-storefront/internal/shared"
	"bookstore-storefront/pkg/logger"
)

// RedisOpt dựng asynq connection option từ Redis config
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.WorkerConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterExpiryJobs đăng ký các job tắt offer/coupon hết hạn
func (s *Scheduler) RegisterExpiryJobs() error {
	if err := s.registerExpireOffersJob(); err != nil {
		return err
	}

	if err := s.registerExpireCouponsJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Expire Offers (default every 15 minutes)
// ================================================
// Resolver tự lọc theo ngày, job chỉ dọn danh sách live + cache
func (s *Scheduler) registerExpireOffersJob() error {
	return s.register(s.jobConfig.ExpireOffersCron, shared.TypeExpireOffers, "ExpireOffers")
}

// ================================================
// JOB 2: Expire Coupons (default hourly at minute 5)
// ================================================
func (s *Scheduler) registerExpireCouponsJob() error {
	return s.register(s.jobConfig.ExpireCouponsCron, shared.TypeExpireCoupons, "ExpireCoupons")
}

func (s *Scheduler) register(cronspec, taskType, name string) error {
	payload, err := json.Marshal(shared.ExpirePayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, payload)

	_, err = s.scheduler.Register(
		cronspec,
		task,
		asynq.Queue(shared.QueuePromotion),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register "+name+" job", err)
		return err
	}

	logger.Info("✓ Registered "+name, map[string]interface{}{"cron": cronspec})
	return nil
}

// Start không block, dừng bằng Shutdown
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
