package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"bookstore-storefront/internal/shared"
)

var ErrUnknownJob = errors.New("unknown job")

// expiryJobs map tên job (trong URL admin) sang asynq task type
var expiryJobs = map[string]string{
	"offers":  shared.TypeExpireOffers,
	"coupons": shared.TypeExpireCoupons,
}

// NewExpireTask dựng task expire; asOf != nil dùng để chạy tay / backfill
func NewExpireTask(job string, asOf *time.Time) (*asynq.Task, error) {
	taskType, ok := expiryJobs[job]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}

	var payload shared.ExpirePayload
	if asOf != nil {
		v := asOf.UTC().Format(time.RFC3339)
		payload.AsOf = &v
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, raw, asynq.Queue(shared.QueuePromotion), asynq.MaxRetry(2)), nil
}

// Client là wrapper mỏng quanh asynq.Client cho phía API
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpt asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpt)}
}

// EnqueueExpire đẩy job expire ngay lập tức
func (c *Client) EnqueueExpire(ctx context.Context, job string, asOf *time.Time) (*asynq.TaskInfo, error) {
	task, err := NewExpireTask(job, asOf)
	if err != nil {
		return nil, err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return info, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
