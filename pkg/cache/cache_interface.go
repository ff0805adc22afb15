package cache

import (
	"context"
	"time"

	"bookstore-storefront/pkg/logger"
)

// Cache là contract cho session store và cache danh sách offer.
// Value được lưu dạng JSON nên Redis và MemoryCache cho kết quả giống nhau.
type Cache interface {
	// Get trả found=false khi miss hoặc key đã hết hạn, dest giữ nguyên
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// TTL âm khi key không tồn tại (-2s) hoặc không có hạn (-1s), giống Redis
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}

// Remember đọc key từ cache, miss thì gọi load rồi ghi lại với ttl.
// Lỗi cache chỉ được log: request vẫn đi tiếp bằng dữ liệu từ load.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	switch {
	case err != nil:
		logger.ErrorWithFields("Cache read failed", err, map[string]interface{}{"key": key})
	case found:
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.ErrorWithFields("Cache write failed", err, map[string]interface{}{"key": key})
	}
	return value, nil
}
