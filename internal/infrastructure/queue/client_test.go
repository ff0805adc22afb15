package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-storefront/internal/config"
	"bookstore-storefront/internal/shared"
)

func TestNewExpireTask(t *testing.T) {
	task, err := NewExpireTask("offers", nil)
	require.NoError(t, err)
	assert.Equal(t, shared.TypeExpireOffers, task.Type())

	var payload shared.ExpirePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Nil(t, payload.AsOf)

	asOf := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	task, err = NewExpireTask("coupons", &asOf)
	require.NoError(t, err)
	assert.Equal(t, shared.TypeExpireCoupons, task.Type())

	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.NotNil(t, payload.AsOf)
	assert.Equal(t, "2026-05-01T04:00:00Z", *payload.AsOf)

	resolved, err := payload.ResolveAsOf(time.Now())
	require.NoError(t, err)
	assert.True(t, resolved.Equal(asOf))
}

func TestNewExpireTask_Unknown(t *testing.T) {
	_, err := NewExpireTask("carts", nil)
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRedisOpt(t *testing.T) {
	opt := RedisOpt(config.RedisConfig{Host: "redis:6379", Password: "pw", DB: 2})
	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
