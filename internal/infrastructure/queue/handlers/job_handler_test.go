package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookstore-storefront/internal/infrastructure/queue"
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueExpire(ctx context.Context, job string, asOf *time.Time) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, job, asOf)
	if info := args.Get(0); info != nil {
		return info.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(q Enqueuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewJobHandler(q).RegisterAdminRoutes(r.Group("/admin"))
	return r
}

func TestTriggerExpire(t *testing.T) {
	q := new(mockEnqueuer)
	q.On("EnqueueExpire", mock.Anything, "offers", (*time.Time)(nil)).
		Return(&asynq.TaskInfo{ID: "t1", Type: "offer:expire", Queue: "promotion"}, nil)

	w := httptest.NewRecorder()
	newRouter(q).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/jobs/expire/offers", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"task_id":"t1"`)
	q.AssertExpectations(t)
}

func TestTriggerExpire_WithAsOf(t *testing.T) {
	q := new(mockEnqueuer)
	q.On("EnqueueExpire", mock.Anything, "coupons", mock.MatchedBy(func(asOf *time.Time) bool {
		return asOf != nil && asOf.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	})).Return(&asynq.TaskInfo{ID: "t2"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/jobs/expire/coupons",
		strings.NewReader(`{"as_of":"2026-01-31T00:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	newRouter(q).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	q.AssertExpectations(t)
}

func TestTriggerExpire_UnknownJob(t *testing.T) {
	q := new(mockEnqueuer)
	q.On("EnqueueExpire", mock.Anything, "carts", (*time.Time)(nil)).Return(nil, queue.ErrUnknownJob)

	w := httptest.NewRecorder()
	newRouter(q).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/jobs/expire/carts", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
