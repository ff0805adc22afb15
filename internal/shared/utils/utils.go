package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// UnmarshalTask decode payload của asynq task vào dest
func UnmarshalTask(t *asynq.Task, dest interface{}) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("task %s: %w", t.Type(), err)
	}
	return nil
}

// GetUserIDFromContext lấy user ID do AuthMiddleware set
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, errors.New("userID not found in context")
	}

	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		return uuid.Parse(id)
	default:
		return uuid.Nil, errors.New("invalid userID type in context")
	}
}

// ParsePagination đọc page/limit từ query, mặc định page=1 limit=20, limit tối đa 100
func ParsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
