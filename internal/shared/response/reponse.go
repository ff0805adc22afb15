package response

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
	Total int `json:"total,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, message string, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error response, details thường là map{"code": ..., "error": ...}
func Error(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Error:   details,
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message, map[string]string{"code": "BAD_REQUEST"})
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message, map[string]string{"code": "UNAUTHORIZED"})
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 403, message, map[string]string{"code": "FORBIDDEN"})
}

func NotFound(c *gin.Context, message string) {
	Error(c, 404, message, map[string]string{"code": "NOT_FOUND"})
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, 500, message, map[string]string{"code": "INTERNAL_SERVER_ERROR"})
}
