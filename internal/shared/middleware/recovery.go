package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookstore-storefront/internal/shared/response"
)

const errCodePanic = "SYS_001"

// Recovery bắt panic trong handler, log kèm stack và trả 500 theo envelope chung
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log.Error().
				Str("request_id", c.GetString("request_id")).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")

			if c.Writer.Written() {
				// đã stream một phần body (vd export xlsx), không ghi thêm được
				c.Abort()
				return
			}
			response.Error(c, http.StatusInternalServerError, "Internal server error", gin.H{"code": errCodePanic})
			c.Abort()
		}()

		c.Next()
	}
}
