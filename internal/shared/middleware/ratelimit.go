package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit giới hạn số request theo client IP, format rate của ulule: "20-M", "5-S", "1000-H"
// Dùng cho các endpoint dễ bị brute-force như apply coupon
func RateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	instance := limiter.New(memory.NewStore(), rate)
	limiterMiddleware := stdlib.NewMiddleware(instance)

	return func(c *gin.Context) {
		passed := false
		limiterMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}, nil
}
