package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookstore-storefront/internal/shared/middleware"
	"bookstore-storefront/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	router.GET("/health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		setupPublicRoutes(v1, c)
		setupCustomerRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// PUBLIC
// ========================================
func setupPublicRoutes(v1 *gin.RouterGroup, c *container.Container) {
	c.OfferHandler.RegisterRoutes(v1)
}

// ========================================
// CUSTOMER (bearer JWT)
// ========================================
func setupCustomerRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authed := v1.Group("", middleware.AuthMiddleware(c.JWTManager))

	c.CheckoutHandler.RegisterRoutes(authed)
	c.OrderHandler.RegisterRoutes(authed)
	c.WalletHandler.RegisterRoutes(authed)
}

// ========================================
// ADMIN
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin",
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)

	c.RegisterAdminRoutes(admin)
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Check database
		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		} else if stats, err := appCtx.DB.Stats(); err == nil {
			health["db_pool"] = stats
		}

		// Check redis (checkout session)
		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		// MinIO chỉ ảnh hưởng tính năng lưu báo cáo
		storageStatus := "disabled"
		if appCtx.Storage != nil {
			storageStatus = "ok"
			if err := appCtx.Storage.Ping(ctx); err != nil {
				storageStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		}

		status := http.StatusOK
		if health["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
}
