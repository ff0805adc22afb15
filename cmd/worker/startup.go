// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookstore-storefront/pkg/container"
)

// HealthChecker performs startup health checks
type HealthChecker struct {
	c *container.Container
}

// startServices chạy health check rồi mở endpoint /health, /ready, /metrics
func startServices(c *container.Container) error {
	log.Println("============================================")
	log.Println("🚀 Storefront Worker Starting...")
	log.Println("============================================")

	checker := &HealthChecker{c: c}
	if err := checker.checkAll(); err != nil {
		log.Printf("❌ Health check failed: %v\n", err)
		return err
	}

	go startHealthCheckServer(c.Config.Worker.HealthCheckAddress, checker)

	return nil
}

// checkAll runs all health checks
func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"Redis Connection", h.checkRedis},
		{"PostgreSQL Connection", h.checkDatabase},
	}

	for _, check := range checks {
		log.Printf("⏳ Checking %s...\n", check.name)
		if err := check.fn(); err != nil {
			log.Printf("❌ %s: %v\n", check.name, err)
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Printf("✓ %s: OK\n", check.name)
	}

	return nil
}

func (h *HealthChecker) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return h.c.Cache.Ping(ctx)
}

func (h *HealthChecker) checkDatabase() error {
	return h.c.DB.HealthCheck(context.Background())
}

// startHealthCheckServer dùng net/http thuần vì chỉ có 3 endpoint nội bộ
func startHealthCheckServer(addr string, h *HealthChecker) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"UP","service":"storefront-worker"}`)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := h.checkAll(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"NOT_READY"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"READY"}`)
	})
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("[Health] Starting health check server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[Health] Failed to start: %v\n", err)
	}
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
