// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bookstore-storefront/pkg/container"
	"bookstore-storefront/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	logger.Init(c.Config.App.Environment)

	if err := startServices(c); err != nil {
		log.Fatalf("[Startup] Health check failed: %v", err)
	}

	w := newWorker(c, initializeHandlers(c))
	if err := w.Start(); err != nil {
		log.Fatalf("[Worker] Failed to start: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[Shutdown] Gracefully stopping...")
	w.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
