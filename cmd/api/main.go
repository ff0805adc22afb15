package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bookstore-storefront/pkg/container"
	"bookstore-storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env chỉ dùng ở local, production đọc thẳng env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	appContainer, err := container.NewContainer()
	if err != nil {
		log.Fatalf("❌ Failed to initialize container: %v", err)
	}
	defer appContainer.Cleanup()

	env := appContainer.Config.App.Environment
	logger.Init(env)
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appContainer); err != nil {
		log.Printf("❌ Server error: %v", err)
		os.Exit(1)
	}
	log.Println("✅ Server exited gracefully")
}

// run chạy HTTP server tới khi ctx bị huỷ (SIGINT/SIGTERM) rồi shutdown có timeout
func run(ctx context.Context, c *container.Container) error {
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", c.Config.App.Port),
		Handler:        SetupRouter(c),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second, // export xlsx có thể lâu
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 %s %s listening on %s (%s)", c.Config.App.Name, c.Config.App.Version, srv.Addr, c.Config.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}
