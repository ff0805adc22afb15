package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bookstore-storefront/internal/infrastructure/database"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App       AppConfig
	Database  *database.DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	Pricing   PricingConfig
	Refund    RefundConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // storefront-reports
	UseSSL    bool   // false for local
}

// =====================================================
// PRICING / CHECKOUT
// =====================================================

type PricingConfig struct {
	TaxRate  string        // decimal string, vd "0.18"
	OfferTTL time.Duration // cache danh sách offer đang chạy
}

type CheckoutConfig struct {
	SessionTTL time.Duration
}

// =====================================================
// REFUND POLICY
// =====================================================

// RefundConfig là dạng "thô" đọc từ env, container map sang refund.Config
type RefundConfig struct {
	SingleItemFullTotal       bool
	RefundableItemStatuses    []string
	RefundablePaymentStatuses []string // non-COD
	CODRequiresEvidence       bool
}

type RateLimitConfig struct {
	CouponRate string // ulule format, vd "20-M"
}

type WorkerConfig struct {
	Concurrency        int
	ExpireOffersCron   string
	ExpireCouponsCron  string
	HealthCheckAddress string
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Bookstore Storefront"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: dbConfig,
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "storefront-reports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Pricing: PricingConfig{
			TaxRate:  getEnv("PRICING_TAX_RATE", "0.18"),
			OfferTTL: getEnvDuration("PRICING_OFFER_CACHE_TTL", 5*time.Minute),
		},
		Checkout: CheckoutConfig{
			SessionTTL: getEnvDuration("CHECKOUT_SESSION_TTL", 30*time.Minute),
		},
		Refund: RefundConfig{
			SingleItemFullTotal: getEnvBool("REFUND_SINGLE_ITEM_FULL_TOTAL", true),
			RefundableItemStatuses: getEnvList("REFUND_ITEM_STATUSES",
				[]string{"Cancelled", "Active", "Return Requested", "Returned"}),
			RefundablePaymentStatuses: getEnvList("REFUND_PAYMENT_STATUSES",
				[]string{"Paid", "Partially Refunded"}),
			CODRequiresEvidence: getEnvBool("REFUND_COD_REQUIRES_EVIDENCE", true),
		},
		RateLimit: RateLimitConfig{
			CouponRate: getEnv("RATE_LIMIT_COUPON", "20-M"),
		},
		Worker: WorkerConfig{
			Concurrency:        getEnvInt("WORKER_CONCURRENCY", 10),
			ExpireOffersCron:   getEnv("WORKER_EXPIRE_OFFERS_CRON", "*/15 * * * *"),
			ExpireCouponsCron:  getEnv("WORKER_EXPIRE_COUPONS_CRON", "5 * * * *"),
			HealthCheckAddress: getEnv("WORKER_HEALTH_ADDR", ":9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	rate, err := strconv.ParseFloat(c.Pricing.TaxRate, 64)
	if err != nil {
		return fmt.Errorf("invalid PRICING_TAX_RATE %q: %w", c.Pricing.TaxRate, err)
	}
	if rate < 0 || rate >= 1 {
		return fmt.Errorf("PRICING_TAX_RATE must be in [0, 1), got %s", c.Pricing.TaxRate)
	}

	if c.Checkout.SessionTTL <= 0 {
		return fmt.Errorf("CHECKOUT_SESSION_TTL must be positive")
	}
	if len(c.Refund.RefundableItemStatuses) == 0 {
		return fmt.Errorf("REFUND_ITEM_STATUSES must not be empty")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList đọc danh sách phân tách bằng dấu phẩy
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
