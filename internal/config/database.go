package config

import (
	"fmt"
	"strconv"
	"time"

	"bookstore-storefront/internal/infrastructure/database"
)

// LoadDatabaseConfig đọc DB_* env. Khác các section khác, giá trị sai định dạng là lỗi
// chứ không fallback về default, tránh chạy nhầm pool size / timeout.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	p := &strictParser{}

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.intVal("DB_PORT", 5432),
		Username: getEnv("DB_USER", "storefront"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "storefront_dev"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxConns:          int32(p.intVal("DB_MAX_CONNECTIONS", 25)),
		MinConns:          int32(p.intVal("DB_MIN_CONNECTIONS", 5)),
		MaxConnLifetime:   p.durationVal("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   p.durationVal("DB_MAX_CONN_IDLE_TIME", time.Minute),
		HealthCheckPeriod: p.durationVal("DB_HEALTH_CHECK_PERIOD", time.Minute),

		MaxRetries:     p.intVal("DB_MAX_RETRIES", 5),
		RetryDelay:     p.durationVal("DB_RETRY_DELAY", time.Second),
		ConnectTimeout: p.durationVal("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) > DB_MAX_CONNECTIONS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("DB_MAX_RETRIES must be >= 1")
	}
	return cfg, nil
}

// strictParser giữ lỗi đầu tiên để LoadDatabaseConfig đọc liền một mạch
type strictParser struct {
	err error
}

func (p *strictParser) intVal(key string, def int) int {
	raw := getEnv(key, strconv.Itoa(def))
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *strictParser) durationVal(key string, def time.Duration) time.Duration {
	raw := getEnv(key, def.String())
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}
