package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation là SQLSTATE của unique_violation
const pgUniqueViolation = "23505"

// IsUniqueViolation kiểm tra error có phải vi phạm unique constraint không.
// constraint rỗng = chấp nhận mọi constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// HealthCheck verify database connectivity và availability
// Function này được gọi bởi /health endpoint
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close đóng tất cả connections trong pool
// Safe to call multiple times
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		log.Println("[DATABASE] Pool is already closed or was never initialized")
		return nil
	}

	log.Println("[DATABASE] Closing database connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Println("[DATABASE] Connection pool closed successfully")

	return nil
}

// PoolStats là snapshot thống kê pool, trả về trong /health
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Stats trả về snapshot của connection pool statistics
func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		TotalConns:    raw.TotalConns(),
		IdleConns:     raw.IdleConns(),
		AcquiredConns: raw.AcquiredConns(),
		MaxConns:      raw.MaxConns(),
	}, nil
}
