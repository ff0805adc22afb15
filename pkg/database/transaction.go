package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTransaction function:
//     Begin transaction từ pool
//     Defer rollback - Sẽ tự động rollback nếu:
//         Function fn return error
//         Có panic xảy ra
//     Execute function fn với transaction context
//     Commit nếu không có error

// TxFunc là function type được execute trong transaction
type TxFunc func(pgx.Tx) error

// WithTransaction wraps một function trong transaction
// Auto rollback nếu có error, auto commit nếu success
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult wraps function có return value trong transaction
func WithTransactionResult[T any](ctx context.Context, runner TxRunner, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T

	err := runner.WithTx(ctx, func(tx pgx.Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

// TxRunner cho phép service chạy nhiều repository call trong cùng một transaction
// mà không phụ thuộc trực tiếp vào *pgxpool.Pool (test có thể inject fake runner)
type TxRunner interface {
	WithTx(ctx context.Context, fn TxFunc) error
}

type poolRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner tạo TxRunner dựa trên connection pool
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &poolRunner{pool: pool}
}

func (r *poolRunner) WithTx(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, r.pool, fn)
}
