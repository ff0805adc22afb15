package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/wallet/model"
)

type Repository interface {
	// GetOrCreateForUpdateWithTx tạo ví (balance 0) nếu chưa có rồi khoá dòng FOR UPDATE
	GetOrCreateForUpdateWithTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Wallet, error)
	// InsertTransactionWithTx trả model.ErrDuplicateTransaction nếu idempotency key đã tồn tại.
	// Trùng key không làm hỏng transaction đang mở.
	InsertTransactionWithTx(ctx context.Context, tx pgx.Tx, t *model.Transaction) error
	UpdateBalanceWithTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error

	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error)
	FindTransactionByKey(ctx context.Context, key string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, page, limit int) ([]model.Transaction, int, error)
}
