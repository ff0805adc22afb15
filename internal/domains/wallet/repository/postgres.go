package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/internal/infrastructure/database"
)

// IdempotencyConstraint là unique constraint trên wallet_transactions.idempotency_key
const IdempotencyConstraint = "uq_wallet_tx_idempotency_key"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const transactionColumns = `
	id, wallet_id, type, amount, balance_after, order_id, reason, idempotency_key, created_at
`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.BalanceAfter,
		&t.OrderID,
		&t.Reason,
		&t.IdempotencyKey,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresRepository) GetOrCreateForUpdateWithTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Wallet, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO wallets (id, user_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	var w model.Wallet
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return &w, nil
}

func (r *postgresRepository) InsertTransactionWithTx(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	// ON CONFLICT DO NOTHING thay vì để unique_violation nổ: lỗi 23505 sẽ abort cả transaction
	err := tx.QueryRow(ctx, `
		INSERT INTO wallet_transactions (
			id, wallet_id, type, amount, balance_after, order_id, reason, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT `+IdempotencyConstraint+` DO NOTHING
		RETURNING created_at
	`,
		t.ID, t.WalletID, t.Type, t.Amount, t.BalanceAfter, t.OrderID, t.Reason, t.IdempotencyKey,
	).Scan(&t.CreatedAt)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), database.IsUniqueViolation(err, IdempotencyConstraint):
		return model.ErrDuplicateTransaction
	default:
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
}

func (r *postgresRepository) UpdateBalanceWithTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets SET balance = $2, updated_at = NOW()
		WHERE id = $1
	`, walletID, balance)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrWalletNotFound
	}
	return nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	var w model.Wallet
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}

func (r *postgresRepository) FindTransactionByKey(ctx context.Context, key string) (*model.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM wallet_transactions WHERE idempotency_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find wallet transaction: %w", err)
	}
	return t, nil
}

func (r *postgresRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, page, limit int) ([]model.Transaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`, walletID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallet transactions: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+` FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, walletID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]model.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan wallet transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, total, rows.Err()
}
