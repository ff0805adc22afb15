package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/internal/domains/wallet/repository"
	"bookstore-storefront/pkg/database"
	"bookstore-storefront/pkg/logger"
	"bookstore-storefront/pkg/money"
)

// Ledger là phần ví mà refund và order ghi vào, luôn chạy trong transaction của caller
type Ledger interface {
	CreditWithTx(ctx context.Context, tx pgx.Tx, entry model.Entry) (*model.Transaction, error)
	DebitWithTx(ctx context.Context, tx pgx.Tx, entry model.Entry) (*model.Transaction, error)
	FindByKey(ctx context.Context, key string) (*model.Transaction, error)
}

// ServiceInterface là contract handler dùng
type ServiceInterface interface {
	GetWallet(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WalletView, error)
	AddFunds(ctx context.Context, req model.AddFundsRequest) (*model.Transaction, error)
}

type WalletService struct {
	repo   repository.Repository
	runner database.TxRunner
}

func NewWalletService(repo repository.Repository, runner database.TxRunner) *WalletService {
	return &WalletService{repo: repo, runner: runner}
}

var (
	_ Ledger           = (*WalletService)(nil)
	_ ServiceInterface = (*WalletService)(nil)
)

// CreditWithTx cộng tiền vào ví (tạo ví nếu chưa có) và ghi một dòng sổ cái.
// Key trùng → model.ErrDuplicateTransaction, số dư không đổi.
func (s *WalletService) CreditWithTx(ctx context.Context, tx pgx.Tx, entry model.Entry) (*model.Transaction, error) {
	return s.post(ctx, tx, model.TransactionCredit, entry)
}

// DebitWithTx trừ tiền khi thanh toán bằng ví; không đủ số dư → model.ErrInsufficientBalance
func (s *WalletService) DebitWithTx(ctx context.Context, tx pgx.Tx, entry model.Entry) (*model.Transaction, error) {
	return s.post(ctx, tx, model.TransactionDebit, entry)
}

func (s *WalletService) post(ctx context.Context, tx pgx.Tx, typ model.TransactionType, entry model.Entry) (*model.Transaction, error) {
	amount := money.Round2(entry.Amount)
	if !amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	wallet, err := s.repo.GetOrCreateForUpdateWithTx(ctx, tx, entry.UserID)
	if err != nil {
		return nil, err
	}

	balance := wallet.Balance.Add(amount)
	if typ.Sign() < 0 {
		if wallet.Balance.LessThan(amount) {
			return nil, model.ErrInsufficientBalance
		}
		balance = wallet.Balance.Sub(amount)
	}

	t := &model.Transaction{
		WalletID:     wallet.ID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: balance,
		OrderID:      entry.OrderID,
		Reason:       entry.Reason,
	}
	// cột idempotency_key NOT NULL: không truyền key thì sinh key ngẫu nhiên (không chống trùng)
	key := entry.IdempotencyKey
	if key == "" {
		key = fmt.Sprintf("%s:%s", typ, uuid.NewString())
	}
	t.IdempotencyKey = &key

	// ghi sổ trước: key trùng thì dừng luôn, chưa đụng tới số dư
	if err := s.repo.InsertTransactionWithTx(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBalanceWithTx(ctx, tx, wallet.ID, balance); err != nil {
		return nil, err
	}

	logger.Info("Wallet transaction posted", map[string]interface{}{
		"user_id":         entry.UserID.String(),
		"type":            string(typ),
		"amount":          amount.StringFixed(2),
		"balance_after":   balance.StringFixed(2),
		"idempotency_key": key,
	})
	return t, nil
}

func (s *WalletService) FindByKey(ctx context.Context, key string) (*model.Transaction, error) {
	return s.repo.FindTransactionByKey(ctx, key)
}

// GetWallet trả ví + lịch sử. User chưa có ví thì trả ví rỗng số dư 0 (không tạo dòng).
func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WalletView, error) {
	wallet, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, model.ErrWalletNotFound) {
		return &model.WalletView{
			Wallet:       &model.Wallet{UserID: userID},
			Transactions: []model.Transaction{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	txs, total, err := s.repo.ListTransactions(ctx, wallet.ID, page, limit)
	if err != nil {
		return nil, err
	}
	return &model.WalletView{Wallet: wallet, Transactions: txs, Total: total}, nil
}

// AddFunds: admin nạp tiền thủ công, loại "add"
func (s *WalletService) AddFunds(ctx context.Context, req model.AddFundsRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return database.WithTransactionResult(ctx, s.runner, func(tx pgx.Tx) (*model.Transaction, error) {
		t, err := s.post(ctx, tx, model.TransactionAdd, model.Entry{
			UserID:         req.UserID,
			Amount:         req.Amount,
			Reason:         req.Reason,
			IdempotencyKey: req.IdempotencyKey(),
		})
		if err != nil {
			return nil, fmt.Errorf("add funds: %w", err)
		}
		return t, nil
	})
}
