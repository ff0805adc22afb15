package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/pkg/database"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s got %s", want, got.String())
}

// memRepo giữ ví và sổ cái trong bộ nhớ, mô phỏng unique constraint trên idempotency key
type memRepo struct {
	wallets map[uuid.UUID]*model.Wallet // theo user
	txs     []model.Transaction
	keys    map[string]struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{
		wallets: make(map[uuid.UUID]*model.Wallet),
		keys:    make(map[string]struct{}),
	}
}

func (m *memRepo) GetOrCreateForUpdateWithTx(_ context.Context, _ pgx.Tx, userID uuid.UUID) (*model.Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		w = &model.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.Zero}
		m.wallets[userID] = w
	}
	cp := *w
	return &cp, nil
}

var errKeyNotNull = errors.New("null value in column \"idempotency_key\" violates not-null constraint")

func (m *memRepo) InsertTransactionWithTx(_ context.Context, _ pgx.Tx, t *model.Transaction) error {
	// giống schema: idempotency_key TEXT NOT NULL UNIQUE
	if t.IdempotencyKey == nil || *t.IdempotencyKey == "" {
		return errKeyNotNull
	}
	if _, dup := m.keys[*t.IdempotencyKey]; dup {
		return model.ErrDuplicateTransaction
	}
	m.keys[*t.IdempotencyKey] = struct{}{}
	t.ID = uuid.New()
	m.txs = append(m.txs, *t)
	return nil
}

func (m *memRepo) UpdateBalanceWithTx(_ context.Context, _ pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	for _, w := range m.wallets {
		if w.ID == walletID {
			w.Balance = balance
			return nil
		}
	}
	return model.ErrWalletNotFound
}

func (m *memRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Wallet, error) {
	if w, ok := m.wallets[userID]; ok {
		return w, nil
	}
	return nil, model.ErrWalletNotFound
}

func (m *memRepo) FindTransactionByKey(_ context.Context, key string) (*model.Transaction, error) {
	for i := range m.txs {
		if m.txs[i].IdempotencyKey != nil && *m.txs[i].IdempotencyKey == key {
			return &m.txs[i], nil
		}
	}
	return nil, model.ErrTransactionNotFound
}

func (m *memRepo) ListTransactions(_ context.Context, walletID uuid.UUID, _, _ int) ([]model.Transaction, int, error) {
	out := make([]model.Transaction, 0)
	for _, t := range m.txs {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

type directRunner struct{}

func (directRunner) WithTx(_ context.Context, fn database.TxFunc) error { return fn(nil) }

func TestCreditCreatesWalletLazily(t *testing.T) {
	repo := newMemRepo()
	svc := NewWalletService(repo, directRunner{})
	userID := uuid.New()
	orderID := uuid.New()

	txn, err := svc.CreditWithTx(context.Background(), nil, model.Entry{
		UserID:         userID,
		Amount:         d("200"),
		OrderID:        &orderID,
		Reason:         "Refund for cancelled item",
		IdempotencyKey: "refund:o:i:cancellation",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionCredit, txn.Type)
	assert.True(t, d("200").Equal(txn.BalanceAfter))
	assert.True(t, d("200").Equal(repo.wallets[userID].Balance))
}

func TestCreditSameKeyTwice(t *testing.T) {
	repo := newMemRepo()
	svc := NewWalletService(repo, directRunner{})
	userID := uuid.New()
	entry := model.Entry{UserID: userID, Amount: d("390"), Reason: "refund", IdempotencyKey: "refund:k"}

	_, err := svc.CreditWithTx(context.Background(), nil, entry)
	require.NoError(t, err)

	_, err = svc.CreditWithTx(context.Background(), nil, entry)
	assert.ErrorIs(t, err, model.ErrDuplicateTransaction)
	assert.True(t, d("390").Equal(repo.wallets[userID].Balance))
	assert.Len(t, repo.txs, 1)
}

func TestDebit(t *testing.T) {
	repo := newMemRepo()
	svc := NewWalletService(repo, directRunner{})
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.DebitWithTx(ctx, nil, model.Entry{UserID: userID, Amount: d("1"), Reason: "order"})
	assert.ErrorIs(t, err, model.ErrInsufficientBalance)

	_, err = svc.CreditWithTx(ctx, nil, model.Entry{UserID: userID, Amount: d("100"), Reason: "refund"})
	require.NoError(t, err)

	txn, err := svc.DebitWithTx(ctx, nil, model.Entry{UserID: userID, Amount: d("99.995"), Reason: "order"})
	require.NoError(t, err)
	assert.True(t, d("100").Equal(txn.Amount), "amount is rounded to paisa")
	assert.True(t, repo.wallets[userID].Balance.IsZero())
}

func TestBalanceMatchesLedger(t *testing.T) {
	repo := newMemRepo()
	svc := NewWalletService(repo, directRunner{})
	userID := uuid.New()
	ctx := context.Background()

	steps := []struct {
		debit  bool
		amount string
	}{
		{false, "590"}, {true, "120.50"}, {false, "0.01"}, {true, "400"}, {false, "33.33"},
	}
	for _, s := range steps {
		entry := model.Entry{UserID: userID, Amount: d(s.amount), Reason: "step"}
		var err error
		if s.debit {
			_, err = svc.DebitWithTx(ctx, nil, entry)
		} else {
			_, err = svc.CreditWithTx(ctx, nil, entry)
		}
		require.NoError(t, err)
	}

	sum := decimal.Zero
	for _, txn := range repo.txs {
		sum = sum.Add(txn.Amount.Mul(decimal.NewFromInt(int64(txn.Type.Sign()))))
	}
	assert.True(t, sum.Equal(repo.wallets[userID].Balance), "ledger %s balance %s", sum, repo.wallets[userID].Balance)
	assert.True(t, d("102.84").Equal(sum))
}

func TestRejectsNonPositiveAmount(t *testing.T) {
	svc := NewWalletService(newMemRepo(), directRunner{})

	_, err := svc.CreditWithTx(context.Background(), nil, model.Entry{UserID: uuid.New(), Amount: d("0.004")})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestGetWalletWithoutWallet(t *testing.T) {
	svc := NewWalletService(newMemRepo(), directRunner{})
	userID := uuid.New()

	view, err := svc.GetWallet(context.Background(), userID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, userID, view.Wallet.UserID)
	assert.True(t, view.Wallet.Balance.IsZero())
	assert.Empty(t, view.Transactions)
}

func TestAddFunds(t *testing.T) {
	repo := newMemRepo()
	svc := NewWalletService(repo, directRunner{})
	userID := uuid.New()

	ctx := context.Background()

	txn, err := svc.AddFunds(ctx, model.AddFundsRequest{UserID: userID, Amount: d("50"), Reason: "goodwill"})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionAdd, txn.Type)
	require.NotNil(t, txn.IdempotencyKey)
	assert.Regexp(t, `^add:[0-9a-f-]{36}$`, *txn.IdempotencyKey)

	// không có request_id: hai lần nạp là hai giao dịch
	_, err = svc.AddFunds(ctx, model.AddFundsRequest{UserID: userID, Amount: d("50"), Reason: "goodwill"})
	require.NoError(t, err)
	assertDec(t, "100", repo.wallets[userID].Balance)

	// cùng request_id thì lần sau bị chặn
	req := model.AddFundsRequest{UserID: userID, Amount: d("25"), Reason: "support ticket", RequestID: "ticket-4411"}
	txn, err = svc.AddFunds(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "add:ticket-4411", *txn.IdempotencyKey)
	_, err = svc.AddFunds(ctx, req)
	assert.ErrorIs(t, err, model.ErrDuplicateTransaction)
	assertDec(t, "125", repo.wallets[userID].Balance)

	_, err = svc.AddFunds(ctx, model.AddFundsRequest{UserID: userID, Amount: d("-5"), Reason: "oops"})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestPost_KeylessEntriesGetGeneratedKey(t *testing.T) {
	repo := newMemRepo()
	svc := NewWalletService(repo, directRunner{})

	txn, err := svc.CreditWithTx(context.Background(), nil, model.Entry{UserID: uuid.New(), Amount: d("10"), Reason: "manual"})
	require.NoError(t, err)
	require.NotNil(t, txn.IdempotencyKey)
	assert.Regexp(t, `^credit:`, *txn.IdempotencyKey)
}
