package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit" // hoàn tiền
	TransactionDebit  TransactionType = "debit"  // thanh toán bằng ví
	TransactionAdd    TransactionType = "add"    // admin nạp tiền
)

// Sign: credit/add cộng vào số dư, debit trừ đi
func (t TransactionType) Sign() int {
	if t == TransactionDebit {
		return -1
	}
	return 1
}

// Wallet: mỗi user một ví, tạo lười ở lần ghi đầu tiên. Balance không bao giờ âm.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction là một dòng sổ cái ví, append-only
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	WalletID       uuid.UUID       `json:"wallet_id"`
	Type           TransactionType `json:"type"`
	Amount         decimal.Decimal `json:"amount"` // luôn dương, chiều do Type quyết định
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	OrderID        *uuid.UUID      `json:"order_id,omitempty"`
	Reason         string          `json:"reason"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Entry là yêu cầu ghi sổ
type Entry struct {
	UserID         uuid.UUID
	Amount         decimal.Decimal
	OrderID        *uuid.UUID
	Reason         string
	IdempotencyKey string // rỗng = sinh key ngẫu nhiên, không chống trùng
}

// WalletView là dữ liệu trang "Ví của tôi"
type WalletView struct {
	Wallet       *Wallet       `json:"wallet"`
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

// AddFundsRequest: admin nạp tiền cho user
type AddFundsRequest struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
	// RequestID do client gửi để nạp lại an toàn khi retry; bỏ trống thì mỗi lần là một giao dịch mới
	RequestID string `json:"request_id,omitempty"`
}

// IdempotencyKey: "add:<request_id>" hoặc rỗng
func (r AddFundsRequest) IdempotencyKey() string {
	if r.RequestID == "" {
		return ""
	}
	return "add:" + r.RequestID
}

func (r AddFundsRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Reason, validation.Required, validation.Length(3, 255)),
		validation.Field(&r.RequestID, validation.Length(8, 100)),
	); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

const (
	ErrCodeWalletNotFound      = "WAL001"
	ErrCodeInsufficientBalance = "WAL002"
	ErrCodeInvalidAmount       = "WAL003"
	ErrCodeDuplicate           = "WAL004"
)

var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrTransactionNotFound  = errors.New("wallet transaction not found")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrDuplicateTransaction = errors.New("wallet transaction with this idempotency key already exists")
)
