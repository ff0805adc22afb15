package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/order/model"
)

// =====================================================
// ORDER REPOSITORY INTERFACE
// =====================================================
type OrderRepository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// GetForUpdateWithTx khoá dòng orders (FOR UPDATE) rồi đọc kèm items
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error)

	ListByUser(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.Order, int, error)
	ListAll(ctx context.Context, filter model.ListFilter) ([]model.Order, int, error)

	UpdateItemStatusWithTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, status model.ItemStatus, reason *string) error
	// UpdateOrderWithTx ghi status/payment_status/delivered_at/cancel_reason theo version (optimistic lock).
	// Thành công thì order.Version tăng 1.
	UpdateOrderWithTx(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// RecordRefundWithTx cộng vào refunded_amount từng item và refunded_total của order,
	// trả refunded_total mới
	RecordRefundWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, amounts map[uuid.UUID]decimal.Decimal) (decimal.Decimal, error)
	SetPaymentStatusWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.PaymentStatus) error

	ListForReport(ctx context.Context, from, to time.Time) ([]model.ReportRow, error)
}
