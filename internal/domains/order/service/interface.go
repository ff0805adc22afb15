package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	checkoutModel "bookstore-storefront/internal/domains/checkout/model"
	"bookstore-storefront/internal/domains/order/model"
	refundModel "bookstore-storefront/internal/domains/refund/model"
	walletModel "bookstore-storefront/internal/domains/wallet/model"
)

// =====================================================
// ORDER SERVICE INTERFACE
// =====================================================
type OrderService interface {
	// Đặt hàng từ checkout session
	PlaceOrder(ctx context.Context, userID uuid.UUID, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error)

	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.Order, int, error)

	// Huỷ một dòng / phần còn lại của đơn (customer), refund chạy sau khi commit
	CancelItem(ctx context.Context, orderID, itemID, userID uuid.UUID, req model.CancelRequest) (*ActionResult, error)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID, req model.CancelRequest) (*ActionResult, error)

	// itemID nil = mọi dòng đã giao
	RequestReturn(ctx context.Context, orderID uuid.UUID, itemID *uuid.UUID, userID uuid.UUID, req model.ReturnRequest) (*model.Order, error)

	// Admin
	GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListAllOrders(ctx context.Context, filter model.ListFilter) ([]model.Order, int, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req model.UpdateStatusRequest) (*ActionResult, error)
	ApproveReturn(ctx context.Context, orderID uuid.UUID, itemID *uuid.UUID) (*ActionResult, error)
	RejectReturn(ctx context.Context, orderID uuid.UUID, itemID *uuid.UUID) (*model.Order, error)
	RetryRefund(ctx context.Context, orderID uuid.UUID, req model.RetryRefundRequest) (*refundModel.Outcome, error)
}

// ActionResult là kết quả của thao tác có thể kèm refund
type ActionResult struct {
	Order  *model.Order         `json:"order"`
	Refund *refundModel.Outcome `json:"refund,omitempty"`
}

// =====================================================
// COLLABORATORS
// =====================================================

type StockKeeper interface {
	DecrementStockWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
	RestoreStockWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

type CouponUsageRecorder interface {
	RecordUsageWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) error
}

type WalletDebitor interface {
	DebitWithTx(ctx context.Context, tx pgx.Tx, entry walletModel.Entry) (*walletModel.Transaction, error)
}

type CheckoutSessions interface {
	Get(ctx context.Context, userID uuid.UUID, token string) (*checkoutModel.View, error)
	Consume(ctx context.Context, userID uuid.UUID, token string) error
}
