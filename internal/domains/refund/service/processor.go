package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	orderModel "bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/refund/model"
	walletModel "bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/pkg/database"
	"bookstore-storefront/pkg/logger"
	"bookstore-storefront/pkg/metrics"
)

// OrderStore là phần order repository mà processor cần
type OrderStore interface {
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*orderModel.Order, error)
	RecordRefundWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, amounts map[uuid.UUID]decimal.Decimal) (decimal.Decimal, error)
	SetPaymentStatusWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status orderModel.PaymentStatus) error
}

// WalletCreditor là phần ví mà processor ghi vào
type WalletCreditor interface {
	CreditWithTx(ctx context.Context, tx pgx.Tx, entry walletModel.Entry) (*walletModel.Transaction, error)
	FindByKey(ctx context.Context, key string) (*walletModel.Transaction, error)
}

// ProcessorInterface là contract order service dùng
type ProcessorInterface interface {
	Process(ctx context.Context, req model.Request) (*model.Outcome, error)
}

// Processor ghép Calculator + idempotency key + Gate + ghi ví trong một transaction.
//
// Dòng orders bị khoá FOR UPDATE suốt transaction nên hai lần xử lý đồng thời cho cùng
// một đơn chạy tuần tự; unique constraint trên idempotency key là lớp chặn cuối.
type Processor struct {
	calc   *Calculator
	gate   *Gate
	orders OrderStore
	wallet WalletCreditor
	runner database.TxRunner
}

func NewProcessor(cfg model.Config, orders OrderStore, wallet WalletCreditor, runner database.TxRunner) *Processor {
	return &Processor{
		calc:   NewCalculator(cfg),
		gate:   NewGate(cfg),
		orders: orders,
		wallet: wallet,
		runner: runner,
	}
}

var _ ProcessorInterface = (*Processor)(nil)

// Process trả lỗi chỉ khi request sai hoặc persistence lỗi.
// "Không có gì để hoàn" và "đã hoàn rồi" là Outcome bình thường.
func (p *Processor) Process(ctx context.Context, req model.Request) (*model.Outcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	outcome, err := database.WithTransactionResult(ctx, p.runner, func(tx pgx.Tx) (*model.Outcome, error) {
		return p.processWithTx(ctx, tx, req)
	})
	if err != nil {
		metrics.RefundsTotal.WithLabelValues("failed", string(req.Event)).Inc()
		logger.ErrorWithFields("Refund processing failed", err, map[string]interface{}{
			"order_id": req.OrderID.String(),
			"kind":     string(req.Kind),
			"event":    string(req.Event),
		})
		return nil, fmt.Errorf("refund failed: %w", err)
	}

	metrics.RefundsTotal.WithLabelValues(string(outcome.Status), string(req.Event)).Inc()
	if outcome.Status == model.StatusCredited {
		amount, _ := outcome.Amount.Float64()
		metrics.RefundedAmountTotal.Add(amount)
	}

	logger.Info("Refund processed", map[string]interface{}{
		"order_id": req.OrderID.String(),
		"status":   string(outcome.Status),
		"amount":   outcome.Amount.StringFixed(2),
		"key":      outcome.Key,
		"reason":   outcome.Reason,
	})
	return outcome, nil
}

func (p *Processor) processWithTx(ctx context.Context, tx pgx.Tx, req model.Request) (*model.Outcome, error) {
	order, err := p.orders.GetForUpdateWithTx(ctx, tx, req.OrderID)
	if err != nil {
		return nil, err
	}

	// Với hoàn lẻ, key xác định trước khi tính nên lần gọi lại trả "duplicate" thay vì "skipped"
	var key string
	if req.Kind == model.KindIndividualItem {
		if item, ok := order.FindItem(*req.ItemID); ok {
			key = model.ItemKey(order.ID, item.ID, req.Event)
			if dup, err := p.alreadyRefunded(ctx, key); err != nil || dup != nil {
				return dup, err
			}
		}
	}

	calc := p.calc.Calculate(req, order)
	if !calc.Success {
		return &model.Outcome{Status: model.StatusSkipped, Amount: decimal.Zero, Key: key, Reason: calc.Reason}, nil
	}

	if req.Kind == model.KindRemainingOrder {
		itemIDs := make([]uuid.UUID, 0, len(calc.Items))
		for _, it := range calc.Items {
			itemIDs = append(itemIDs, it.ItemID)
		}
		key = model.OrderKey(order.ID, itemIDs, req.Event)
		if dup, err := p.alreadyRefunded(ctx, key); err != nil || dup != nil {
			return dup, err
		}
	}

	decision := p.gate.Evaluate(order, calc.Amount)
	if !decision.ShouldRefund {
		return &model.Outcome{Status: model.StatusSkipped, Amount: decimal.Zero, Key: key, Reason: decision.Reason}, nil
	}

	_, err = p.wallet.CreditWithTx(ctx, tx, walletModel.Entry{
		UserID:         order.UserID,
		Amount:         decision.Amount,
		OrderID:        &order.ID,
		Reason:         calc.Reason,
		IdempotencyKey: key,
	})
	if errors.Is(err, walletModel.ErrDuplicateTransaction) {
		return &model.Outcome{Status: model.StatusDuplicate, Amount: decimal.Zero, Key: key, Reason: "refund already credited"}, nil
	}
	if err != nil {
		return nil, err
	}

	refundedTotal, err := p.orders.RecordRefundWithTx(ctx, tx, order.ID, calc.AmountsByItem())
	if err != nil {
		return nil, err
	}

	status := orderModel.PaymentStatusPartiallyRefunded
	if refundedTotal.GreaterThanOrEqual(order.Total) {
		status = orderModel.PaymentStatusRefunded
	}
	if err := p.orders.SetPaymentStatusWithTx(ctx, tx, order.ID, status); err != nil {
		return nil, err
	}

	return &model.Outcome{
		Status:        model.StatusCredited,
		Amount:        decision.Amount,
		Key:           key,
		Reason:        calc.Reason,
		PaymentStatus: status,
	}, nil
}

// alreadyRefunded trả Outcome duplicate nếu key đã có trong sổ cái
func (p *Processor) alreadyRefunded(ctx context.Context, key string) (*model.Outcome, error) {
	txn, err := p.wallet.FindByKey(ctx, key)
	if errors.Is(err, walletModel.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.Outcome{
		Status: model.StatusDuplicate,
		Amount: decimal.Zero,
		Key:    key,
		Reason: fmt.Sprintf("refund already credited at %s", txn.CreatedAt.Format("2006-01-02 15:04:05")),
	}, nil
}

func validateRequest(req model.Request) error {
	switch req.Kind {
	case model.KindIndividualItem:
		if req.ItemID == nil {
			return fmt.Errorf("%w: %v", model.ErrInvalidRequest, model.ErrItemRequired)
		}
	case model.KindRemainingOrder:
	default:
		return fmt.Errorf("%w: unknown kind %q", model.ErrInvalidRequest, req.Kind)
	}

	if req.Event != model.EventCancellation && req.Event != model.EventReturn {
		return fmt.Errorf("%w: unknown event %q", model.ErrInvalidRequest, req.Event)
	}
	return nil
}
