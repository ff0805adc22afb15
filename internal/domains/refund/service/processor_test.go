package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderModel "bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/refund/model"
	walletModel "bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/pkg/database"
)

type directRunner struct{}

func (directRunner) WithTx(_ context.Context, fn database.TxFunc) error { return fn(nil) }

// memOrders giữ một đơn duy nhất, ghi sổ refund giống repository thật
type memOrders struct {
	order *orderModel.Order
}

func (m *memOrders) GetForUpdateWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*orderModel.Order, error) {
	if m.order == nil || m.order.ID != id {
		return nil, orderModel.ErrOrderNotFound
	}
	cp := *m.order
	cp.Items = append([]orderModel.OrderItem(nil), m.order.Items...)
	return &cp, nil
}

func (m *memOrders) RecordRefundWithTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, amounts map[uuid.UUID]decimal.Decimal) (decimal.Decimal, error) {
	for id, amount := range amounts {
		item, ok := m.order.FindItem(id)
		if !ok {
			return decimal.Zero, orderModel.ErrItemNotFound
		}
		item.RefundedAmount = item.RefundedAmount.Add(amount)
		m.order.RefundedTotal = m.order.RefundedTotal.Add(amount)
	}
	return m.order.RefundedTotal, nil
}

func (m *memOrders) SetPaymentStatusWithTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, status orderModel.PaymentStatus) error {
	m.order.PaymentStatus = status
	return nil
}

// memWallet mô phỏng unique constraint trên idempotency key
type memWallet struct {
	balance decimal.Decimal
	txs     map[string]walletModel.Transaction
	failOn  error
}

func newMemWallet() *memWallet {
	return &memWallet{balance: decimal.Zero, txs: make(map[string]walletModel.Transaction)}
}

func (w *memWallet) CreditWithTx(_ context.Context, _ pgx.Tx, e walletModel.Entry) (*walletModel.Transaction, error) {
	if w.failOn != nil {
		return nil, w.failOn
	}
	if _, dup := w.txs[e.IdempotencyKey]; dup {
		return nil, walletModel.ErrDuplicateTransaction
	}
	w.balance = w.balance.Add(e.Amount)
	key := e.IdempotencyKey
	t := walletModel.Transaction{
		ID:             uuid.New(),
		Type:           walletModel.TransactionCredit,
		Amount:         e.Amount,
		BalanceAfter:   w.balance,
		OrderID:        e.OrderID,
		Reason:         e.Reason,
		IdempotencyKey: &key,
		CreatedAt:      time.Now(),
	}
	w.txs[key] = t
	return &t, nil
}

func (w *memWallet) FindByKey(_ context.Context, key string) (*walletModel.Transaction, error) {
	if t, ok := w.txs[key]; ok {
		return &t, nil
	}
	return nil, walletModel.ErrTransactionNotFound
}

func newProcessor(o *orderModel.Order) (*Processor, *memOrders, *memWallet) {
	orders := &memOrders{order: o}
	wallet := newMemWallet()
	return NewProcessor(model.DefaultConfig(), orders, wallet, directRunner{}), orders, wallet
}

func TestProcessor_CreditsOnceForSameEvent(t *testing.T) {
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
	o.Items[0].Status = orderModel.ItemStatusCancelled
	p, orders, wallet := newProcessor(o)
	ctx := context.Background()

	first, err := p.Process(ctx, itemReq(o, 0, model.EventCancellation))
	require.NoError(t, err)
	assert.Equal(t, model.StatusCredited, first.Status)
	assertDec(t, "200", first.Amount)
	assert.Equal(t, model.ItemKey(o.ID, o.Items[0].ID, model.EventCancellation), first.Key)
	assert.Equal(t, orderModel.PaymentStatusPartiallyRefunded, orders.order.PaymentStatus)

	second, err := p.Process(ctx, itemReq(o, 0, model.EventCancellation))
	require.NoError(t, err)
	assert.Equal(t, model.StatusDuplicate, second.Status)
	assert.True(t, second.Amount.IsZero())

	assertDec(t, "200", wallet.balance)
	assertDec(t, "200", orders.order.Items[0].RefundedAmount)
}

func TestProcessor_ItemThenRemainingOrderSumsToTotal(t *testing.T) {
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
	p, orders, wallet := newProcessor(o)
	ctx := context.Background()

	orders.order.Items[0].Status = orderModel.ItemStatusCancelled
	_, err := p.Process(ctx, itemReq(o, 0, model.EventCancellation))
	require.NoError(t, err)

	orders.order.Items[1].Status = orderModel.ItemStatusCancelled
	rest, err := p.Process(ctx, model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCredited, rest.Status)
	assertDec(t, "390", rest.Amount)

	assertDec(t, "590", wallet.balance)
	assert.Equal(t, orderModel.PaymentStatusRefunded, orders.order.PaymentStatus)

	// lần "huỷ phần còn lại" thứ hai không còn gì để hoàn
	again, err := p.Process(ctx, model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSkipped, again.Status)
	assertDec(t, "590", wallet.balance)
}

func TestProcessor_ScenarioE_CODNeverDelivered(t *testing.T) {
	o := newOrder(orderModel.PaymentMethodCOD, "590", "200", "390")
	o.Items[0].Status = orderModel.ItemStatusCancelled
	o.Items[1].Status = orderModel.ItemStatusCancelled
	p, orders, wallet := newProcessor(o)

	out, err := p.Process(context.Background(), model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: model.EventCancellation})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSkipped, out.Status)
	assert.True(t, wallet.balance.IsZero())
	assert.Empty(t, wallet.txs)
	assert.Equal(t, orderModel.PaymentStatusPending, orders.order.PaymentStatus)
}

func TestProcessor_DuplicateOnInsertIsNotAnError(t *testing.T) {
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
	o.Items[0].Status = orderModel.ItemStatusCancelled
	p, orders, wallet := newProcessor(o)

	// key đã được ghi bởi một lần xử lý song song nhưng FindByKey chưa thấy
	wallet.failOn = walletModel.ErrDuplicateTransaction

	out, err := p.Process(context.Background(), itemReq(o, 0, model.EventCancellation))
	require.NoError(t, err)
	assert.Equal(t, model.StatusDuplicate, out.Status)
	assert.True(t, orders.order.Items[0].RefundedAmount.IsZero())
}

func TestProcessor_PersistenceErrorPropagates(t *testing.T) {
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
	o.Items[0].Status = orderModel.ItemStatusCancelled
	p, _, wallet := newProcessor(o)

	boom := errors.New("connection reset")
	wallet.failOn = boom

	_, err := p.Process(context.Background(), itemReq(o, 0, model.EventCancellation))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestProcessor_RejectsInvalidRequest(t *testing.T) {
	o := newOrder(orderModel.PaymentMethodWallet, "590", "200", "390")
	p, _, _ := newProcessor(o)

	_, err := p.Process(context.Background(), model.Request{OrderID: o.ID, Kind: model.KindIndividualItem, Event: model.EventReturn})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = p.Process(context.Background(), model.Request{OrderID: o.ID, Kind: model.KindRemainingOrder, Event: "refund-me"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestOrderKey_StableForSameItemSet(t *testing.T) {
	orderID := uuid.New()
	a, b := uuid.New(), uuid.New()

	assert.Equal(t,
		model.OrderKey(orderID, []uuid.UUID{a, b}, model.EventCancellation),
		model.OrderKey(orderID, []uuid.UUID{b, a}, model.EventCancellation))
	assert.NotEqual(t,
		model.OrderKey(orderID, []uuid.UUID{a, b}, model.EventCancellation),
		model.OrderKey(orderID, []uuid.UUID{a}, model.EventCancellation))
	assert.NotEqual(t,
		model.OrderKey(orderID, []uuid.UUID{a}, model.EventCancellation),
		model.OrderKey(orderID, []uuid.UUID{a}, model.EventReturn))
}
