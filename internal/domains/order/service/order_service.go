package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/order/repository"
	productModel "bookstore-storefront/internal/domains/product/model"
	refundModel "bookstore-storefront/internal/domains/refund/model"
	refundService "bookstore-storefront/internal/domains/refund/service"
	walletModel "bookstore-storefront/internal/domains/wallet/model"
	"bookstore-storefront/pkg/database"
	"bookstore-storefront/pkg/logger"
	"bookstore-storefront/pkg/metrics"
)

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	orderRepo repository.OrderRepository
	stock     StockKeeper
	coupons   CouponUsageRecorder
	wallet    WalletDebitor
	checkout  CheckoutSessions
	refunds   refundService.ProcessorInterface
	runner    database.TxRunner
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	stock StockKeeper,
	coupons CouponUsageRecorder,
	wallet WalletDebitor,
	checkout CheckoutSessions,
	refunds refundService.ProcessorInterface,
	runner database.TxRunner,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		stock:     stock,
		coupons:   coupons,
		wallet:    wallet,
		checkout:  checkout,
		refunds:   refunds,
		runner:    runner,
		now:       time.Now,
	}
}

// =====================================================
// PLACE ORDER
// =====================================================

func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error) {
	// Step 1: validate format
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidOrder, "Invalid request", err)
	}

	// Step 2: báo giá tính lại từ session, không tin số liệu client gửi
	view, err := s.checkout.Get(ctx, userID, req.SessionToken)
	if err != nil {
		return nil, err
	}

	order := model.NewOrderFromQuote(userID, view.Quote, view.Session.ShippingAddress, req.PaymentMethod, s.now())

	// Step 3: stock + coupon usage + order + thanh toán ví trong một transaction
	err = s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		// trừ stock theo thứ tự product ID để hai checkout song song không khoá chéo nhau
		items := append([]model.OrderItem(nil), order.Items...)
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})
		for _, item := range items {
			if err := s.stock.DecrementStockWithTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, productModel.ErrInsufficientStock) {
					return model.NewOrderError(model.ErrCodeInsufficientStock,
						fmt.Sprintf("Insufficient stock for %s", item.Title), err)
				}
				return err
			}
		}

		if order.CouponID != nil {
			if err := s.coupons.RecordUsageWithTx(ctx, tx, *order.CouponID, userID); err != nil {
				return err
			}
		}

		if err := s.orderRepo.CreateWithTx(ctx, tx, order); err != nil {
			return err
		}

		if order.PaymentMethod == model.PaymentMethodWallet && order.Total.IsPositive() {
			_, err := s.wallet.DebitWithTx(ctx, tx, walletModel.Entry{
				UserID:         userID,
				Amount:         order.Total,
				OrderID:        &order.ID,
				Reason:         fmt.Sprintf("Payment for order %s", order.OrderNumber),
				IdempotencyKey: "payment:" + order.ID.String(),
			})
			if errors.Is(err, walletModel.ErrInsufficientBalance) {
				return model.NewOrderError(model.ErrCodeInsufficientWallet, "Insufficient wallet balance", err)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ErrorWithFields("Place order failed", err, map[string]interface{}{
			"user_id":        userID.String(),
			"payment_method": string(req.PaymentMethod),
		})
		return nil, err
	}

	// Step 4: session chỉ dùng được một lần
	if err := s.checkout.Consume(ctx, userID, req.SessionToken); err != nil {
		logger.Warn("Failed to consume checkout session", map[string]interface{}{
			"order_id": order.ID.String(),
			"error":    err.Error(),
		})
	}

	metrics.OrdersPlacedTotal.WithLabelValues(string(order.PaymentMethod)).Inc()
	logger.Info("Order placed", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total":        order.Total.StringFixed(2),
	})

	return &model.PlaceOrderResponse{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Total:         order.Total,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// =====================================================
// READ
// =====================================================

func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if !order.BelongsTo(userID) {
		return nil, model.NewOrderError(model.ErrCodeUnauthorized, "Order does not belong to user", model.ErrUnauthorized)
	}
	return order, nil
}

func (s *orderService) GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.Order, int, error) {
	return s.orderRepo.ListByUser(ctx, userID, filter)
}

func (s *orderService) ListAllOrders(ctx context.Context, filter model.ListFilter) ([]model.Order, int, error) {
	return s.orderRepo.ListAll(ctx, filter)
}

// =====================================================
// CANCELLATION
// =====================================================

func (s *orderService) CancelItem(ctx context.Context, orderID, itemID, userID uuid.UUID, req model.CancelRequest) (*ActionResult, error) {
	var cancelledID uuid.UUID

	order, err := s.mutate(ctx, orderID, func(tx pgx.Tx, order *model.Order) error {
		if !order.BelongsTo(userID) {
			return model.NewOrderError(model.ErrCodeUnauthorized, "Order does not belong to user", model.ErrUnauthorized)
		}
		if !order.Status.IsCancellable() {
			return model.NewOrderError(model.ErrCodeOrderCannotCancel,
				fmt.Sprintf("Order in status %s cannot be cancelled", order.Status), model.ErrOrderCannotCancel)
		}

		item, ok := order.FindItem(itemID)
		if !ok {
			return model.NewOrderError(model.ErrCodeItemNotFound, "Item not found in order", model.ErrItemNotFound)
		}
		if err := s.cancelItemWithTx(ctx, tx, item); err != nil {
			return err
		}
		cancelledID = item.ID

		if model.DeriveOrderStatus(order.Status, order.Items) == model.OrderStatusCancelled {
			order.CancelReason = reasonPtr(req.Reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.refundAfterCommit(ctx, order, refundModel.Request{
		OrderID: order.ID,
		Kind:    refundModel.KindIndividualItem,
		Event:   refundModel.EventCancellation,
		ItemID:  &cancelledID,
	})
}

func (s *orderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID, req model.CancelRequest) (*ActionResult, error) {
	order, err := s.mutate(ctx, orderID, func(tx pgx.Tx, order *model.Order) error {
		if !order.BelongsTo(userID) {
			return model.NewOrderError(model.ErrCodeUnauthorized, "Order does not belong to user", model.ErrUnauthorized)
		}
		return s.cancelRemainingWithTx(ctx, tx, order, req.Reason)
	})
	if err != nil {
		return nil, err
	}

	return s.refundAfterCommit(ctx, order, refundModel.Request{
		OrderID: order.ID,
		Kind:    refundModel.KindRemainingOrder,
		Event:   refundModel.EventCancellation,
	})
}

func (s *orderService) cancelRemainingWithTx(ctx context.Context, tx pgx.Tx, order *model.Order, reason string) error {
	if !order.Status.IsCancellable() {
		return model.NewOrderError(model.ErrCodeOrderCannotCancel,
			fmt.Sprintf("Order in status %s cannot be cancelled", order.Status), model.ErrOrderCannotCancel)
	}

	active := order.ItemsWithStatus(model.ItemStatusActive)
	if len(active) == 0 {
		return model.NewOrderError(model.ErrCodeOrderCannotCancel, "No active items left to cancel", model.ErrOrderCannotCancel)
	}
	for _, item := range active {
		if err := s.cancelItemWithTx(ctx, tx, item); err != nil {
			return err
		}
	}
	order.CancelReason = reasonPtr(reason)
	return nil
}

func (s *orderService) cancelItemWithTx(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	if !item.Status.CanTransitionTo(model.ItemStatusCancelled) {
		return model.NewOrderError(model.ErrCodeInvalidTransition,
			fmt.Sprintf("Item in status %s cannot be cancelled", item.Status), model.ErrInvalidTransition)
	}
	if err := s.orderRepo.UpdateItemStatusWithTx(ctx, tx, item.ID, model.ItemStatusCancelled, nil); err != nil {
		return err
	}
	if err := s.stock.RestoreStockWithTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
		return err
	}
	item.Status = model.ItemStatusCancelled
	return nil
}

// =====================================================
// RETURNS
// =====================================================

func (s *orderService) RequestReturn(ctx context.Context, orderID uuid.UUID, itemID *uuid.UUID, userID uuid.UUID, req model.ReturnRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidOrder, "Invalid request", err)
	}

	reason := strings.TrimSpace(req.Reason)
	return s.mutate(ctx, orderID, func(tx pgx.Tx, order *model.Order) error {
		if !order.BelongsTo(userID) {
			return model.NewOrderError(model.ErrCodeUnauthorized, "Order does not belong to user", model.ErrUnauthorized)
		}

		targets, err := selectItems(order, itemID, model.ItemStatusDelivered)
		if err != nil {
			return err
		}
		for _, item := range targets {
			if err := s.orderRepo.UpdateItemStatusWithTx(ctx, tx, item.ID, model.ItemStatusReturnRequested, &reason); err != nil {
				return err
			}
			item.Status = model.ItemStatusReturnRequested
			item.ReturnReason = &reason
		}
		return nil
	})
}

func (s *orderService) ApproveReturn(ctx context.Context, orderID uuid.UUID, itemID *uuid.UUID) (*ActionResult, error) {
	var approved []uuid.UUID

	order, err := s.mutate(ctx, orderID, func(tx pgx.Tx, order *model.Order) error {
		targets, err := selectItems(order, itemID, model.ItemStatusReturnRequested)
		if err != nil {
			return err
		}
		for _, item := range targets {
			if err := s.orderRepo.UpdateItemStatusWithTx(ctx, tx, item.ID, model.ItemStatusReturned, nil); err != nil {
				return err
			}
			if err := s.stock.RestoreStockWithTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			item.Status = model.ItemStatusReturned
			approved = append(approved, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req := refundModel.Request{OrderID: order.ID, Kind: refundModel.KindRemainingOrder, Event: refundModel.EventReturn}
	if itemID != nil {
		req.Kind = refundModel.KindIndividualItem
		req.ItemID = &approved[0]
	}
	return s.refundAfterCommit(ctx, order, req)
}

func (s *orderService) RejectReturn(ctx context.Context, orderID uuid.UUID, itemID *uuid.UUID) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx pgx.Tx, order *model.Order) error {
		targets, err := selectItems(order, itemID, model.ItemStatusReturnRequested)
		if err != nil {
			return err
		}
		for _, item := range targets {
			if err := s.orderRepo.UpdateItemStatusWithTx(ctx, tx, item.ID, model.ItemStatusDelivered, nil); err != nil {
				return err
			}
			item.Status = model.ItemStatusDelivered
		}
		return nil
	})
}

// selectItems: itemID != nil → đúng dòng đó và phải đang ở status; nil → mọi dòng đang ở status
func selectItems(order *model.Order, itemID *uuid.UUID, status model.ItemStatus) ([]*model.OrderItem, error) {
	if itemID != nil {
		item, ok := order.FindItem(*itemID)
		if !ok {
			return nil, model.NewOrderError(model.ErrCodeItemNotFound, "Item not found in order", model.ErrItemNotFound)
		}
		if item.Status != status {
			return nil, model.NewOrderError(model.ErrCodeReturnNotAllowed,
				fmt.Sprintf("Item in status %s is not %s", item.Status, status), model.ErrReturnNotAllowed)
		}
		return []*model.OrderItem{item}, nil
	}

	items := order.ItemsWithStatus(status)
	if len(items) == 0 {
		return nil, model.NewOrderError(model.ErrCodeReturnNotAllowed,
			fmt.Sprintf("No items in status %s", status), model.ErrReturnNotAllowed)
	}
	return items, nil
}

// =====================================================
// ADMIN STATUS UPDATE
// =====================================================

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req model.UpdateStatusRequest) (*ActionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidStatus, "Invalid request", err)
	}

	order, err := s.mutate(ctx, orderID, func(tx pgx.Tx, order *model.Order) error {
		if !req.Status.IsAdminSettable() || !order.Status.CanTransitionTo(req.Status) {
			return model.NewOrderError(model.ErrCodeInvalidTransition,
				fmt.Sprintf("Cannot move order from %s to %s", order.Status, req.Status), model.ErrInvalidTransition)
		}

		switch req.Status {
		case model.OrderStatusCancelled:
			if err := s.cancelRemainingWithTx(ctx, tx, order, "Cancelled by admin"); err != nil {
				return err
			}
		case model.OrderStatusDelivered:
			for _, item := range order.ItemsWithStatus(model.ItemStatusActive) {
				if err := s.orderRepo.UpdateItemStatusWithTx(ctx, tx, item.ID, model.ItemStatusDelivered, nil); err != nil {
					return err
				}
				item.Status = model.ItemStatusDelivered
			}
			now := s.now()
			order.DeliveredAt = &now
			// COD giao xong nghĩa là đã thu tiền
			if order.PaymentMethod == model.PaymentMethodCOD && order.PaymentStatus == model.PaymentStatusPending {
				order.PaymentStatus = model.PaymentStatusPaid
			}
		}

		order.Status = req.Status
		if req.PaymentStatus != nil {
			order.PaymentStatus = *req.PaymentStatus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order.Status != model.OrderStatusCancelled {
		return &ActionResult{Order: order}, nil
	}
	return s.refundAfterCommit(ctx, order, refundModel.Request{
		OrderID: order.ID,
		Kind:    refundModel.KindRemainingOrder,
		Event:   refundModel.EventCancellation,
	})
}

// =====================================================
// REFUND
// =====================================================

func (s *orderService) RetryRefund(ctx context.Context, orderID uuid.UUID, req model.RetryRefundRequest) (*refundModel.Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidOrder, "Invalid request", err)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	refundReq := refundModel.Request{
		OrderID:     order.ID,
		Kind:        refundModel.KindRemainingOrder,
		Event:       refundModel.Event(req.Event),
		SettledOnly: true,
	}
	settled := refundReq.Event.SettledStatus()

	// chỉ hoàn lại cho sự kiện đã thật sự xảy ra: dòng phải Cancelled (huỷ) hoặc Returned (trả hàng)
	if req.ItemID != nil {
		id, err := uuid.Parse(*req.ItemID)
		if err != nil {
			return nil, model.NewOrderError(model.ErrCodeInvalidOrder, "Invalid item ID", err)
		}
		item, ok := order.FindItem(id)
		if !ok {
			return nil, model.NewOrderError(model.ErrCodeItemNotFound, "Item not found in order", model.ErrItemNotFound)
		}
		if item.Status != settled {
			return nil, model.NewOrderError(model.ErrCodeNothingToRetry,
				fmt.Sprintf("Item is %s, expected %s", item.Status, settled), model.ErrNothingToRetry)
		}
		refundReq.Kind = refundModel.KindIndividualItem
		refundReq.ItemID = &item.ID
	} else if len(order.ItemsWithStatus(settled)) == 0 {
		return nil, model.NewOrderError(model.ErrCodeNothingToRetry,
			fmt.Sprintf("No %s items to refund", settled), model.ErrNothingToRetry)
	}

	outcome, err := s.refunds.Process(ctx, refundReq)
	if err != nil {
		return nil, model.NewOrderError(model.ErrCodeRefundFailed, "Refund failed", err)
	}
	return outcome, nil
}

// refundAfterCommit chạy refund sau khi thay đổi trạng thái đã commit.
// Lỗi persistence trả về cho caller; trạng thái đơn vẫn giữ, admin chạy lại bằng RetryRefund.
func (s *orderService) refundAfterCommit(ctx context.Context, order *model.Order, req refundModel.Request) (*ActionResult, error) {
	outcome, err := s.refunds.Process(ctx, req)
	if err != nil {
		return &ActionResult{Order: order}, model.NewOrderError(model.ErrCodeRefundFailed,
			fmt.Sprintf("Order %s updated but refund failed", order.OrderNumber), err)
	}

	if outcome.Status == refundModel.StatusCredited {
		// refund đã tăng version và ghi sổ từng dòng, đọc lại để trả bản mới nhất
		fresh, err := s.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return &ActionResult{Order: order, Refund: outcome}, err
		}
		order = fresh
	}
	return &ActionResult{Order: order, Refund: outcome}, nil
}

// =====================================================
// HELPERS
// =====================================================

// mutate khoá đơn, chạy fn, tính lại trạng thái đơn từ các dòng rồi ghi theo version
func (s *orderService) mutate(ctx context.Context, orderID uuid.UUID, fn func(tx pgx.Tx, order *model.Order) error) (*model.Order, error) {
	return database.WithTransactionResult(ctx, s.runner, func(tx pgx.Tx) (*model.Order, error) {
		order, err := s.orderRepo.GetForUpdateWithTx(ctx, tx, orderID)
		if err != nil {
			return nil, wrapNotFound(err)
		}

		if err := fn(tx, order); err != nil {
			return nil, err
		}

		order.Status = model.DeriveOrderStatus(order.Status, order.Items)
		if err := s.orderRepo.UpdateOrderWithTx(ctx, tx, order); err != nil {
			if errors.Is(err, model.ErrVersionMismatch) {
				return nil, model.NewOrderError(model.ErrCodeVersionMismatch, "Order was modified concurrently", err)
			}
			return nil, err
		}
		return order, nil
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, model.ErrOrderNotFound) {
		return model.NewOrderError(model.ErrCodeOrderNotFound, "Order not found", err)
	}
	return err
}

func reasonPtr(reason string) *string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil
	}
	return &reason
}
