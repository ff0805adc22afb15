package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderModel "bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/refund/model"
	"bookstore-storefront/pkg/logger"
	"bookstore-storefront/pkg/money"
)

// Calculator tính số tiền hoàn. Thuần tính toán, không đụng DB.
type Calculator struct {
	cfg model.Config
}

func NewCalculator(cfg model.Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Shares chia order.Total cho toàn bộ dòng hàng GỐC theo FinalPrice.
// Tổng các phần luôn bằng đúng order.Total; đơn một dòng nhận trọn order.Total.
func (c *Calculator) Shares(order *orderModel.Order) map[uuid.UUID]decimal.Decimal {
	shares := make(map[uuid.UUID]decimal.Decimal, len(order.Items))
	if len(order.Items) == 0 {
		return shares
	}

	if len(order.Items) == 1 && c.cfg.SingleItemFullTotal {
		shares[order.Items[0].ID] = money.Round2(order.Total)
		return shares
	}

	weights := make([]decimal.Decimal, len(order.Items))
	for i, it := range order.Items {
		weights[i] = it.Breakdown.FinalPrice
	}
	for i, amount := range money.Allocate(order.Total, weights) {
		shares[order.Items[i].ID] = amount
	}
	return shares
}

// Calculate trả về số tiền còn phải hoàn cho request.
// Lỗi đầu vào trả Success=false kèm lý do; panic trong lúc tính được recover thành kết quả 0.
func (c *Calculator) Calculate(req model.Request, order *orderModel.Order) (result model.Calculation) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithFields("Refund calculation panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"order_id": req.OrderID.String(),
				"kind":     string(req.Kind),
			})
			result = model.Calculation{Amount: decimal.Zero, Reason: "refund calculation failed"}
		}
	}()

	if order == nil || len(order.Items) == 0 {
		return model.Calculation{Amount: decimal.Zero, Reason: "order not found or has no items"}
	}

	switch req.Kind {
	case model.KindIndividualItem:
		return c.individualItem(req, order)
	case model.KindRemainingOrder:
		return c.remainingOrder(req, order)
	}
	return model.Calculation{Amount: decimal.Zero, Reason: fmt.Sprintf("unknown refund kind %q", req.Kind)}
}

func (c *Calculator) individualItem(req model.Request, order *orderModel.Order) model.Calculation {
	if req.ItemID == nil {
		return model.Calculation{Amount: decimal.Zero, Reason: model.ErrItemRequired.Error()}
	}

	item, ok := order.FindItem(*req.ItemID)
	if !ok {
		return model.Calculation{Amount: decimal.Zero, Reason: "item not found in order"}
	}
	if !c.cfg.ItemRefundable(item.Status) {
		return model.Calculation{
			Amount: decimal.Zero,
			Reason: fmt.Sprintf("item status %q is not refundable", item.Status),
		}
	}
	if req.SettledOnly && item.Status != req.Event.SettledStatus() {
		return model.Calculation{
			Amount: decimal.Zero,
			Reason: fmt.Sprintf("item status %q has no settled %s", item.Status, req.Event),
		}
	}

	shares := c.Shares(order)
	line := outstanding(item, shares[item.ID])
	if !line.Amount.IsPositive() {
		return model.Calculation{Amount: decimal.Zero, Reason: "item already fully refunded"}
	}

	return model.Calculation{
		Success: true,
		Amount:  line.Amount,
		Items:   []model.ItemAmount{line},
		Reason:  fmt.Sprintf("refund for %s item %s", req.Event, item.ProductID),
	}
}

// remainingOrder cộng phần chưa hoàn của các dòng thuộc sự kiện:
// huỷ → Active/Cancelled, trả hàng → Return Requested/Returned; SettledOnly chỉ lấy Cancelled / Returned.
func (c *Calculator) remainingOrder(req model.Request, order *orderModel.Order) model.Calculation {
	var covered []*orderModel.OrderItem
	switch {
	case req.SettledOnly:
		covered = order.ItemsWithStatus(req.Event.SettledStatus())
	case req.Event == model.EventReturn:
		covered = order.ItemsWithStatus(orderModel.ItemStatusReturnRequested, orderModel.ItemStatusReturned)
	default:
		covered = order.ItemsWithStatus(orderModel.ItemStatusActive, orderModel.ItemStatusCancelled)
	}

	shares := c.Shares(order)
	total := decimal.Zero
	lines := make([]model.ItemAmount, 0, len(covered))
	for _, it := range covered {
		line := outstanding(it, shares[it.ID])
		if !line.Amount.IsPositive() {
			continue
		}
		total = total.Add(line.Amount)
		lines = append(lines, line)
	}

	if !total.IsPositive() {
		return model.Calculation{Amount: decimal.Zero, Reason: "nothing left to refund"}
	}

	return model.Calculation{
		Success: true,
		Amount:  total,
		Items:   lines,
		Reason:  fmt.Sprintf("refund for %s of %d item(s) in order %s", req.Event, len(lines), order.OrderNumber),
	}
}

func outstanding(item *orderModel.OrderItem, share decimal.Decimal) model.ItemAmount {
	return model.ItemAmount{
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Share:     share,
		Amount:    money.NonNegative(share.Sub(item.RefundedAmount)),
	}
}
