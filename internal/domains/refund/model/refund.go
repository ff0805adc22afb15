package model

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderModel "bookstore-storefront/internal/domains/order/model"
)

// Kind: hoàn một dòng hàng hay phần còn lại của đơn
type Kind string

const (
	KindIndividualItem Kind = "INDIVIDUAL_ITEM"
	KindRemainingOrder Kind = "REMAINING_ORDER"
)

// Event là sự kiện sinh ra refund, là một phần của idempotency key
type Event string

const (
	EventCancellation Event = "cancellation"
	EventReturn       Event = "return"
)

// Request mô tả một lần yêu cầu hoàn tiền
type Request struct {
	OrderID uuid.UUID
	Kind    Kind
	Event   Event
	// ItemID bắt buộc với KindIndividualItem; chấp nhận cả item ID lẫn product ID
	ItemID *uuid.UUID
	// SettledOnly: chỉ tính dòng đã ở trạng thái cuối của sự kiện (Cancelled / Returned).
	// Admin retry luôn bật cờ này.
	SettledOnly bool
}

// SettledStatus là trạng thái dòng hàng chứng tỏ sự kiện đã xảy ra
func (e Event) SettledStatus() orderModel.ItemStatus {
	if e == EventReturn {
		return orderModel.ItemStatusReturned
	}
	return orderModel.ItemStatusCancelled
}

// ItemAmount là phần tiền hoàn cho một dòng
type ItemAmount struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Share     decimal.Decimal `json:"share"`
	Amount    decimal.Decimal `json:"amount"`
}

// Calculation là kết quả của Calculator. Success=false nghĩa là "không có gì để hoàn",
// không phải lỗi.
type Calculation struct {
	Success bool            `json:"success"`
	Amount  decimal.Decimal `json:"amount"`
	Items   []ItemAmount    `json:"items"`
	Reason  string          `json:"reason"`
}

// AmountsByItem dùng để ghi sổ refunded_amount
func (c Calculation) AmountsByItem() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(c.Items))
	for _, it := range c.Items {
		if it.Amount.IsPositive() {
			out[it.ItemID] = it.Amount
		}
	}
	return out
}

// Decision là kết quả của Gate
type Decision struct {
	ShouldRefund bool            `json:"should_refund"`
	Amount       decimal.Decimal `json:"refund_amount"`
	Reason       string          `json:"reason"`
}

// Status của một lần xử lý
type Status string

const (
	StatusCredited  Status = "credited"
	StatusSkipped   Status = "skipped"
	StatusDuplicate Status = "duplicate"
)

// Outcome là kết quả cuối cùng của Processor
type Outcome struct {
	Status        Status                   `json:"status"`
	Amount        decimal.Decimal          `json:"amount"`
	Key           string                   `json:"idempotency_key"`
	Reason        string                   `json:"reason"`
	PaymentStatus orderModel.PaymentStatus `json:"payment_status,omitempty"`
}

// =====================================================
// IDEMPOTENCY KEY
// =====================================================

// ItemKey: refund:<orderID>:<itemID>:<event>
func ItemKey(orderID, itemID uuid.UUID, event Event) string {
	return fmt.Sprintf("refund:%s:%s:%s", orderID, itemID, event)
}

// OrderKey: refund:<orderID>:order.<hash>:<event>. Hash lấy từ tập item được hoàn nên
// hai lần "huỷ phần còn lại" với cùng tập item sinh cùng key, tập khác thì key khác.
func OrderKey(orderID uuid.UUID, itemIDs []uuid.UUID, event Event) string {
	ids := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.Join(ids, ",")))
	return fmt.Sprintf("refund:%s:order.%08x:%s", orderID, h.Sum32(), event)
}
