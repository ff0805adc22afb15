package model

// =====================================================
// ITEM STATUS
// =====================================================

type ItemStatus string

const (
	ItemStatusActive          ItemStatus = "Active"
	ItemStatusDelivered       ItemStatus = "Delivered"
	ItemStatusCancelled       ItemStatus = "Cancelled"
	ItemStatusReturnRequested ItemStatus = "Return Requested"
	ItemStatusReturned        ItemStatus = "Returned"
)

// itemTransitions là toàn bộ chuyển trạng thái hợp lệ của một dòng hàng.
// Return Requested → Delivered là khi admin từ chối yêu cầu trả hàng.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusActive:          {ItemStatusCancelled, ItemStatusDelivered},
	ItemStatusDelivered:       {ItemStatusReturnRequested},
	ItemStatusReturnRequested: {ItemStatusReturned, ItemStatusDelivered},
}

func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusDelivered, ItemStatusCancelled,
		ItemStatusReturnRequested, ItemStatusReturned:
		return true
	}
	return false
}

// =====================================================
// ORDER STATUS
// =====================================================

type OrderStatus string

const (
	OrderStatusPlaced          OrderStatus = "Placed"
	OrderStatusProcessing      OrderStatus = "Processing"
	OrderStatusShipped         OrderStatus = "Shipped"
	OrderStatusDelivered       OrderStatus = "Delivered"
	OrderStatusCancelled       OrderStatus = "Cancelled"
	OrderStatusReturnRequested OrderStatus = "Return Requested"
	OrderStatusReturned        OrderStatus = "Returned"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:          {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:         {OrderStatusDelivered},
	OrderStatusDelivered:       {OrderStatusReturnRequested, OrderStatusReturned},
	OrderStatusReturnRequested: {OrderStatusReturned, OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusReturnRequested, OrderStatusReturned:
		return true
	}
	return false
}

// IsCancellable: chỉ huỷ được khi chưa giao cho vận chuyển
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPlaced || s == OrderStatusProcessing
}

// IsAdminSettable: các trạng thái admin được set trực tiếp qua UpdateStatus
func (s OrderStatus) IsAdminSettable() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DeriveOrderStatus tính lại trạng thái đơn sau mỗi thay đổi ở cấp dòng hàng:
//   - mọi dòng Cancelled → Cancelled
//   - có dòng Return Requested → Return Requested
//   - mọi dòng chưa huỷ đều Returned → Returned
//   - đang Return Requested mà không còn yêu cầu nào → Delivered
//   - còn lại giữ nguyên trạng thái tiến trình hiện tại
func DeriveOrderStatus(current OrderStatus, items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return current
	}

	var cancelled, returnRequested, returned int
	for _, it := range items {
		switch it.Status {
		case ItemStatusCancelled:
			cancelled++
		case ItemStatusReturnRequested:
			returnRequested++
		case ItemStatusReturned:
			returned++
		}
	}

	switch {
	case cancelled == len(items):
		return OrderStatusCancelled
	case returnRequested > 0:
		return OrderStatusReturnRequested
	case returned > 0 && returned == len(items)-cancelled:
		return OrderStatusReturned
	case current == OrderStatusReturnRequested:
		return OrderStatusDelivered
	}
	return current
}

// =====================================================
// PAYMENT
// =====================================================

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "Pending"
	PaymentStatusPaid              PaymentStatus = "Paid"
	PaymentStatusFailed            PaymentStatus = "Failed"
	PaymentStatusRefunded          PaymentStatus = "Refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "Partially Refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "COD"
	PaymentMethodRazorpay PaymentMethod = "Razorpay"
	PaymentMethodWallet   PaymentMethod = "Wallet"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodRazorpay, PaymentMethodWallet:
		return true
	}
	return false
}

// InitialPaymentStatus: ví trừ tiền ngay khi đặt nên Paid, còn lại chờ thu/gateway xác nhận
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentMethodWallet {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}
