package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound        = "ORD001"
	ErrCodeOrderCannotCancel    = "ORD002"
	ErrCodeVersionMismatch      = "ORD003"
	ErrCodeInsufficientStock    = "ORD004"
	ErrCodeItemNotFound         = "ORD005"
	ErrCodeInvalidTransition    = "ORD006"
	ErrCodeSessionInvalid       = "ORD007"
	ErrCodeInsufficientWallet   = "ORD008"
	ErrCodeInvalidAddress       = "ORD011"
	ErrCodeInvalidPaymentMethod = "ORD013"
	ErrCodeUnauthorized         = "ORD014"
	ErrCodeInvalidStatus        = "ORD015"
	ErrCodeReturnNotAllowed     = "ORD016"
	ErrCodeInvalidOrder         = "ORD017"
	ErrCodeRefundFailed         = "ORD018"
	ErrCodeNothingToRetry       = "ORD019"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderCannotCancel    = errors.New("order cannot be cancelled")
	ErrVersionMismatch      = errors.New("version mismatch - concurrent modification detected")
	ErrItemNotFound         = errors.New("order item not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrReturnNotAllowed     = errors.New("item is not eligible for return")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrUnauthorized         = errors.New("unauthorized access")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrNothingToRetry       = errors.New("no settled cancellation or return to refund")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError
func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
