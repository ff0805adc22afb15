package model

import (
	"errors"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeCouponNotFound          ErrorCode = "COUPON_NOT_FOUND"
	ErrCodeCouponInactive          ErrorCode = "COUPON_INACTIVE"
	ErrCodeCouponNotStarted        ErrorCode = "COUPON_NOT_STARTED"
	ErrCodeCouponExpired           ErrorCode = "COUPON_EXPIRED"
	ErrCodeCouponMinOrderNotMet    ErrorCode = "COUPON_MIN_ORDER_NOT_MET"
	ErrCodeCouponUsageLimitReached ErrorCode = "COUPON_USAGE_LIMIT_REACHED"
	ErrCodeCouponUserLimitReached  ErrorCode = "COUPON_USER_LIMIT_REACHED"
	ErrCodeCouponNotApplicable     ErrorCode = "COUPON_NOT_APPLICABLE"

	ErrCodeCouponDuplicateCode ErrorCode = "VAL_DUPLICATE_CODE"
	ErrCodeValidationFailed    ErrorCode = "VAL_INVALID_INPUT"
	ErrCodeInternalError       ErrorCode = "SYS_INTERNAL_ERROR"
)

// AppError là lỗi nghiệp vụ coupon, handler trả thẳng Code + HTTPStatus
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is so theo Code để errors.Is dùng được với bản có Details
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// WithDetails trả bản copy có thêm details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrCouponNotFound = &AppError{
		Code:       ErrCodeCouponNotFound,
		Message:    "Coupon does not exist",
		HTTPStatus: http.StatusNotFound,
	}
	ErrCouponInactive = &AppError{
		Code:       ErrCodeCouponInactive,
		Message:    "Coupon is not active",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrCouponNotStarted = &AppError{
		Code:       ErrCodeCouponNotStarted,
		Message:    "Coupon is not valid yet",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrCouponExpired = &AppError{
		Code:       ErrCodeCouponExpired,
		Message:    "Coupon has expired",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMinOrderNotMet = &AppError{
		Code:       ErrCodeCouponMinOrderNotMet,
		Message:    "Order amount is below the coupon minimum",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrUsageLimitReached = &AppError{
		Code:       ErrCodeCouponUsageLimitReached,
		Message:    "Coupon usage limit reached",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrUserLimitReached = &AppError{
		Code:       ErrCodeCouponUserLimitReached,
		Message:    "You have already used this coupon the maximum number of times",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrNotApplicable = &AppError{
		Code:       ErrCodeCouponNotApplicable,
		Message:    "Coupon does not apply to any item in the cart",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidRequest = &AppError{
		Code:       ErrCodeValidationFailed,
		Message:    "Invalid coupon data",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrDuplicateCode = &AppError{
		Code:       ErrCodeCouponDuplicateCode,
		Message:    "Coupon code already exists",
		HTTPStatus: http.StatusConflict,
	}
)
