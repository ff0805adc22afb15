package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// SalesReportRequest: khoảng ngày [From, To] tính theo ngày, To bao gồm
type SalesReportRequest struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Store bool   `form:"store"`
}

func (r SalesReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.To, validation.Required, validation.Date(dateLayout)),
	)
}

// Range trả [from, to+1 ngày) theo UTC
func (r SalesReportRequest) Range() (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, r.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(dateLayout, r.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	if to.Sub(from) > MaxRange {
		return time.Time{}, time.Time{}, ErrRangeTooLarge
	}
	return from, to.AddDate(0, 0, 1), nil
}

// MaxRange giới hạn một lần export
const MaxRange = 366 * 24 * time.Hour

// Summary là dòng tổng cuối báo cáo
type Summary struct {
	Orders         int             `json:"orders"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	Refunded       decimal.Decimal `json:"refunded"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
}

// StoredReport là kết quả khi export được lưu lên object storage
type StoredReport struct {
	Key       string    `json:"key"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Summary   Summary   `json:"summary"`
}

const ErrCodeInvalidRange = "RPT001"

var (
	ErrInvalidRange  = errors.New("report range end is before start")
	ErrRangeTooLarge = errors.New("report range exceeds one year")
	ErrStoreDisabled = errors.New("report storage is not configured")
)
