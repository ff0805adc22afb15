package shared

import "time"

// =====================================================
// ASYNQ TASK TYPES & QUEUES
// =====================================================
const (
	TypeExpireOffers  = "offer:expire"
	TypeExpireCoupons = "coupon:expire"

	QueuePromotion = "promotion"
	QueueDefault   = "default"
)

// ExpirePayload là payload chung cho các job deactivate theo thời gian
// Scheduler gửi payload rỗng, handler dùng time.Now() khi AsOf == nil
type ExpirePayload struct {
	AsOf *string `json:"as_of,omitempty"` // RFC3339, dùng khi chạy tay để backfill
}

// ShippingAddress là snapshot địa chỉ giao hàng.
// Đặt ở shared để checkout và order cùng dùng mà không import lẫn nhau.
type ShippingAddress struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

// ResolveAsOf trả thời điểm job dùng để so sánh hạn; AsOf rỗng thì dùng now
func (p ExpirePayload) ResolveAsOf(now time.Time) (time.Time, error) {
	if p.AsOf == nil || *p.AsOf == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339, *p.AsOf)
}
