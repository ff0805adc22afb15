package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product là sách đang bán, chỉ giữ các field pricing/stock cần đến
type Product struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	ImageURL   string          `json:"image_url,omitempty"`
	CategoryID uuid.UUID       `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	IsActive   bool            `json:"is_active"`
	Version    int             `json:"-"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsPurchasable kiểm tra sản phẩm còn bán và đủ hàng cho quantity
func (p *Product) IsPurchasable(quantity int) bool {
	return p.IsActive && quantity > 0 && p.Stock >= quantity
}

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStockUpdateContend = errors.New("stock update lost too many optimistic-lock races")
)
