package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookstore-storefront/internal/domains/product/model"
)

// Repository là phần catalog mà pricing và order cần: đọc giá, giữ/trả stock
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)

	// DecrementStockWithTx trừ stock bằng optimistic locking (cột version), retry có giới hạn
	DecrementStockWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
	// RestoreStockWithTx cộng lại stock khi huỷ/trả hàng
	RestoreStockWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}
