package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore-storefront/internal/domains/product/model"
	"bookstore-storefront/pkg/logger"
)

// số lần đọc lại version khi UPDATE bị tranh chấp
const maxStockRetries = 3

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const selectProduct = `
	SELECT id, title, image_url, category_id, price, stock, is_active, version, updated_at
	FROM products
`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.ImageURL,
		&p.CategoryID,
		&p.Price,
		&p.Stock,
		&p.IsActive,
		&p.Version,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	result := make(map[uuid.UUID]*model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, selectProduct+` WHERE id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

// DecrementStockWithTx đọc stock + version rồi UPDATE có điều kiện version.
// Nếu có checkout khác vừa ghi (0 rows), đọc lại và thử tiếp tối đa maxStockRetries lần.
func (r *postgresRepository) DecrementStockWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	for attempt := 1; attempt <= maxStockRetries; attempt++ {
		var stock, version int
		err := tx.QueryRow(ctx,
			`SELECT stock, version FROM products WHERE id = $1 AND deleted_at IS NULL`, id,
		).Scan(&stock, &version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrProductNotFound
			}
			return fmt.Errorf("read stock: %w", err)
		}

		if stock < quantity {
			return model.ErrInsufficientStock
		}

		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $3, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $2
		`, id, version, quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}

		logger.Warn("Stock version changed, retrying", map[string]interface{}{
			"product_id": id.String(),
			"attempt":    attempt,
		})
	}
	return model.ErrStockUpdateContend
}

func (r *postgresRepository) RestoreStockWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`, id, quantity)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
