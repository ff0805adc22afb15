package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/pkg/logger"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{
		pool: pool,
	}
}

// querier là phần chung của pool và tx để dùng lại các hàm đọc
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const orderColumns = `
	id, order_number, user_id, shipping_address, payment_method, payment_status, status,
	subtotal, discount, coupon_id, coupon_code, coupon_discount, tax, total, refunded_total,
	delivered_at, cancel_reason, is_deleted, version, created_at, updated_at
`

const itemColumns = `
	id, order_id, product_id, title, image_url, original_price, discounted_price,
	quantity, status, price_breakdown, refunded_amount, return_reason, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Status,
		&o.Subtotal,
		&o.Discount,
		&o.CouponID,
		&o.CouponCode,
		&o.CouponDiscount,
		&o.Tax,
		&o.Total,
		&o.RefundedTotal,
		&o.DeliveredAt,
		&o.CancelReason,
		&o.IsDeleted,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (model.OrderItem, error) {
	var it model.OrderItem
	err := row.Scan(
		&it.ID,
		&it.OrderID,
		&it.ProductID,
		&it.Title,
		&it.ImageURL,
		&it.OriginalPrice,
		&it.DiscountedPrice,
		&it.Quantity,
		&it.Status,
		&it.Breakdown,
		&it.RefundedAmount,
		&it.ReturnReason,
		&it.UpdatedAt,
	)
	return it, err
}

// =====================================================
// CREATE ORDER
// =====================================================

func (r *postgresOrderRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, shipping_address, payment_method, payment_status, status,
			subtotal, discount, coupon_id, coupon_code, coupon_discount, tax, total, refunded_total,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		order.ID, order.OrderNumber, order.UserID, order.ShippingAddress,
		order.PaymentMethod, order.PaymentStatus, order.Status,
		order.Subtotal, order.Discount, order.CouponID, order.CouponCode, order.CouponDiscount,
		order.Tax, order.Total, order.RefundedTotal,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO order_items (
			id, order_id, product_id, title, image_url, original_price, discounted_price,
			quantity, status, price_breakdown, refunded_amount, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, item := range order.Items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Title,
			item.ImageURL,
			item.OriginalPrice,
			item.DiscountedPrice,
			item.Quantity,
			item.Status,
			item.Breakdown,
			item.RefundedAmount,
			item.UpdatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(order.Items); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create order item %d: %w", i, err)
		}
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return r.getOrder(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND is_deleted = false`, orderID)
}

func (r *postgresOrderRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error) {
	return r.getOrder(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND is_deleted = false FOR UPDATE`, orderID)
}

func (r *postgresOrderRepository) getOrder(ctx context.Context, q querier, query string, orderID uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.loadItems(ctx, q, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

// loadItems đọc items của nhiều order trong một query, giữ thứ tự tạo
func (r *postgresOrderRepository) loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	result := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at, id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result[it.OrderID] = append(result[it.OrderID], it)
	}
	return result, rows.Err()
}

func (r *postgresOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.Order, int, error) {
	return r.list(ctx, &userID, filter)
}

func (r *postgresOrderRepository) ListAll(ctx context.Context, filter model.ListFilter) ([]model.Order, int, error) {
	return r.list(ctx, nil, filter)
}

func (r *postgresOrderRepository) list(ctx context.Context, userID *uuid.UUID, filter model.ListFilter) ([]model.Order, int, error) {
	where := `WHERE is_deleted = false
		AND ($1::uuid IS NULL OR user_id = $1)
		AND ($2::text IS NULL OR status = $2)`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, userID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where+`
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, userID, status, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0, filter.Limit)
	ids := make([]uuid.UUID, 0, filter.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	items, err := r.loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, total, nil
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresOrderRepository) UpdateItemStatusWithTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, status model.ItemStatus, reason *string) error {
	result, err := tx.Exec(ctx, `
		UPDATE order_items
		SET status = $2, return_reason = COALESCE($3, return_reason), updated_at = NOW()
		WHERE id = $1
	`, itemID, status, reason)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

func (r *postgresOrderRepository) UpdateOrderWithTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	result, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $3, payment_status = $4, delivered_at = $5, cancel_reason = $6,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, order.ID, order.Version, order.Status, order.PaymentStatus, order.DeliveredAt, order.CancelReason)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVersionMismatch
	}

	order.Version++
	return nil
}

func (r *postgresOrderRepository) RecordRefundWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, amounts map[uuid.UUID]decimal.Decimal) (decimal.Decimal, error) {
	sum := decimal.Zero
	for itemID, amount := range amounts {
		result, err := tx.Exec(ctx, `
			UPDATE order_items
			SET refunded_amount = refunded_amount + $3, updated_at = NOW()
			WHERE id = $1 AND order_id = $2
		`, itemID, orderID, amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to record item refund: %w", err)
		}
		if result.RowsAffected() == 0 {
			return decimal.Zero, model.ErrItemNotFound
		}
		sum = sum.Add(amount)
	}

	var refundedTotal decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE orders
		SET refunded_total = refunded_total + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING refunded_total
	`, orderID, sum).Scan(&refundedTotal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to record order refund: %w", err)
	}
	return refundedTotal, nil
}

func (r *postgresOrderRepository) SetPaymentStatusWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.PaymentStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to set payment status: %w", err)
	}
	return nil
}

// =====================================================
// REPORT
// =====================================================

func (r *postgresOrderRepository) ListForReport(ctx context.Context, from, to time.Time) ([]model.ReportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.order_number, o.created_at, o.payment_method, o.payment_status, o.status,
			(SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id),
			o.subtotal, o.discount, COALESCE(o.coupon_code, ''), o.coupon_discount,
			o.tax, o.total, o.refunded_total
		FROM orders o
		WHERE o.is_deleted = false AND o.created_at >= $1 AND o.created_at < $2
		ORDER BY o.created_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query report rows: %w", err)
	}
	defer rows.Close()

	out := make([]model.ReportRow, 0)
	for rows.Next() {
		var row model.ReportRow
		if err := rows.Scan(
			&row.OrderNumber,
			&row.CreatedAt,
			&row.PaymentMethod,
			&row.PaymentStatus,
			&row.Status,
			&row.ItemCount,
			&row.Subtotal,
			&row.Discount,
			&row.CouponCode,
			&row.CouponDiscount,
			&row.Tax,
			&row.Total,
			&row.RefundedTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, row)
	}

	logger.Debug("Report rows loaded", map[string]interface{}{
		"from":  from.Format(time.RFC3339),
		"to":    to.Format(time.RFC3339),
		"count": len(out),
	})
	return out, rows.Err()
}
