package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore-storefront/internal/domains/coupon/model"
	"bookstore-storefront/internal/infrastructure/database"
)

const couponCodeConstraint = "coupons_code_key"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const couponColumns = `
	id, code, description, discount_type, discount_value, max_discount_value,
	min_order_amount, start_date, expiry_date, usage_limit_global, usage_limit_per_user,
	used_count, category_ids, product_ids, is_active, created_at, updated_at
`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MaxDiscountValue,
		&c.MinOrderAmount,
		&c.StartDate,
		&c.ExpiryDate,
		&c.UsageLimitGlobal,
		&c.UsageLimitPerUser,
		&c.UsedCount,
		&c.CategoryIDs,
		&c.ProductIDs,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) GetByCode(ctx context.Context, code string, userID *uuid.UUID) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, model.NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}

	if userID != nil {
		var u model.Usage
		err := r.pool.QueryRow(ctx, `
			SELECT user_id, count, used_at FROM coupon_usages
			WHERE coupon_id = $1 AND user_id = $2
		`, c.ID, *userID).Scan(&u.UserID, &u.Count, &u.UsedAt)
		switch {
		case err == nil:
			c.UsedBy = []model.Usage{u}
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("get coupon usage: %w", err)
		}
	}
	return c, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]*model.Coupon, 0, limit)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	return coupons, total, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, c *model.Coupon) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO coupons (
			id, code, description, discount_type, discount_value, max_discount_value,
			min_order_amount, start_date, expiry_date, usage_limit_global, usage_limit_per_user,
			category_ids, product_ids, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING used_count, created_at, updated_at
	`,
		c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MaxDiscountValue,
		c.MinOrderAmount, c.StartDate, c.ExpiryDate, c.UsageLimitGlobal, c.UsageLimitPerUser,
		c.CategoryIDs, c.ProductIDs, c.IsActive,
	).Scan(&c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	if database.IsUniqueViolation(err, couponCodeConstraint) {
		return model.ErrDuplicateCode
	}
	return err
}

func (r *postgresRepository) Update(ctx context.Context, c *model.Coupon) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE coupons SET
			code = $2, description = $3, discount_type = $4, discount_value = $5,
			max_discount_value = $6, min_order_amount = $7, start_date = $8, expiry_date = $9,
			usage_limit_global = $10, usage_limit_per_user = $11, category_ids = $12,
			product_ids = $13, is_active = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING used_count, created_at, updated_at
	`,
		c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue,
		c.MaxDiscountValue, c.MinOrderAmount, c.StartDate, c.ExpiryDate,
		c.UsageLimitGlobal, c.UsageLimitPerUser, c.CategoryIDs,
		c.ProductIDs, c.IsActive,
	).Scan(&c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return model.ErrCouponNotFound
	case database.IsUniqueViolation(err, couponCodeConstraint):
		return model.ErrDuplicateCode
	}
	return err
}

func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, `
		UPDATE coupons SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+couponColumns, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("toggle coupon: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE coupons SET is_active = false, updated_at = NOW()
		WHERE is_active = true AND expiry_date < $1
	`, asOf)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) RecordUsageWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) error {
	var perUserLimit *int
	err := tx.QueryRow(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit_global IS NULL OR used_count < usage_limit_global)
		RETURNING usage_limit_per_user
	`, couponID).Scan(&perUserLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUsageLimitReached
		}
		return fmt.Errorf("increment coupon usage: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx, `
		INSERT INTO coupon_usages (coupon_id, user_id, count, used_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (coupon_id, user_id) DO UPDATE
		SET count = coupon_usages.count + 1, used_at = NOW()
		WHERE $3::int IS NULL OR coupon_usages.count < $3::int
		RETURNING count
	`, couponID, userID, perUserLimit).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUserLimitReached
		}
		return fmt.Errorf("record user coupon usage: %w", err)
	}
	return nil
}
