package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore-storefront/internal/domains/offer/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const offerColumns = `
	id, title, discount_type, discount_value, applies_to,
	product_ids, category_ids, is_active, start_date, end_date,
	created_at, updated_at
`

func scanOffer(row pgx.Row) (*model.Offer, error) {
	var o model.Offer
	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.DiscountType,
		&o.DiscountValue,
		&o.AppliesTo,
		&o.ProductIDs,
		&o.CategoryIDs,
		&o.IsActive,
		&o.StartDate,
		&o.EndDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) collect(rows pgx.Rows) ([]*model.Offer, error) {
	defer rows.Close()

	offers := make([]*model.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *postgresRepository) ListLive(ctx context.Context, now time.Time) ([]*model.Offer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+offerColumns+` FROM offers
		WHERE is_active = true AND start_date <= $1 AND end_date >= $1
		ORDER BY created_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list live offers: %w", err)
	}
	return r.collect(rows)
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]*model.Offer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+offerColumns+` FROM offers
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	offers, err := r.collect(rows)
	return offers, total, err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	o, err := scanOffer(r.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOfferNotFound
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) Create(ctx context.Context, o *model.Offer) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO offers (
			id, title, discount_type, discount_value, applies_to,
			product_ids, category_ids, is_active, start_date, end_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`,
		o.ID, o.Title, o.DiscountType, o.DiscountValue, o.AppliesTo,
		o.ProductIDs, o.CategoryIDs, o.IsActive, o.StartDate, o.EndDate,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *postgresRepository) Update(ctx context.Context, o *model.Offer) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE offers SET
			title = $2, discount_type = $3, discount_value = $4, applies_to = $5,
			product_ids = $6, category_ids = $7, is_active = $8,
			start_date = $9, end_date = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`,
		o.ID, o.Title, o.DiscountType, o.DiscountValue, o.AppliesTo,
		o.ProductIDs, o.CategoryIDs, o.IsActive, o.StartDate, o.EndDate,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrOfferNotFound
	}
	return err
}

func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Offer, error) {
	o, err := scanOffer(r.pool.QueryRow(ctx, `
		UPDATE offers SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+offerColumns, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOfferNotFound
		}
		return nil, fmt.Errorf("toggle offer: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE offers SET is_active = false, updated_at = NOW()
		WHERE is_active = true AND end_date < $1
	`, asOf)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired offers: %w", err)
	}
	return tag.RowsAffected(), nil
}
