package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creator-growth/internal/domain"
)

// PaymentRepository persiste pagos de productos.
type PaymentRepository interface {
	Save(ctx context.Context, payment domain.Payment) error
	GetByUserID(ctx context.Context, userID string) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
}

type PgPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPgPaymentRepository(pool *pgxpool.Pool) *PgPaymentRepository {
	return &PgPaymentRepository{pool: pool}
}

func (r *PgPaymentRepository) Save(ctx context.Context, p domain.Payment) error {
	const query = `
		INSERT INTO payments (id, user_id, email, product_id, amount_cents, currency, provider, external_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Email,
		p.ProductID,
		p.AmountCents,
		p.Currency,
		p.Provider,
		p.ExternalID,
		p.Status,
		p.CreatedAt,
	)
	return err
}

func (r *PgPaymentRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	const query = `
		SELECT id, user_id, email, product_id, amount_cents, currency, provider, external_id, status, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanPaymentRows(rows)
}

func (r *PgPaymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	const query = `
		SELECT id, user_id, email, product_id, amount_cents, currency, provider, external_id, status, created_at
		FROM payments
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanPaymentRows(rows)
}

func scanPaymentRows(rows pgx.Rows) ([]domain.Payment, error) {
	defer rows.Close()
	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Email, &p.ProductID, &p.AmountCents, &p.Currency, &p.Provider, &p.ExternalID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
