package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creator-growth/internal/domain"
)

// DownloadRepository persiste descargas de reportes y productos.
type DownloadRepository interface {
	Save(ctx context.Context, event domain.DownloadEvent) error
	GetByUserID(ctx context.Context, userID string) ([]domain.DownloadEvent, error)
	ListAll(ctx context.Context) ([]domain.DownloadEvent, error)
	// CountByProduct devuelve descargas por product id (solo eventos con producto).
	CountByProduct(ctx context.Context) (map[string]int64, error)
}

type PgDownloadRepository struct {
	pool *pgxpool.Pool
}

func NewPgDownloadRepository(pool *pgxpool.Pool) *PgDownloadRepository {
	return &PgDownloadRepository{pool: pool}
}

func (r *PgDownloadRepository) Save(ctx context.Context, event domain.DownloadEvent) error {
	const query = `
		INSERT INTO download_events (id, user_id, report_id, product_id, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.ReportID,
		event.ProductID,
		event.Email,
		event.CreatedAt,
	)
	return err
}

func (r *PgDownloadRepository) GetByUserID(ctx context.Context, userID string) ([]domain.DownloadEvent, error) {
	const query = `
		SELECT id, user_id, report_id, product_id, email, created_at
		FROM download_events
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanDownloadRows(rows)
}

func (r *PgDownloadRepository) ListAll(ctx context.Context) ([]domain.DownloadEvent, error) {
	const query = `
		SELECT id, user_id, report_id, product_id, email, created_at
		FROM download_events
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanDownloadRows(rows)
}

func (r *PgDownloadRepository) CountByProduct(ctx context.Context) (map[string]int64, error) {
	const query = `
		SELECT product_id, COUNT(*)
		FROM download_events
		WHERE product_id <> ''
		GROUP BY product_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var (
			id string
			n  int64
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func scanDownloadRows(rows pgx.Rows) ([]domain.DownloadEvent, error) {
	defer rows.Close()
	var out []domain.DownloadEvent
	for rows.Next() {
		var e domain.DownloadEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.ReportID, &e.ProductID, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
