package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"creator-growth/internal/domain"
)

// sqliteTimeLayout es de ancho fijo para que ORDER BY created_at ordene bien como texto.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}

// SQLiteQuizRepository implementa QuizRepository sobre sqlx + modernc sqlite.
type SQLiteQuizRepository struct {
	db *sqlx.DB
}

func NewSQLiteQuizRepository(db *sqlx.DB) *SQLiteQuizRepository {
	return &SQLiteQuizRepository{db: db}
}

type sqliteQuizRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Email     string `db:"email"`
	AgentID   string `db:"agent_id"`
	Profile   string `db:"profile"`
	FameScore int    `db:"fame_score"`
	Tier      string `db:"tier"`
	CreatedAt string `db:"created_at"`
}

func (r sqliteQuizRow) toDomain() (domain.QuizSubmission, error) {
	q := domain.QuizSubmission{
		ID:        r.ID,
		UserID:    r.UserID,
		Email:     r.Email,
		AgentID:   r.AgentID,
		FameScore: r.FameScore,
		Tier:      r.Tier,
	}
	if err := json.Unmarshal([]byte(r.Profile), &q.Profile); err != nil {
		return q, fmt.Errorf("unmarshal profile for quiz %s: %w", r.ID, err)
	}
	created, err := parseSQLiteTime(r.CreatedAt)
	if err != nil {
		return q, err
	}
	q.CreatedAt = created
	return q, nil
}

func (r *SQLiteQuizRepository) Save(ctx context.Context, quiz domain.QuizSubmission) error {
	profile, err := json.Marshal(quiz.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	const query = `
		INSERT INTO quiz_submissions (id, user_id, email, agent_id, profile, fame_score, tier, created_at)
		VALUES (:id, :user_id, :email, :agent_id, :profile, :fame_score, :tier, :created_at)
	`
	_, err = r.db.NamedExecContext(ctx, query, sqliteQuizRow{
		ID:        quiz.ID,
		UserID:    quiz.UserID,
		Email:     quiz.Email,
		AgentID:   quiz.AgentID,
		Profile:   string(profile),
		FameScore: quiz.FameScore,
		Tier:      quiz.Tier,
		CreatedAt: formatSQLiteTime(quiz.CreatedAt),
	})
	return err
}

func (r *SQLiteQuizRepository) GetByUserID(ctx context.Context, userID string) ([]domain.QuizSubmission, error) {
	const query = `SELECT * FROM quiz_submissions WHERE user_id = ? ORDER BY created_at DESC`
	return r.selectQuizzes(ctx, query, userID)
}

func (r *SQLiteQuizRepository) ListAll(ctx context.Context) ([]domain.QuizSubmission, error) {
	const query = `SELECT * FROM quiz_submissions ORDER BY created_at DESC`
	return r.selectQuizzes(ctx, query)
}

func (r *SQLiteQuizRepository) selectQuizzes(ctx context.Context, query string, args ...any) ([]domain.QuizSubmission, error) {
	var rows []sqliteQuizRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.QuizSubmission, 0, len(rows))
	for _, row := range rows {
		q, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// SQLiteDownloadRepository implementa DownloadRepository sobre sqlx.
type SQLiteDownloadRepository struct {
	db *sqlx.DB
}

func NewSQLiteDownloadRepository(db *sqlx.DB) *SQLiteDownloadRepository {
	return &SQLiteDownloadRepository{db: db}
}

type sqliteDownloadRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	ReportID  string `db:"report_id"`
	ProductID string `db:"product_id"`
	Email     string `db:"email"`
	CreatedAt string `db:"created_at"`
}

func (r *SQLiteDownloadRepository) Save(ctx context.Context, e domain.DownloadEvent) error {
	const query = `
		INSERT INTO download_events (id, user_id, report_id, product_id, email, created_at)
		VALUES (:id, :user_id, :report_id, :product_id, :email, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, sqliteDownloadRow{
		ID:        e.ID,
		UserID:    e.UserID,
		ReportID:  e.ReportID,
		ProductID: e.ProductID,
		Email:     e.Email,
		CreatedAt: formatSQLiteTime(e.CreatedAt),
	})
	return err
}

func (r *SQLiteDownloadRepository) GetByUserID(ctx context.Context, userID string) ([]domain.DownloadEvent, error) {
	return r.selectDownloads(ctx, `SELECT * FROM download_events WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *SQLiteDownloadRepository) ListAll(ctx context.Context) ([]domain.DownloadEvent, error) {
	return r.selectDownloads(ctx, `SELECT * FROM download_events ORDER BY created_at DESC`)
}

func (r *SQLiteDownloadRepository) CountByProduct(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ProductID string `db:"product_id"`
		Total     int64  `db:"total"`
	}
	const query = `
		SELECT product_id, COUNT(*) AS total
		FROM download_events
		WHERE product_id <> ''
		GROUP BY product_id
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Total
	}
	return out, nil
}

func (r *SQLiteDownloadRepository) selectDownloads(ctx context.Context, query string, args ...any) ([]domain.DownloadEvent, error) {
	var rows []sqliteDownloadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.DownloadEvent, 0, len(rows))
	for _, row := range rows {
		created, err := parseSQLiteTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DownloadEvent{
			ID:        row.ID,
			UserID:    row.UserID,
			ReportID:  row.ReportID,
			ProductID: row.ProductID,
			Email:     row.Email,
			CreatedAt: created,
		})
	}
	return out, nil
}

// SQLitePaymentRepository implementa PaymentRepository sobre sqlx.
type SQLitePaymentRepository struct {
	db *sqlx.DB
}

func NewSQLitePaymentRepository(db *sqlx.DB) *SQLitePaymentRepository {
	return &SQLitePaymentRepository{db: db}
}

type sqlitePaymentRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	Email       string `db:"email"`
	ProductID   string `db:"product_id"`
	AmountCents int64  `db:"amount_cents"`
	Currency    string `db:"currency"`
	Provider    string `db:"provider"`
	ExternalID  string `db:"external_id"`
	Status      string `db:"status"`
	CreatedAt   string `db:"created_at"`
}

func (r *SQLitePaymentRepository) Save(ctx context.Context, p domain.Payment) error {
	const query = `
		INSERT INTO payments (id, user_id, email, product_id, amount_cents, currency, provider, external_id, status, created_at)
		VALUES (:id, :user_id, :email, :product_id, :amount_cents, :currency, :provider, :external_id, :status, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, sqlitePaymentRow{
		ID:          p.ID,
		UserID:      p.UserID,
		Email:       p.Email,
		ProductID:   p.ProductID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Provider:    p.Provider,
		ExternalID:  p.ExternalID,
		Status:      p.Status,
		CreatedAt:   formatSQLiteTime(p.CreatedAt),
	})
	return err
}

func (r *SQLitePaymentRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	return r.selectPayments(ctx, `SELECT * FROM payments WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *SQLitePaymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return r.selectPayments(ctx, `SELECT * FROM payments ORDER BY created_at DESC`)
}

func (r *SQLitePaymentRepository) selectPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	var rows []sqlitePaymentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		created, err := parseSQLiteTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Payment{
			ID:          row.ID,
			UserID:      row.UserID,
			Email:       row.Email,
			ProductID:   row.ProductID,
			AmountCents: row.AmountCents,
			Currency:    row.Currency,
			Provider:    row.Provider,
			ExternalID:  row.ExternalID,
			Status:      row.Status,
			CreatedAt:   created,
		})
	}
	return out, nil
}
