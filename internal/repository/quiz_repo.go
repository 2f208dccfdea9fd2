package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creator-growth/internal/domain"
)

// QuizRepository define el contrato de persistencia para submissions del quiz.
type QuizRepository interface {
	Save(ctx context.Context, quiz domain.QuizSubmission) error
	GetByUserID(ctx context.Context, userID string) ([]domain.QuizSubmission, error)
	ListAll(ctx context.Context) ([]domain.QuizSubmission, error)
}

// PgQuizRepository implementa QuizRepository usando pgxpool.
type PgQuizRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuizRepository(pool *pgxpool.Pool) *PgQuizRepository {
	return &PgQuizRepository{pool: pool}
}

func (r *PgQuizRepository) Save(ctx context.Context, quiz domain.QuizSubmission) error {
	profile, err := json.Marshal(quiz.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	const query = `
		INSERT INTO quiz_submissions (id, user_id, email, agent_id, profile, fame_score, tier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		quiz.ID,
		quiz.UserID,
		quiz.Email,
		quiz.AgentID,
		profile,
		quiz.FameScore,
		quiz.Tier,
		quiz.CreatedAt,
	)
	return err
}

func (r *PgQuizRepository) GetByUserID(ctx context.Context, userID string) ([]domain.QuizSubmission, error) {
	const query = `
		SELECT id, user_id, email, agent_id, profile, fame_score, tier, created_at
		FROM quiz_submissions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanQuizRows(rows)
}

func (r *PgQuizRepository) ListAll(ctx context.Context) ([]domain.QuizSubmission, error) {
	const query = `
		SELECT id, user_id, email, agent_id, profile, fame_score, tier, created_at
		FROM quiz_submissions
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanQuizRows(rows)
}

func scanQuizRows(rows pgx.Rows) ([]domain.QuizSubmission, error) {
	defer rows.Close()
	var out []domain.QuizSubmission
	for rows.Next() {
		var (
			q       domain.QuizSubmission
			profile []byte
		)
		if err := rows.Scan(&q.ID, &q.UserID, &q.Email, &q.AgentID, &profile, &q.FameScore, &q.Tier, &q.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(profile, &q.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile for quiz %s: %w", q.ID, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
