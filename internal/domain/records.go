package domain

import "time"

// QuizSubmission es lo que persistimos de cada quiz (con o sin análisis completo).
type QuizSubmission struct {
	ID        string         `json:"id" db:"id"`
	UserID    string         `json:"userId" db:"user_id"`
	Email     string         `json:"email,omitempty" db:"email"`
	AgentID   string         `json:"agentId,omitempty" db:"agent_id"`
	Profile   CreatorProfile `json:"profile" db:"-"`
	FameScore int            `json:"fameScore" db:"fame_score"`
	Tier      string         `json:"tier,omitempty" db:"tier"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

type DownloadEvent struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ReportID  string    `json:"reportId,omitempty" db:"report_id"`
	ProductID string    `json:"productId,omitempty" db:"product_id"`
	Email     string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type Payment struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	Email       string    `json:"email,omitempty" db:"email"`
	ProductID   string    `json:"productId" db:"product_id"`
	AmountCents int64     `json:"amountCents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Provider    string    `json:"provider,omitempty" db:"provider"`
	ExternalID  string    `json:"externalId,omitempty" db:"external_id"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
