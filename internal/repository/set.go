package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

var (
	_ QuizRepository     = (*PgQuizRepository)(nil)
	_ QuizRepository     = (*SQLiteQuizRepository)(nil)
	_ QuizRepository     = (*MemoryQuizRepository)(nil)
	_ DownloadRepository = (*PgDownloadRepository)(nil)
	_ DownloadRepository = (*SQLiteDownloadRepository)(nil)
	_ DownloadRepository = (*MemoryDownloadRepository)(nil)
	_ PaymentRepository  = (*PgPaymentRepository)(nil)
	_ PaymentRepository  = (*SQLitePaymentRepository)(nil)
	_ PaymentRepository  = (*MemoryPaymentRepository)(nil)
)

// Set agrupa los tres repositorios de un mismo backend.
type Set struct {
	Backend   string
	Quizzes   QuizRepository
	Downloads DownloadRepository
	Payments  PaymentRepository
}

func NewPgSet(pool *pgxpool.Pool) Set {
	return Set{
		Backend:   "postgres",
		Quizzes:   NewPgQuizRepository(pool),
		Downloads: NewPgDownloadRepository(pool),
		Payments:  NewPgPaymentRepository(pool),
	}
}

func NewSQLiteSet(db *sqlx.DB) Set {
	return Set{
		Backend:   "sqlite",
		Quizzes:   NewSQLiteQuizRepository(db),
		Downloads: NewSQLiteDownloadRepository(db),
		Payments:  NewSQLitePaymentRepository(db),
	}
}

func NewMemorySet() Set {
	return Set{
		Backend:   "memory",
		Quizzes:   NewMemoryQuizRepository(),
		Downloads: NewMemoryDownloadRepository(),
		Payments:  NewMemoryPaymentRepository(),
	}
}
