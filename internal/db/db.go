package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"creator-growth/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS quiz_submissions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	agent_id    TEXT NOT NULL DEFAULT '',
	profile     JSONB NOT NULL,
	fame_score  INTEGER NOT NULL DEFAULT 0,
	tier        TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_submissions_user_idx ON quiz_submissions (user_id);

CREATE TABLE IF NOT EXISTS download_events (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	report_id   TEXT NOT NULL DEFAULT '',
	product_id  TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS download_events_user_idx ON download_events (user_id);

CREATE TABLE IF NOT EXISTS payments (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	product_id    TEXT NOT NULL,
	amount_cents  BIGINT NOT NULL,
	currency      TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT '',
	external_id   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS payments_user_idx ON payments (user_id);
`

// EnsurePgSchema crea las tablas si no existen.
func EnsurePgSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create pg schema: %w", err)
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS quiz_submissions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	agent_id    TEXT NOT NULL DEFAULT '',
	profile     TEXT NOT NULL DEFAULT '{}',
	fame_score  INTEGER NOT NULL DEFAULT 0,
	tier        TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_submissions_user_idx ON quiz_submissions (user_id);

CREATE TABLE IF NOT EXISTS download_events (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	report_id   TEXT NOT NULL DEFAULT '',
	product_id  TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS download_events_user_idx ON download_events (user_id);

CREATE TABLE IF NOT EXISTS payments (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	product_id    TEXT NOT NULL,
	amount_cents  INTEGER NOT NULL,
	currency      TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT '',
	external_id   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS payments_user_idx ON payments (user_id);
`

// OpenSQLite abre (o crea) la base local en WAL y aplica el schema.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return db, nil
}
