package security

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createAuditTable = `
CREATE TABLE IF NOT EXISTS tool_audit (
	id          BIGSERIAL PRIMARY KEY,
	at          TIMESTAMPTZ NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	tool        TEXT NOT NULL,
	sql_hash    TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	duration_ms BIGINT NOT NULL
)`

const insertAudit = `
INSERT INTO tool_audit (at, request_id, tool, sql_hash, outcome, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6)`

// PostgresAuditSink appends audit entries to the tool_audit table.
type PostgresAuditSink struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditSink connects to dsn and ensures the audit table exists.
func NewPostgresAuditSink(ctx context.Context, dsn string) (*PostgresAuditSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	if _, err := pool.Exec(ctx, createAuditTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	return &PostgresAuditSink{pool: pool}, nil
}

func (s *PostgresAuditSink) Record(ctx context.Context, e AuditEntry) error {
	_, err := s.pool.Exec(ctx, insertAudit,
		e.At, e.RequestID, e.Tool, e.SQLHash, e.Outcome, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresAuditSink) Close() {
	s.pool.Close()
}
