package security

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// AuditEntry records one tool invocation. SQL text is stored only as a hash.
type AuditEntry struct {
	RequestID string
	Tool      string
	SQLHash   string
	Outcome   string
	Duration  time.Duration
	At        time.Time
}

// AuditSink persists audit entries outside the process log.
type AuditSink interface {
	Record(ctx context.Context, e AuditEntry) error
}

// AuditLogger logs security-relevant events with hashed identifiers
type AuditLogger struct {
	enabled bool
	sink    AuditSink
}

// NewAuditLogger returns a logger; sink may be nil.
func NewAuditLogger(enabled bool, sink AuditSink) *AuditLogger {
	return &AuditLogger{enabled: enabled, sink: sink}
}

// LogToolCall records a tool invocation event
func (a *AuditLogger) LogToolCall(ctx context.Context, e AuditEntry) {
	if a == nil || !a.enabled {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	evt := log.Info().
		Str("event", "tool_audit").
		Str("tool", e.Tool).
		Str("outcome", e.Outcome).
		Dur("duration", e.Duration)
	if e.RequestID != "" {
		evt = evt.Str("request_id", e.RequestID)
	}
	if e.SQLHash != "" {
		evt = evt.Str("sql_hash", e.SQLHash)
	}
	evt.Msg("audit")

	if a.sink == nil {
		return
	}
	// The caller's context may already be cancelled by the time the tool returns.
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.sink.Record(sinkCtx, e); err != nil {
		log.Warn().Err(err).Str("tool", e.Tool).Msg("audit sink write failed")
	}
}
