package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bqmcp/bqmcp/internal/format"
	"github.com/bqmcp/bqmcp/internal/observability"
	"github.com/bqmcp/bqmcp/internal/security"
	"github.com/rs/zerolog/log"
)

// ErrUnknownTool is the only error Call returns; tool failures become text.
var ErrUnknownTool = errors.New("unknown tool")

const (
	outcomeOK    = "ok"
	outcomeInput = "input"
)

// Options configures NewDispatcher. Zero values select the defaults.
type Options struct {
	CostTracker       *security.CostTracker
	MaxResultsCeiling int
	// ReadOnly rejects anything but SELECT/WITH before it reaches BigQuery.
	ReadOnly    bool
	MaskResults bool
	MaskColumns []string
	Audit       *security.AuditLogger
	// Timeout bounds a single call, BigQuery job wait included.
	Timeout time.Duration
}

// Dispatcher holds the static tool table.
type Dispatcher struct {
	tools   []Tool
	byName  map[string]Tool
	audit   *security.AuditLogger
	timeout time.Duration
}

func NewDispatcher(wh Warehouse, o Options) *Dispatcher {
	ct := o.CostTracker
	if ct == nil {
		ct = security.NewCostTracker(0)
	}
	var validator *security.SQLValidator
	if o.ReadOnly {
		validator = security.NewSQLValidator()
	}
	var masker *security.DataMasker
	if o.MaskResults {
		masker = security.NewDataMasker(o.MaskColumns)
	}

	d := &Dispatcher{
		tools: []Tool{
			ListProjectsTool(wh),
			ListDatasetsTool(wh),
			ListTablesTool(wh),
			DescribeTableTool(wh),
			RunQueryTool(wh, ct, validator, masker, o.MaxResultsCeiling),
		},
		audit:   o.Audit,
		timeout: o.Timeout,
	}
	d.byName = make(map[string]Tool, len(d.tools))
	for _, t := range d.tools {
		d.byName[t.Name] = t
	}
	return d
}

// Tools returns the table in registration order.
func (d *Dispatcher) Tools() []Tool {
	return d.tools
}

func (d *Dispatcher) Lookup(name string) (Tool, bool) {
	t, ok := d.byName[name]
	return t, ok
}

// Call runs the named tool. Every failure inside the tool is classified and
// returned as text with a nil error.
func (d *Dispatcher) Call(ctx context.Context, name string, args Args) (string, error) {
	t, ok := d.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = Args{}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := t.Execute(ctx, args)
	elapsed := time.Since(start)

	outcome := outcomeOK
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			outcome, out = outcomeInput, ie.Error()
		} else {
			var cat format.Category
			cat, out = format.Error(err)
			outcome = string(cat)
			log.Warn().Err(err).Str("tool", name).Str("category", outcome).Msg("tool call failed")
		}
	}

	observability.ObserveToolCall(name, outcome, elapsed)
	d.audit.LogToolCall(ctx, security.AuditEntry{
		RequestID: observability.RequestIDFromContext(ctx),
		Tool:      name,
		SQLHash:   security.HashSQL(args.String("query")),
		Outcome:   outcome,
		Duration:  elapsed,
	})
	return out, nil
}
