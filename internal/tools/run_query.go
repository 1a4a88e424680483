package tools

import (
	"context"
	"time"

	"github.com/bqmcp/bqmcp/internal/format"
	"github.com/bqmcp/bqmcp/internal/observability"
	"github.com/bqmcp/bqmcp/internal/security"
)

const (
	DefaultMaxResults        = 100
	DefaultMaxResultsCeiling = 10000
)

// ErrEmptyQuery is returned without contacting BigQuery.
const ErrEmptyQuery = inputError("Error: the SQL query is empty.")

type queryRunner struct {
	wh          Warehouse
	costTracker *security.CostTracker
	validator   *security.SQLValidator
	masker      *security.DataMasker
	ceiling     int
}

// RunQueryTool executes SQL under the cost tracker's bytes-billed ceiling.
// validator and masker are optional.
func RunQueryTool(wh Warehouse, ct *security.CostTracker, validator *security.SQLValidator, masker *security.DataMasker, ceiling int) Tool {
	if ceiling <= 0 {
		ceiling = DefaultMaxResultsCeiling
	}
	q := &queryRunner{wh: wh, costTracker: ct, validator: validator, masker: masker, ceiling: ceiling}
	return Tool{
		Name:        "run_query",
		Description: "Execute a SQL query on BigQuery and return the results as a text table with execution statistics.",
		Params: []Param{
			{Name: "query", Type: TypeString, Description: "Standard SQL query to execute.", Required: true},
			{Name: "max_results", Type: TypeInteger, Description: "Maximum number of rows to return.", Default: DefaultMaxResults},
		},
		Execute: q.execute,
	}
}

func (q *queryRunner) execute(ctx context.Context, args Args) (string, error) {
	sql := args.String("query")
	if sql == "" {
		return "", ErrEmptyQuery
	}
	if q.validator != nil {
		if err := q.validator.Validate(sql); err != nil {
			return "", err
		}
	}

	maxResults := args.Int("max_results", DefaultMaxResults)
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > q.ceiling {
		maxResults = q.ceiling
	}

	start := time.Now()
	result, err := q.wh.RunQuery(ctx, sql, q.costTracker.MaxBytesBilled(), maxResults)
	if err != nil {
		return "", err
	}
	if result.HasBytes {
		q.costTracker.LogQueryCost(sql, result.BytesProcessed, time.Since(start))
		observability.AddQueryBytes(result.BytesProcessed)
	}
	if q.masker != nil {
		result = q.masker.MaskResult(result)
	}
	return format.QueryResult(result, maxResults), nil
}
