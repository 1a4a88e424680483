package security

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

const bytesPerTiB = 1 << 40
const bigQueryCostPerTiB = 6.25 // USD, on-demand pricing

// CostTracker carries the per-query bytes-billed ceiling and logs what each
// query scanned.
type CostTracker struct {
	maxBytesBilled int64
}

func NewCostTracker(maxBytesBilled int64) *CostTracker {
	return &CostTracker{maxBytesBilled: maxBytesBilled}
}

// MaxBytesBilled is passed with every query; BigQuery fails the job
// instead of billing past it.
func (ct *CostTracker) MaxBytesBilled() int64 {
	return ct.maxBytesBilled
}

// Ceiling renders the limit for logs, e.g. "100 MiB".
func (ct *CostTracker) Ceiling() string {
	return humanize.IBytes(uint64(ct.maxBytesBilled))
}

// EstimateUSD converts scanned bytes to an on-demand cost estimate.
func EstimateUSD(bytesProcessed int64) float64 {
	return float64(bytesProcessed) / bytesPerTiB * bigQueryCostPerTiB
}

// LogQueryCost logs query cost info with a hashed SQL identifier
func (ct *CostTracker) LogQueryCost(sql string, bytesProcessed int64, duration time.Duration) {
	costUSD := EstimateUSD(bytesProcessed)
	log.Info().
		Str("event", "query_cost").
		Str("sql_hash", HashSQL(sql)).
		Int64("bytes_processed", bytesProcessed).
		Int64("max_bytes_billed", ct.maxBytesBilled).
		Float64("cost_usd", costUSD).
		Dur("duration", duration).
		Msgf("query scanned %s ($%.4f)", humanize.IBytes(uint64(bytesProcessed)), costUSD)
}

// HashSQL returns a short stable identifier so SQL text never reaches logs.
func HashSQL(sql string) string {
	if sql == "" {
		return ""
	}
	return hashStr(sql)[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
