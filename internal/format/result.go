// Package format renders warehouse responses and failures as the plain-text
// payloads returned by every tool.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/bqmcp/bqmcp/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	// MaxDisplayColumns caps how many columns a result table shows.
	MaxDisplayColumns = 8
	// CellWidth is the padded width of every header and data cell, in display units.
	CellWidth = 15

	ruleWidth       = 60
	columnSeparator = " | "
	truncationMark  = " | ..."
)

// NoRowsMessage is returned for results with zero or unreported rows.
const NoRowsMessage = "✓ Query executed successfully, but returned no results."

// QueryResult renders r as a bounded text table. maxResults is the limit the
// caller asked for; only rows actually present in r are printed.
func QueryResult(r *models.QueryResult, maxResults int) string {
	// An unreported total is indistinguishable from an empty result here.
	if !r.TotalRowsKnown || r.TotalRows == 0 {
		return NoRowsMessage
	}
	total := r.TotalRows

	showing := total
	if maxResults >= 0 && uint64(maxResults) < total {
		showing = uint64(maxResults)
	}

	shown := r.Columns
	truncated := len(shown) > MaxDisplayColumns
	if truncated {
		shown = shown[:MaxDisplayColumns]
	}

	var sb strings.Builder
	sb.WriteString("✓ Query executed successfully\n")
	fmt.Fprintf(&sb, "Results (showing %s of %s rows):\n", commaU(showing), commaU(total))
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	headerCells := make([]string, len(shown))
	for i, col := range shown {
		headerCells[i] = pad(col)
	}
	header := joinCells(headerCells, truncated)
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", runewidth.StringWidth(header)) + "\n")

	for _, row := range r.Rows {
		cells := make([]string, len(shown))
		for i, col := range shown {
			cells[i] = pad(Cell(row[col]))
		}
		sb.WriteString(joinCells(cells, truncated) + "\n")
	}

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("📊 Statistics:\n")
	fmt.Fprintf(&sb, "   • Total rows: %s\n", commaU(total))
	fmt.Fprintf(&sb, "   • Columns: %d\n", len(r.Columns))
	if r.HasBytes {
		fmt.Fprintf(&sb, "   • Bytes processed: %s\n", humanize.Comma(r.BytesProcessed))
	}
	if d, ok := r.Duration(); ok {
		fmt.Fprintf(&sb, "   • Execution time: %s\n", d)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Cell renders one value before padding: NULL for nil, grouped thousands for
// integers, two decimals for floats, and at most CellWidth characters of the
// string form for anything else.
func Cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int:
		return humanize.Comma(int64(x))
	case int8:
		return humanize.Comma(int64(x))
	case int16:
		return humanize.Comma(int64(x))
	case int32:
		return humanize.Comma(int64(x))
	case int64:
		return humanize.Comma(x)
	case uint8:
		return humanize.Comma(int64(x))
	case uint16:
		return humanize.Comma(int64(x))
	case uint32:
		return humanize.Comma(int64(x))
	case uint64:
		return commaU(x)
	case float32:
		return fmt.Sprintf("%.2f", x)
	case float64:
		return fmt.Sprintf("%.2f", x)
	case *big.Rat:
		if x == nil {
			return "NULL"
		}
		return truncate(bigquery.NumericString(x))
	case time.Time:
		return truncate(x.Format("2006-01-02 15:04:05"))
	case []byte:
		return truncate(string(x))
	default:
		return truncate(fmt.Sprint(x))
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= CellWidth {
		return s
	}
	return string(r[:CellWidth])
}

func pad(s string) string {
	return runewidth.FillRight(s, CellWidth)
}

func joinCells(cells []string, truncated bool) string {
	line := strings.Join(cells, columnSeparator)
	if truncated {
		line += truncationMark
	}
	return line
}

func commaU(n uint64) string {
	if n > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(n))
	}
	return humanize.Comma(int64(n))
}
