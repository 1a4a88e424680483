package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bqmcp/bqmcp/internal/models"
)

type maskRule struct {
	column *regexp.Regexp
	mask   func(string) string
}

var builtinRules = []maskRule{
	{regexp.MustCompile(`(?i)e_?mail`), maskEmail},
	{regexp.MustCompile(`(?i)phone|mobile`), keepLast4("***-***-")},
	{regexp.MustCompile(`(?i)ssn|social_security`), func(string) string { return "***-**-****" }},
	{regexp.MustCompile(`(?i)credit_card|card_number`), keepLast4("****-****-****-")},
	{regexp.MustCompile(`(?i)password|secret|token|api_key|access_key|private_key`), func(string) string { return "***" }},
}

// DataMasker rewrites sensitive column values in query results before they
// are rendered. Columns match either a built-in pattern or, by substring,
// one of the configured names.
type DataMasker struct {
	extra []string
}

func NewDataMasker(sensitiveColumns []string) *DataMasker {
	extra := make([]string, 0, len(sensitiveColumns))
	for _, c := range sensitiveColumns {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			extra = append(extra, c)
		}
	}
	return &DataMasker{extra: extra}
}

// MaskResult returns a copy of r with sensitive, non-NULL values masked.
func (m *DataMasker) MaskResult(r *models.QueryResult) *models.QueryResult {
	maskers := make(map[string]func(string) string)
	for _, col := range r.Columns {
		if fn := m.maskerFor(col); fn != nil {
			maskers[col] = fn
		}
	}
	if len(maskers) == 0 {
		return r
	}

	out := *r
	out.Rows = make([]map[string]interface{}, len(r.Rows))
	for i, row := range r.Rows {
		masked := make(map[string]interface{}, len(row))
		for col, val := range row {
			if fn, ok := maskers[col]; ok && val != nil {
				masked[col] = fn(fmt.Sprint(val))
				continue
			}
			masked[col] = val
		}
		out.Rows[i] = masked
	}
	return &out
}

func (m *DataMasker) maskerFor(col string) func(string) string {
	for _, r := range builtinRules {
		if r.column.MatchString(col) {
			return r.mask
		}
	}
	lower := strings.ToLower(col)
	for _, s := range m.extra {
		if strings.Contains(lower, s) {
			return func(string) string { return "***" }
		}
	}
	return nil
}

// maskEmail: "john.doe@example.com" → "jo***@***.com"
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if len(local) > 2 {
		local = local[:2]
	}
	ext := domain
	if i := strings.LastIndex(domain, "."); i >= 0 {
		ext = domain[i+1:]
	}
	return local + "***@***." + ext
}

func keepLast4(prefix string) func(string) string {
	return func(v string) string {
		var digits strings.Builder
		for _, c := range v {
			if c >= '0' && c <= '9' {
				digits.WriteRune(c)
			}
		}
		d := digits.String()
		if len(d) < 4 {
			return prefix + "****"
		}
		return prefix + d[len(d)-4:]
	}
}
