package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bqmcp/bqmcp/internal/service"
)

// Category is the user-facing classification of a tool failure.
type Category string

const (
	CategorySyntax           Category = "syntax"
	CategoryNotFound         Category = "not_found"
	CategoryPermissionDenied Category = "permission_denied"
	CategoryQuotaExceeded    Category = "quota_exceeded"
	CategoryInvalidArgument  Category = "invalid_argument"
	CategoryUnknown          Category = "unknown"
)

var headers = map[Category]string{
	CategorySyntax:           "❌ SQL syntax error:",
	CategoryNotFound:         "❌ Table or dataset not found:",
	CategoryPermissionDenied: "❌ Permission denied:",
	CategoryQuotaExceeded:    "❌ Resource limit exceeded:",
	CategoryInvalidArgument:  "❌ Invalid query:",
}

var hints = map[Category]string{
	CategorySyntax:           "💡 Tip: Check the syntax of your SQL query.",
	CategoryNotFound:         "💡 Tip: Verify the fully-qualified name is correct: `project.dataset.table`",
	CategoryPermissionDenied: "💡 Tip: Verify that you have read permissions on the dataset.",
	CategoryQuotaExceeded:    "💡 Tip: Try restricting your query with LIMIT or WHERE filters.",
	CategoryInvalidArgument:  "💡 Tip: Check column names and data types.",
	CategoryUnknown:          "💡 Tip: If the error persists, check your BigQuery connection and permissions.",
}

// Hint returns the fixed remediation hint for c.
func Hint(c Category) string {
	return hints[c]
}

// substring rules, tested in order; the first match wins.
var rules = []struct {
	category Category
	needles  []string
}{
	{CategorySyntax, []string{"syntax error"}},
	{CategoryNotFound, []string{"not found"}},
	{CategoryPermissionDenied, []string{"permission denied", "access denied"}},
	{CategoryQuotaExceeded, []string{"quota exceeded", "limit exceeded"}},
	{CategoryInvalidArgument, []string{"invalid"}},
}

var kindCategories = map[service.ErrorKind]Category{
	service.KindSyntax:           CategorySyntax,
	service.KindNotFound:         CategoryNotFound,
	service.KindPermissionDenied: CategoryPermissionDenied,
	service.KindQuotaExceeded:    CategoryQuotaExceeded,
	service.KindInvalidArgument:  CategoryInvalidArgument,
}

// Classify assigns err a category. A kind set by the adapter takes
// precedence; otherwise the message is matched case-insensitively.
func Classify(err error) Category {
	if c, ok := kindCategories[service.KindOf(err)]; ok {
		return c
	}
	msg, _ := rawMessage(err)
	return ClassifyMessage(msg)
}

// ClassifyMessage applies the substring rules to msg.
func ClassifyMessage(msg string) Category {
	lower := strings.ToLower(msg)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(lower, n) {
				return r.category
			}
		}
	}
	return CategoryUnknown
}

// Error classifies err and composes header, raw message and hint into the
// text returned in place of a tool result.
func Error(err error) (Category, string) {
	c := Classify(err)
	msg, cause := rawMessage(err)

	header, ok := headers[c]
	if !ok {
		header = fmt.Sprintf("❌ Error (%T):", cause)
	}
	return c, header + "\n" + msg + "\n\n" + hints[c]
}

// rawMessage strips the adapter's operation prefix so the caller sees the
// service's own text.
func rawMessage(err error) (string, error) {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Err.Error(), se.Err
	}
	return err.Error(), err
}
