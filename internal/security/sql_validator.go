package security

import (
	"errors"
	"regexp"
	"strings"
)

// ErrReadOnly is returned for statements other than SELECT/WITH when the
// read-only guard is enabled.
var ErrReadOnly = errors.New("invalid statement: only SELECT queries are allowed in read-only mode")

var writeStatementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*(DROP|DELETE|INSERT|UPDATE|MERGE|ALTER|CREATE|TRUNCATE)\s+`),
	regexp.MustCompile(`(?i)\bEXPORT\s+DATA\b`),
	regexp.MustCompile(`(?i)\bLOAD\s+DATA\b`),
	regexp.MustCompile(`(?i);\s*(EXECUTE\s+IMMEDIATE|CALL)\b`),
}

// SQLValidator rejects statements that could modify data.
type SQLValidator struct{}

func NewSQLValidator() *SQLValidator {
	return &SQLValidator{}
}

// Validate returns ErrReadOnly unless sql is a single read-only query.
// Empty input is the caller's concern.
func (v *SQLValidator) Validate(sql string) error {
	upper := strings.ToUpper(strings.TrimLeft(sql, " \t\r\n("))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ErrReadOnly
	}
	for _, p := range writeStatementPatterns {
		if p.MatchString(sql) {
			return ErrReadOnly
		}
	}
	return nil
}
