package service

import (
	"errors"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// ErrorKind is the closed set of failure categories the adapter can
// assign at the source.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindSyntax
	KindNotFound
	KindPermissionDenied
	KindQuotaExceeded
	KindInvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Error is returned by every BigQueryService operation that fails.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

// KindOf inspects BigQuery job errors and Google API errors for a reason
// code or HTTP status. Errors carrying neither are KindUnknown.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}

	var bqErr *bigquery.Error
	if errors.As(err, &bqErr) {
		return kindFromReason(bqErr.Reason, bqErr.Message)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		for _, item := range apiErr.Errors {
			if k := kindFromReason(item.Reason, item.Message); k != KindUnknown {
				return k
			}
		}
		return kindFromStatus(apiErr.Code)
	}
	return KindUnknown
}

func kindFromReason(reason, message string) ErrorKind {
	switch reason {
	case "invalidQuery":
		if strings.Contains(strings.ToLower(message), "syntax error") {
			return KindSyntax
		}
		return KindInvalidArgument
	case "notFound":
		return KindNotFound
	case "accessDenied":
		return KindPermissionDenied
	case "quotaExceeded", "rateLimitExceeded", "billingTierLimitExceeded",
		"bytesBilledLimitExceeded", "resourcesExceeded", "responseTooLarge":
		return KindQuotaExceeded
	case "invalid":
		return KindInvalidArgument
	}
	return KindUnknown
}

func kindFromStatus(code int) ErrorKind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusTooManyRequests:
		return KindQuotaExceeded
	case http.StatusBadRequest:
		return KindInvalidArgument
	}
	return KindUnknown
}
