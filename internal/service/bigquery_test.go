package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bqmcp/bqmcp/internal/format"
	"github.com/bqmcp/bqmcp/internal/service"
)

const tableListJSON = `{
  "kind": "bigquery#tableList",
  "totalItems": 1,
  "tables": [{
    "kind": "bigquery#table",
    "id": "p:d.orders",
    "type": "TABLE",
    "tableReference": {"projectId": "p", "datasetId": "d", "tableId": "orders"}
  }]
}`

const accessDeniedJSON = `{"error": {
  "code": 403,
  "message": "Access Denied: Table p:d.orders",
  "errors": [{"reason": "accessDenied", "message": "Access Denied: Table p:d.orders"}]
}}`

// newFakeAPI serves the table listing and hands every tables.get call to get.
func newFakeAPI(t *testing.T, get http.HandlerFunc) *service.BigQueryService {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/datasets/d/tables"):
			_, _ = w.Write([]byte(tableListJSON))
		case strings.Contains(r.URL.Path, "/datasets/d/tables/"):
			get(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	bq, err := service.NewBigQueryService(context.Background(), service.Options{
		ProjectID: "p",
		Endpoint:  ts.URL + "/",
	})
	if err != nil {
		t.Fatalf("NewBigQueryService: %v", err)
	}
	t.Cleanup(func() { _ = bq.Close() })
	return bq
}

func TestListTablesMetadataDenied(t *testing.T) {
	bq := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(accessDeniedJSON))
	})

	tables, err := bq.ListTables(context.Background(), "p", "d")
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 1 || tables[0].ID != "orders" || tables[0].NumRows != nil {
		t.Fatalf("tables = %+v", tables)
	}
	if got := format.Tables("p", "d", tables); got != "Tables in 'p.d':\n- orders" {
		t.Errorf("listing = %q", got)
	}
}

func TestListTablesDeadlineDuringMetadata(t *testing.T) {
	bq := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	tables, err := bq.ListTables(ctx, "p", "d")
	if err == nil {
		t.Fatalf("expected a deadline error, got tables %+v", tables)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	var se *service.Error
	if !errors.As(err, &se) || se.Op != "list tables" {
		t.Errorf("err should be a *service.Error for list tables, got %T", err)
	}
}
