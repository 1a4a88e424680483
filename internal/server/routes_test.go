package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bqmcp/bqmcp/internal/config"
	"github.com/bqmcp/bqmcp/internal/mcpserver"
	"github.com/bqmcp/bqmcp/internal/models"
	"github.com/bqmcp/bqmcp/internal/server"
	"github.com/bqmcp/bqmcp/internal/tools"
)

type emptyWarehouse struct{}

func (emptyWarehouse) CurrentProject() string { return "acme" }
func (emptyWarehouse) ListDatasets(context.Context, string) ([]models.DatasetRef, error) {
	return nil, nil
}
func (emptyWarehouse) ListTables(context.Context, string, string) ([]models.TableRef, error) {
	return nil, nil
}
func (emptyWarehouse) GetTable(context.Context, string, string, string) (*models.TableDescriptor, error) {
	return &models.TableDescriptor{}, nil
}
func (emptyWarehouse) RunQuery(context.Context, string, int64, int) (*models.QueryResult, error) {
	return &models.QueryResult{}, nil
}

func testConfig(keys ...string) *config.Config {
	return &config.Config{
		APIPrefix:          "/api/v1",
		APIKeyHeader:       "X-API-Key",
		APIKeys:            keys,
		EnableAuth:         len(keys) > 0,
		RateLimitPerMinute: 1000,
	}
}

func newRouter(cfg *config.Config) http.Handler {
	d := tools.NewDispatcher(emptyWarehouse{}, tools.Options{})
	return server.NewRouter(cfg, server.Routes{
		Version:    "test",
		Dispatcher: d,
		MCP:        mcpserver.New(d, "test"),
	})
}

func do(h http.Handler, method, path, key string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{"arguments":{}}`)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutes(t *testing.T) {
	h := newRouter(testConfig())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/tools", http.StatusOK},
		{http.MethodPost, "/api/v1/tools/list_projects", http.StatusOK},
		{http.MethodPost, "/api/v1/tools/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/tools/list_projects", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rr := do(h, tt.method, tt.path, ""); rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRoutesSetCommonHeaders(t *testing.T) {
	rr := do(newRouter(testConfig()), http.MethodGet, "/health", "")
	if rr.Header().Get("X-Request-ID") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers = %v", rr.Header())
	}
}

func TestRoutesAuth(t *testing.T) {
	h := newRouter(testConfig("secret"))

	if rr := do(h, http.MethodGet, "/api/v1/tools", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/api/v1/tools", "secret"); rr.Code != http.StatusOK {
		t.Errorf("valid key: status = %d", rr.Code)
	}
	if rr := do(h, http.MethodPost, "/mcp", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("/mcp should require a key, status = %d", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health should stay public, status = %d", rr.Code)
	}
}

type downChecker struct{}

func (downChecker) TestConnection(context.Context) error { return errors.New("no route to bigquery") }

func TestRootIsLivenessOnly(t *testing.T) {
	d := tools.NewDispatcher(emptyWarehouse{}, tools.Options{})
	h := server.NewRouter(testConfig(), server.Routes{
		Version:    "test",
		Dispatcher: d,
		MCP:        mcpserver.New(d, "test"),
		Health:     downChecker{},
	})

	if rr := do(h, http.MethodGet, "/", ""); rr.Code != http.StatusOK {
		t.Errorf("/ status = %d, want 200", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("/health status = %d, want 503", rr.Code)
	}
}
