// Package tools defines the warehouse tool table shared by the MCP and REST
// hosts, and the dispatcher that runs a tool and turns its outcome into text.
package tools

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bqmcp/bqmcp/internal/models"
)

// Warehouse is the subset of the BigQuery adapter the tools call.
type Warehouse interface {
	CurrentProject() string
	ListDatasets(ctx context.Context, projectID string) ([]models.DatasetRef, error)
	ListTables(ctx context.Context, projectID, datasetID string) ([]models.TableRef, error)
	GetTable(ctx context.Context, projectID, datasetID, tableID string) (*models.TableDescriptor, error)
	RunQuery(ctx context.Context, sql string, maxBytesBilled int64, maxResults int) (*models.QueryResult, error)
}

const (
	TypeString  = "string"
	TypeInteger = "integer"
)

// Param describes one named tool input.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     interface{}
}

// Tool represents a callable function the client can invoke
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Execute     func(ctx context.Context, args Args) (string, error)
}

// InputSchema renders Params as a JSON Schema object.
func (t Tool) InputSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(t.Params))
	required := []string{}
	for _, p := range t.Params {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Args holds decoded tool arguments. Values arrive from JSON, so numbers may
// be float64 or json.Number.
type Args map[string]interface{}

// String returns the trimmed string argument, or "" when absent or not a string.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return strings.TrimSpace(s)
}

// Int returns the integer argument, or def when absent or not numeric.
func (a Args) Int(name string, def int) int {
	switch v := a[name].(type) {
	case int:
		return v
	case int64:
		return clampInt(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return clampInt(int64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return clampInt(n)
		}
		if f, err := v.Float64(); err == nil {
			return clampInt(int64(f))
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func clampInt(n int64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}

// inputError is a fixed user-facing message for a bad argument. It is
// returned as tool text unchanged, without classification.
type inputError string

func (e inputError) Error() string { return string(e) }

func requireString(args Args, name string) (string, error) {
	v := args.String(name)
	if v == "" {
		return "", inputError("Error: " + name + " is required.")
	}
	return v, nil
}
