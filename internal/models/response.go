package models

import "time"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ToolCallResponse is returned by POST /api/v1/tools/{name}.
// Tool failures are reported inside Output, never as an HTTP error.
type ToolCallResponse struct {
	Status string `json:"status"`
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

// ToolInfo describes one registered tool for GET /api/v1/tools
type ToolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamInfo `json:"params"`
}

// ParamInfo describes one tool parameter
type ParamInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// DatasetRef identifies a BigQuery dataset
type DatasetRef struct {
	ProjectID string `json:"project_id"`
	ID        string `json:"id"`
}

// TableRef is one entry of a dataset's table listing
type TableRef struct {
	ProjectID string `json:"project_id"`
	DatasetID string `json:"dataset_id"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	// NumRows is nil when the listing did not report a row count.
	NumRows *uint64 `json:"num_rows,omitempty"`
}

// Field modes as reported by BigQuery
const (
	ModeNullable = "NULLABLE"
	ModeRequired = "REQUIRED"
	ModeRepeated = "REPEATED"
)

// FieldDescriptor describes a single schema column
type FieldDescriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Mode        string `json:"mode"`
	Description string `json:"description,omitempty"`
}

// TableDescriptor is a read-only snapshot of table metadata
type TableDescriptor struct {
	ProjectID string            `json:"project_id"`
	DatasetID string            `json:"dataset_id"`
	TableID   string            `json:"table_id"`
	Type      string            `json:"type"`
	Created   time.Time         `json:"created"`
	Modified  time.Time         `json:"modified"`
	NumRows   *uint64           `json:"num_rows,omitempty"`
	NumBytes  *int64            `json:"num_bytes,omitempty"`
	Fields    []FieldDescriptor `json:"fields"`
}

// FullName returns project.dataset.table
func (t *TableDescriptor) FullName() string {
	return t.ProjectID + "." + t.DatasetID + "." + t.TableID
}

// QueryResult holds a bounded slice of a query's output plus job statistics.
type QueryResult struct {
	Columns []string
	Rows    []map[string]interface{}
	JobID   string

	// TotalRows is the row count reported by the service. When
	// TotalRowsKnown is false the service did not report one.
	TotalRows      uint64
	TotalRowsKnown bool

	BytesProcessed int64
	HasBytes       bool

	// StartTime and EndTime are zero when the job did not report them.
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the job's execution time and whether both timestamps were reported.
func (r *QueryResult) Duration() (time.Duration, bool) {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0, false
	}
	return r.EndTime.Sub(r.StartTime), true
}
