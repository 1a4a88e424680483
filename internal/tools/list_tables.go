package tools

import (
	"context"

	"github.com/bqmcp/bqmcp/internal/format"
)

// ListTablesTool lists the tables of a dataset with their type and row count
func ListTablesTool(wh Warehouse) Tool {
	return Tool{
		Name:        "list_tables",
		Description: "List all tables in a BigQuery dataset, with table type and row count.",
		Params: []Param{
			{Name: "dataset_id", Type: TypeString, Description: "Dataset ID.", Required: true},
			{Name: "project_id", Type: TypeString, Description: "Project ID. Defaults to the current project."},
		},
		Execute: func(ctx context.Context, args Args) (string, error) {
			datasetID, err := requireString(args, "dataset_id")
			if err != nil {
				return "", err
			}
			projectID := projectOrDefault(wh, args)
			tables, err := wh.ListTables(ctx, projectID, datasetID)
			if err != nil {
				return "", err
			}
			return format.Tables(projectID, datasetID, tables), nil
		},
	}
}
