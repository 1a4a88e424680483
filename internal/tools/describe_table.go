package tools

import (
	"context"

	"github.com/bqmcp/bqmcp/internal/format"
)

// DescribeTableTool returns metadata and schema for one table
func DescribeTableTool(wh Warehouse) Tool {
	return Tool{
		Name:        "describe_table",
		Description: "Get the schema and metadata of a BigQuery table: type, timestamps, row count, size and columns.",
		Params: []Param{
			{Name: "dataset_id", Type: TypeString, Description: "Dataset ID.", Required: true},
			{Name: "table_id", Type: TypeString, Description: "Table ID.", Required: true},
			{Name: "project_id", Type: TypeString, Description: "Project ID. Defaults to the current project."},
		},
		Execute: func(ctx context.Context, args Args) (string, error) {
			datasetID, err := requireString(args, "dataset_id")
			if err != nil {
				return "", err
			}
			tableID, err := requireString(args, "table_id")
			if err != nil {
				return "", err
			}
			desc, err := wh.GetTable(ctx, projectOrDefault(wh, args), datasetID, tableID)
			if err != nil {
				return "", err
			}
			return format.Table(desc), nil
		},
	}
}
