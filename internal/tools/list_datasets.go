package tools

import (
	"context"

	"github.com/bqmcp/bqmcp/internal/format"
)

// ListDatasetsTool lists all datasets in a project
func ListDatasetsTool(wh Warehouse) Tool {
	return Tool{
		Name:        "list_datasets",
		Description: "List all datasets in a BigQuery project. Use this to discover what data is available.",
		Params: []Param{
			{Name: "project_id", Type: TypeString, Description: "Project ID. Defaults to the current project."},
		},
		Execute: func(ctx context.Context, args Args) (string, error) {
			projectID := projectOrDefault(wh, args)
			datasets, err := wh.ListDatasets(ctx, projectID)
			if err != nil {
				return "", err
			}
			return format.Datasets(projectID, datasets), nil
		},
	}
}

func projectOrDefault(wh Warehouse, args Args) string {
	if p := args.String("project_id"); p != "" {
		return p
	}
	return wh.CurrentProject()
}
