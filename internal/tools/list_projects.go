package tools

import (
	"context"

	"github.com/bqmcp/bqmcp/internal/format"
)

// ListProjectsTool reports the project the adapter is bound to. Enumerating
// every project the credentials can see needs the Resource Manager API.
func ListProjectsTool(wh Warehouse) Tool {
	return Tool{
		Name:        "list_projects",
		Description: "List the BigQuery projects available to this server, including the current default project.",
		Execute: func(ctx context.Context, _ Args) (string, error) {
			return format.Projects(wh.CurrentProject()), nil
		},
	}
}
