package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/bqmcp/bqmcp/internal/models"
	"github.com/dustin/go-humanize"
)

const notAvailable = "Not available"

// Projects renders the list_projects payload.
func Projects(current string) string {
	return "Available projects:\nCurrent project: " + current
}

// Datasets renders the datasets of one project.
func Datasets(projectID string, datasets []models.DatasetRef) string {
	if len(datasets) == 0 {
		return fmt.Sprintf("No datasets found in project %s", projectID)
	}
	lines := make([]string, 0, len(datasets)+1)
	lines = append(lines, fmt.Sprintf("Datasets in project '%s':", projectID))
	for _, ds := range datasets {
		lines = append(lines, "- "+ds.ID)
	}
	return strings.Join(lines, "\n")
}

// Tables renders the tables of one dataset.
func Tables(projectID, datasetID string, tables []models.TableRef) string {
	if len(tables) == 0 {
		return fmt.Sprintf("No tables found in dataset %s", datasetID)
	}
	lines := make([]string, 0, len(tables)+1)
	lines = append(lines, fmt.Sprintf("Tables in '%s.%s':", projectID, datasetID))
	for _, t := range tables {
		line := "- " + t.ID
		if t.Type != "" {
			line += " (" + t.Type + ")"
		}
		if t.NumRows != nil {
			line += fmt.Sprintf(" - %s rows", commaU(*t.NumRows))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Table renders table metadata followed by its schema.
func Table(t *models.TableDescriptor) string {
	rows := notAvailable
	if t.NumRows != nil && *t.NumRows > 0 {
		rows = commaU(*t.NumRows)
	}
	size := notAvailable
	if t.NumBytes != nil && *t.NumBytes > 0 {
		size = humanize.Comma(*t.NumBytes) + " bytes"
	}

	lines := []string{
		"Table: " + t.FullName(),
		"Type: " + t.Type,
		"Created: " + timestamp(t.Created),
		"Modified: " + timestamp(t.Modified),
		"Rows: " + rows,
		"Size: " + size,
		"",
		"Schema:",
	}
	for _, f := range t.Fields {
		line := fmt.Sprintf("  - %s: %s", f.Name, f.Type)
		if f.Mode != "" && f.Mode != models.ModeNullable {
			line += " (" + f.Mode + ")"
		}
		if f.Description != "" {
			line += " - " + f.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}
