package service

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/bigquery"
	"github.com/bqmcp/bqmcp/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// metadataFetchLimit bounds concurrent table metadata lookups in ListTables.
const metadataFetchLimit = 8

// BigQueryService wraps the BigQuery SDK client
type BigQueryService struct {
	client   *bigquery.Client
	location string
}

// Options configures NewBigQueryService
type Options struct {
	// ProjectID may be empty, in which case the project is detected from
	// the environment's default credentials.
	ProjectID       string
	CredentialsFile string
	Location        string
	// Endpoint overrides the API endpoint and disables authentication.
	// Used for the BigQuery emulator.
	Endpoint string
}

// NewBigQueryService creates a new BigQuery client
func NewBigQueryService(ctx context.Context, o Options, extra ...option.ClientOption) (*BigQueryService, error) {
	var opts []option.ClientOption
	if o.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.CredentialsFile))
	}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint), option.WithoutAuthentication())
	}
	opts = append(opts, extra...)

	projectID := o.ProjectID
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}

	return &BigQueryService{
		client:   client,
		location: o.Location,
	}, nil
}

// Close releases the BigQuery client
func (s *BigQueryService) Close() error {
	return s.client.Close()
}

// CurrentProject returns the project the client was configured (or detected) with
func (s *BigQueryService) CurrentProject() string {
	return s.client.Project()
}

// TestConnection verifies BigQuery connectivity
func (s *BigQueryService) TestConnection(ctx context.Context) error {
	q := s.client.Query("SELECT 1")
	q.Location = s.location
	job, err := q.Run(ctx)
	if err != nil {
		return wrapError("query run", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return wrapError("job wait", err)
	}
	return wrapError("select 1", status.Err())
}

// ListDatasets returns all datasets in the given project
func (s *BigQueryService) ListDatasets(ctx context.Context, projectID string) ([]models.DatasetRef, error) {
	var datasets []models.DatasetRef
	it := s.client.Datasets(ctx)
	it.ProjectID = projectID
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapError("list datasets", err)
		}
		datasets = append(datasets, models.DatasetRef{
			ProjectID: ds.ProjectID,
			ID:        ds.DatasetID,
		})
	}
	return datasets, nil
}

// ListTables returns tables in a dataset. Type and row count come from each
// table's metadata; a table whose metadata cannot be read is still listed,
// without type or row count.
func (s *BigQueryService) ListTables(ctx context.Context, projectID, datasetID string) ([]models.TableRef, error) {
	var handles []*bigquery.Table
	it := s.client.DatasetInProject(projectID, datasetID).Tables(ctx)
	for {
		tbl, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapError("list tables", err)
		}
		handles = append(handles, tbl)
	}

	tables := make([]models.TableRef, len(handles))
	var g errgroup.Group
	g.SetLimit(metadataFetchLimit)
	for i, tbl := range handles {
		g.Go(func() error {
			ref := models.TableRef{
				ProjectID: tbl.ProjectID,
				DatasetID: datasetID,
				ID:        tbl.TableID,
			}
			meta, err := tbl.Metadata(ctx)
			if err != nil {
				log.Warn().Err(err).Str("table", tbl.TableID).Msg("failed to get table metadata")
			} else {
				ref.Type = string(meta.Type)
				if meta.Type == bigquery.RegularTable {
					rows := meta.NumRows
					ref.NumRows = &rows
				}
			}
			tables[i] = ref
			return nil
		})
	}
	_ = g.Wait()
	// A deadline hit during the fan-out fails every lookup; report it
	// instead of a listing with no metadata.
	if err := ctx.Err(); err != nil {
		return nil, wrapError("list tables", err)
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].ID < tables[j].ID
	})
	return tables, nil
}

// GetTable returns metadata and schema for a specific table
func (s *BigQueryService) GetTable(ctx context.Context, projectID, datasetID, tableID string) (*models.TableDescriptor, error) {
	meta, err := s.client.DatasetInProject(projectID, datasetID).Table(tableID).Metadata(ctx)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("get table %s.%s.%s", projectID, datasetID, tableID), err)
	}

	desc := &models.TableDescriptor{
		ProjectID: projectID,
		DatasetID: datasetID,
		TableID:   tableID,
		Type:      string(meta.Type),
		Created:   meta.CreationTime,
		Modified:  meta.LastModifiedTime,
		Fields:    convertSchema(meta.Schema, ""),
	}
	if meta.Type == bigquery.RegularTable {
		rows, size := meta.NumRows, meta.NumBytes
		desc.NumRows = &rows
		desc.NumBytes = &size
	}
	return desc, nil
}

// convertSchema flattens nested RECORD fields into dotted names.
func convertSchema(schema bigquery.Schema, prefix string) []models.FieldDescriptor {
	var fields []models.FieldDescriptor
	for _, f := range schema {
		mode := models.ModeNullable
		switch {
		case f.Repeated:
			mode = models.ModeRepeated
		case f.Required:
			mode = models.ModeRequired
		}
		fields = append(fields, models.FieldDescriptor{
			Name:        prefix + f.Name,
			Type:        string(f.Type),
			Mode:        mode,
			Description: f.Description,
		})
		if len(f.Schema) > 0 {
			fields = append(fields, convertSchema(f.Schema, prefix+f.Name+".")...)
		}
	}
	return fields
}

// RunQuery submits sql with a bytes-billed ceiling, waits for the job and
// reads at most maxResults rows.
func (s *BigQueryService) RunQuery(ctx context.Context, sql string, maxBytesBilled int64, maxResults int) (*models.QueryResult, error) {
	q := s.client.Query(sql)
	q.MaxBytesBilled = maxBytesBilled
	q.Location = s.location

	job, err := q.Run(ctx)
	if err != nil {
		return nil, wrapError("query run", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, wrapError("job wait", err)
	}
	if err := status.Err(); err != nil {
		return nil, wrapError("query failed", err)
	}

	result := &models.QueryResult{JobID: job.ID()}
	if stats := job.LastStatus().Statistics; stats != nil {
		result.BytesProcessed = stats.TotalBytesProcessed
		result.HasBytes = true
		result.StartTime = stats.StartTime
		result.EndTime = stats.EndTime
	}

	it, err := job.Read(ctx)
	if err != nil {
		return nil, wrapError("job read", err)
	}
	if maxResults > 0 {
		it.PageInfo().MaxSize = maxResults
	}

	fetched := false
	for maxResults <= 0 || len(result.Rows) < maxResults {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		fetched = true
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapError("read row", err)
		}
		m := make(map[string]interface{}, len(row))
		for k, v := range row {
			m[k] = v
		}
		result.Rows = append(result.Rows, m)
	}

	for _, f := range it.Schema {
		result.Columns = append(result.Columns, f.Name)
	}
	// The iterator only learns the total after its first page fetch.
	if fetched {
		result.TotalRows = it.TotalRows
		result.TotalRowsKnown = true
	}
	return result, nil
}
