package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bqmcp/bqmcp/internal/config"
	"github.com/bqmcp/bqmcp/internal/mcpserver"
	"github.com/bqmcp/bqmcp/internal/security"
	"github.com/bqmcp/bqmcp/internal/service"
	"github.com/bqmcp/bqmcp/internal/tools"
	mcpgo "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg   *config.Config
	http  *http.Server
	mcp   *mcpserver.Server
	sse   *mcpgo.SSEServer
	bqSvc *service.BigQueryService
	audit *security.PostgresAuditSink
}

// New connects to BigQuery (and the audit database when configured) and
// assembles the selected transport.
func New(ctx context.Context, cfg *config.Config, version string) (*Server, error) {
	s := &Server{cfg: cfg}

	bqSvc, err := service.NewBigQueryService(ctx, service.Options{
		ProjectID:       cfg.GCPProjectID,
		CredentialsFile: cfg.GoogleApplicationCredentials,
		Location:        cfg.BigQueryLocation,
		Endpoint:        cfg.BigQueryEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("bigquery: %w", err)
	}
	s.bqSvc = bqSvc

	var sink security.AuditSink
	if cfg.EnableAuditLogging && cfg.AuditDSN != "" {
		pg, err := security.NewPostgresAuditSink(ctx, cfg.AuditDSN)
		if err != nil {
			_ = bqSvc.Close()
			return nil, fmt.Errorf("audit sink: %w", err)
		}
		s.audit = pg
		sink = pg
	}

	costTracker := security.NewCostTracker(cfg.MaxBytesBilled)
	dispatcher := tools.NewDispatcher(bqSvc, tools.Options{
		CostTracker:       costTracker,
		MaxResultsCeiling: cfg.MaxResultsCeiling,
		ReadOnly:          cfg.ReadOnly,
		MaskResults:       cfg.EnableDataMasking,
		MaskColumns:       cfg.SensitiveColumns,
		Audit:             security.NewAuditLogger(cfg.EnableAuditLogging, sink),
		Timeout:           cfg.ToolTimeout,
	})
	s.mcp = mcpserver.New(dispatcher, version)

	log.Info().
		Str("project", bqSvc.CurrentProject()).
		Str("transport", cfg.Transport).
		Str("max_bytes_billed", costTracker.Ceiling()).
		Bool("emulator", cfg.BigQueryEndpoint != "").
		Bool("read_only", cfg.ReadOnly).
		Bool("data_masking", cfg.EnableDataMasking).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("audit_store", s.audit != nil).
		Msg("service configuration")

	if cfg.Transport == config.TransportStdio {
		return s, nil
	}

	rt := Routes{
		Version:    version,
		Dispatcher: dispatcher,
		MCP:        s.mcp,
		Health:     bqSvc,
	}
	if cfg.Transport == config.TransportSSE {
		s.sse = s.mcp.SSE(fmt.Sprintf("http://%s", cfg.Addr()))
		rt.SSE = s.sse
	}

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(cfg, rt),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ToolTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if cfg.Transport == config.TransportSSE {
		// SSE streams stay open for the session's lifetime.
		s.http.WriteTimeout = 0
	}
	return s, nil
}

// Run serves until ctx is cancelled, then releases every client.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	defer s.close()

	if s.http == nil {
		err := s.mcp.ServeStdio(ctx, stdin, stdout)
		if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Str("transport", s.cfg.Transport).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.sse != nil {
			if err := s.sse.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("error closing SSE sessions")
			}
		}
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) close() {
	if s.audit != nil {
		s.audit.Close()
	}
	if err := s.bqSvc.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing BigQuery client")
	} else {
		log.Info().Msg("BigQuery client closed")
	}
}
