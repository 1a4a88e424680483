// Package mcpserver exposes the tool table and the greeting resource over the
// Model Context Protocol.
package mcpserver

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bqmcp/bqmcp/internal/observability"
	"github.com/bqmcp/bqmcp/internal/tools"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

const (
	serverName     = "bqmcp"
	greetingPrefix = "greeting://"
)

// Server wraps an mcp-go server populated from a tools.Dispatcher.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
}

func New(d *tools.Dispatcher, version string) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
		dispatcher: d,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	for _, t := range s.dispatcher.Tools() {
		s.mcp.AddTool(toMCPTool(t), s.handlerFor(t.Name))
	}
}

func toMCPTool(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case tools.TypeInteger:
			if n, ok := p.Default.(int); ok {
				props = append(props, mcp.DefaultNumber(float64(n)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(t.Name, opts...)
}

func (s *Server) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if observability.RequestIDFromContext(ctx) == "" {
			ctx = observability.ContextWithRequestID(ctx, uuid.NewString())
		}
		out, err := s.dispatcher.Call(ctx, name, tools.Args(req.GetArguments()))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(out), nil
	}
}

func (s *Server) registerResources() {
	tmpl := mcp.NewResourceTemplate(
		tools.GreetingURITemplate,
		"greeting",
		mcp.WithTemplateDescription("Get a personalized greeting"),
		mcp.WithTemplateMIMEType("text/plain"),
	)
	s.mcp.AddResourceTemplate(tmpl, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name := greetingName(req.Params.URI)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     tools.Greeting(name),
			},
		}, nil
	})
}

// greetingName decodes the {name} segment; malformed escapes are kept as sent.
func greetingName(uri string) string {
	raw := strings.TrimPrefix(uri, greetingPrefix)
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// ServeStdio blocks until ctx is cancelled or stdin is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	log.Info().Str("transport", "stdio").Int("tools", len(s.dispatcher.Tools())).Msg("MCP server listening")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// StreamableHTTP returns the handler mounted at /mcp on the HTTP router.
func (s *Server) StreamableHTTP() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// SSE returns a standalone SSE transport rooted at baseURL.
func (s *Server) SSE(baseURL string) *server.SSEServer {
	return server.NewSSEServer(s.mcp, server.WithBaseURL(baseURL))
}
