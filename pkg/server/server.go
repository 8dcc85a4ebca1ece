// Package server provides the MCP server implementation for the geocoding service.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/NERVsystems/geocodemcp/pkg/geocode"
	"github.com/NERVsystems/geocodemcp/pkg/osm"
	"github.com/NERVsystems/geocodemcp/pkg/tools"
	"github.com/NERVsystems/geocodemcp/pkg/tools/prompts"
	"github.com/NERVsystems/geocodemcp/pkg/version"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "geocoding-server"
)

// Server encapsulates the MCP server with the geocoding tool. It owns the
// geocode adapter and with it the outbound connection pool.
type Server struct {
	srv       *server.MCPServer
	adapter   *geocode.Adapter
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a new geocoding MCP server with all tools registered.
func NewServer(opts osm.Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	logger.Info("initializing geocoding MCP server",
		"name", ServerName,
		"version", version.BuildVersion,
		"upstream", opts.BaseURL)

	adapter := geocode.NewAdapter(osm.NewClient(opts), logger)

	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	registry := tools.NewRegistry(logger, adapter)
	registry.RegisterTools(srv)
	prompts.RegisterGeocodingPrompts(srv)

	return &Server{srv: srv, adapter: adapter, logger: logger}, nil
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Serve speaks MCP over in/out until ctx is canceled or in is exhausted.
// A canceled context is a clean shutdown and returns nil.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.srv)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)) {
		return nil
	}
	return err
}

// Close releases the adapter's connection pool. It is safe to call more
// than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("shutting down geocoding MCP server")
		s.closeErr = s.adapter.Close()
	})
	return s.closeErr
}
