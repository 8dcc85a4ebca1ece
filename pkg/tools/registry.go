// Package tools provides the geocoding MCP tool catalog and handlers.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registry holds all MCP tool registrations for the geocoding service.
type Registry struct {
	logger   *slog.Logger
	resolver Resolver
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(logger *slog.Logger, resolver Resolver) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:   logger,
		resolver: resolver,
	}
}

// ToolDefinition represents a geocoding MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns all geocoding MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        GetCoordinatesToolName,
			Description: getCoordinatesDescription,
			Tool:        GetCoordinatesTool(),
			Handler:     NewGetCoordinatesHandler(r.resolver, r.logger).Handle,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}
