// Package server exposes lambda lookups as MCP tools.
package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/locate"
)

// Server wraps an MCP server whose tools delegate to a locate engine.
type Server struct {
	engine    locate.LocateEngine
	logger    *zap.Logger
	mcpServer *mcpserver.MCPServer
}

// New creates the MCP server and registers its tools.
func New(name, version string, engine locate.LocateEngine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: mcpserver.NewMCPServer(
			name,
			version,
			mcpserver.WithToolCapabilities(false),
		),
	}
	s.mcpServer.AddTools(s.locateTool(), s.listTool())
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until EOF.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

func (s *Server) locateTool() mcpserver.ServerTool {
	tool := mcp.NewTool("locate_lambda",
		mcp.WithDescription("Find the function literal that starts exactly at a position of a Go file and return its closure name, signature and owning type"),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the Go source file"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line"),
		),
		mcp.WithNumber("column",
			mcp.Required(),
			mcp.Description("1-based byte column of the func keyword"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleLocate}
}

func (s *Server) listTool() mcpserver.ServerTool {
	tool := mcp.NewTool("list_lambdas",
		mcp.WithDescription("List every function literal of a Go file with the positions where an inline breakpoint can be set"),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the Go source file"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleList}
}

func (s *Server) handleLocate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError("line is required"), nil
	}
	column, err := req.RequireInt("column")
	if err != nil {
		return mcp.NewToolResultError("column is required"), nil
	}

	loc, err := s.engine.Locate(ctx, file, line, column)
	if err != nil {
		s.logger.Debug("locate_lambda failed", zap.String("file", file), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("failed to locate lambda", err), nil
	}
	return jsonResult(loc)
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}

	locs, err := s.engine.Locations(ctx, file)
	if err != nil {
		s.logger.Debug("list_lambdas failed", zap.String("file", file), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("failed to list lambdas", err), nil
	}
	return jsonResult(locs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
