// Package mcp exposes the interpreter to AI agents over the Model
// Context Protocol: an agent can run utterances through the full
// pipeline or address the store directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/nbryan/concierge/internal/conversation"
	"github.com/nbryan/concierge/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes assistant tools.
type Server struct {
	manager *conversation.Manager
	store   store.Store
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(manager *conversation.Manager, s store.Store) *Server {
	srv := &Server{
		manager: manager,
		store:   s,
	}

	srv.mcp = server.NewMCPServer(
		"concierge",
		Version,
		server.WithToolCapabilities(false),
	)

	srv.registerTools()

	return srv
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(interpretTool, s.handleInterpret)
	s.mcp.AddTool(addItemTool, s.handleAddItem)
	s.mcp.AddTool(listItemsTool, s.handleListItems)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
