// ABOUTME: MCP server setup for the cortitrack wellness tracker.
// ABOUTME: Wraps the MCP server around a wellness.Service.
package mcp

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with service access.
type Server struct {
	mcpServer *mcp.Server
	svc       *wellness.Service
	logger    *log.Logger
}

// NewServer creates a new MCP server over svc.
func NewServer(svc *wellness.Service, logger *log.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("mcp: nil service")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cortitrack",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		logger:    logging.OrDiscard(logger),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
