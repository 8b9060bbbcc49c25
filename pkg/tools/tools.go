package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tb0hdan/shodan-mcp/pkg/server"
)

type Tool interface {
	Name() string
	Register(srv *server.Server) error
}

// LookupAnnotations marks a tool as a read-only query against an external service.
func LookupAnnotations() *mcp.ToolAnnotations {
	openWorld := true
	return &mcp.ToolAnnotations{
		ReadOnlyHint:  true,
		OpenWorldHint: &openWorld,
	}
}
