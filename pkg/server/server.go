package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tb0hdan/shodan-mcp/pkg/storage"
)

const Instructions = `This MCP server provides access to Shodan's network intelligence and vulnerability services:

- Network Reconnaissance: query an IP address for open ports, services, banners and cloud provider details
- DNS Operations: forward and reverse DNS lookups for batches of hostnames and IP addresses
- Vulnerability Intelligence: CVEDB lookups for single CVEs, CPE identifiers and CVEs affecting a product
- Device Discovery: search Shodan's database of internet-connected devices with country statistics

Every tool returns a structured JSON report.`

// Server is the MCP server plus the optional lookup audit store. Storage is
// nil when auditing is disabled.
type Server struct {
	mcp.Server
	storage storage.Storage
}

func NewServer(impl *mcp.Implementation, store storage.Storage) *Server {
	return &Server{
		Server: *mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: Instructions,
		}),
		storage: store,
	}
}

func (s *Server) Storage() storage.Storage {
	return s.storage
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
