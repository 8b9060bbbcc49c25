package dns

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/shodan-mcp/pkg/report"
	"github.com/tb0hdan/shodan-mcp/pkg/server"
	"github.com/tb0hdan/shodan-mcp/pkg/tools"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream"
)

const (
	toolName   = "dns_lookup"
	noIPMarker = "No IP found"
)

type Input struct {
	Hostnames []string `json:"hostnames" jsonschema:"List of hostnames to resolve." validate:"required,min=1,dive,required"`
}

type Report struct {
	Resolutions []Resolution `json:"DNS Resolutions"`
	Summary     Summary      `json:"Summary"`
}

type Resolution struct {
	Hostname  string `json:"Hostname"`
	IPAddress string `json:"IP Address"`
}

type Summary struct {
	TotalLookups     int      `json:"Total Lookups"`
	QueriedHostnames []string `json:"Queried Hostnames"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	client    *upstream.Client
}

func (t *Tool) Name() string {
	return toolName
}

func (t *Tool) Register(srv *server.Server) error {
	tool := &mcp.Tool{
		Name: toolName,
		Description: "Resolve domain names to IP addresses using Shodan's DNS service. Supports batch resolution " +
			"of multiple hostnames in a single query.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.DNSLookupHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) DNSLookupHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	for i, hostname := range input.Hostnames {
		input.Hostnames[i] = strings.TrimSpace(hostname)
	}
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	resolved, err := t.client.Resolve(ctx, input.Hostnames)
	if err != nil {
		return nil, nil, err
	}

	resolutions := make([]Resolution, 0, len(resolved))
	for _, hostname := range report.OrderedKeys(input.Hostnames, resolved) {
		resolutions = append(resolutions, Resolution{
			Hostname:  hostname,
			IPAddress: report.OrDefault(resolved[hostname], noIPMarker),
		})
	}

	result, err := tools.TextResult(Report{
		Resolutions: resolutions,
		Summary: Summary{
			TotalLookups:     len(resolved),
			QueriedHostnames: input.Hostnames,
		},
	})
	return result, nil, err
}

func New(logger zerolog.Logger, client *upstream.Client) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: validator.New(),
		client:    client,
	}
}
