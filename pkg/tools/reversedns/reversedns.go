package reversedns

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
	toolName          = "reverse_dns_lookup"
	noHostnamesMarker = "No hostnames found"
)

type Input struct {
	IPs []string `json:"ips" jsonschema:"List of IP addresses to perform reverse DNS lookup on." validate:"required,min=1,dive,ip"`
}

type Report struct {
	Resolutions []Resolution `json:"Reverse DNS Resolutions"`
	Summary     Summary      `json:"Summary"`
}

type Resolution struct {
	IPAddress string   `json:"IP Address"`
	Hostnames []string `json:"Hostnames"`
}

type Summary struct {
	TotalIPsQueried int      `json:"Total IPs Queried"`
	IPsWithResults  int      `json:"IPs with Results"`
	QueriedIPs      []string `json:"Queried IP Addresses"`
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
		Description: "Perform reverse DNS lookups to find hostnames associated with IP addresses. Supports batch " +
			"lookups and clearly marks IP addresses without known hostnames.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.ReverseDNSHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) ReverseDNSHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	for i, ip := range input.IPs {
		input.IPs[i] = strings.TrimSpace(ip)
	}
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	reversed, err := t.client.Reverse(ctx, input.IPs)
	if err != nil {
		return nil, nil, err
	}

	resolutions := make([]Resolution, 0, len(reversed))
	for _, ip := range report.OrderedKeys(input.IPs, reversed) {
		resolutions = append(resolutions, Resolution{
			IPAddress: ip,
			Hostnames: report.ListOr(reversed[ip], noHostnamesMarker),
		})
	}

	result, err := tools.TextResult(Report{
		Resolutions: resolutions,
		Summary: Summary{
			TotalIPsQueried: len(input.IPs),
			IPsWithResults:  len(reversed),
			QueriedIPs:      input.IPs,
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
