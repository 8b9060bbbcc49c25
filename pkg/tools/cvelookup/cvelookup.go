package cvelookup

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

const toolName = "cve_lookup"

type Input struct {
	CVEID string `json:"cve_id" jsonschema:"The CVE identifier to query (format: CVE-YYYY-NNNNN)." validate:"required"`
}

// Report extends the shared vulnerability entry with the affected products.
type Report struct {
	report.Vulnerability
	AffectedProducts []string `json:"Affected Products"`
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
		Description: "Query detailed vulnerability information from Shodan's CVEDB for a single CVE. Returns the " +
			"summary, CVSS v2/v3 scores with severity, EPSS score and ranking, KEV status, proposed action, " +
			"ransomware campaign information, references and affected CPEs.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.CVELookupHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) CVELookupHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	input.CVEID = strings.ToUpper(strings.TrimSpace(input.CVEID))
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	cve, err := t.client.CVE(ctx, input.CVEID)
	if err != nil {
		return nil, nil, err
	}

	result, err := tools.TextResult(Report{
		Vulnerability:    report.NewVulnerability(*cve),
		AffectedProducts: report.ListOr(cve.CPEs, "No affected products listed"),
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
