package cpelookup

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
	"github.com/tb0hdan/shodan-mcp/pkg/types"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream"
)

const toolName = "cpe_lookup"

type Input struct {
	Product string `json:"product" jsonschema:"The name of the product to search for CPEs." validate:"required"`
	Count   bool   `json:"count,omitempty" jsonschema:"If true returns only the count of matching CPEs."`
	Skip    int    `json:"skip,omitempty" jsonschema:"Number of CPEs to skip (for pagination)." validate:"min=0"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of CPEs to return (max 1000). Defaults to 1000." validate:"min=0"`
}

type CountReport struct {
	TotalCPEs int `json:"total_cpes"`
}

type ListReport struct {
	CPEs          []string `json:"cpes"`
	Skip          int      `json:"skip"`
	Limit         int      `json:"limit"`
	TotalReturned int      `json:"total_returned"`
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
		Description: "Search for Common Platform Enumeration (CPE) entries by product name in Shodan's CVEDB. " +
			"Supports pagination and can return either the CPE list or just the total count.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.CPELookupHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) CPELookupHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	input.Product = strings.TrimSpace(input.Product)
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	limit := types.DefaultPageLimit
	if input.Limit > 0 {
		limit = input.Limit
	}

	list, err := t.client.CPEs(ctx, upstream.CPEQuery{
		Product: input.Product,
		Count:   input.Count,
		Skip:    input.Skip,
		Limit:   limit,
	})
	if err != nil {
		return nil, nil, err
	}

	var out any
	if input.Count {
		total := 0
		if list.Total != nil {
			total = *list.Total
		}
		out = CountReport{TotalCPEs: total}
	} else {
		out = ListReport{
			CPEs:          report.List(list.CPEs),
			Skip:          input.Skip,
			Limit:         limit,
			TotalReturned: len(list.CPEs),
		}
	}

	result, err := tools.TextResult(out)
	return result, nil, err
}

func New(logger zerolog.Logger, client *upstream.Client) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: validator.New(),
		client:    client,
	}
}
