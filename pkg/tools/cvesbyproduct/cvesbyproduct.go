package cvesbyproduct

import (
	"context"
	"errors"
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

const toolName = "cves_by_product"

var (
	ErrBothIdentifiers = errors.New("Cannot specify both cpe23 and product. Use only one.")
	ErrNoIdentifier    = errors.New("Must specify either cpe23 or product.")
)

type Input struct {
	CPE23      string `json:"cpe23,omitempty" jsonschema:"The CPE version 2.3 identifier (format: cpe:2.3:part:vendor:product:version)." validate:"omitempty,startswith=cpe:2.3:"`
	Product    string `json:"product,omitempty" jsonschema:"The name of the product to search for CVEs."`
	Count      bool   `json:"count,omitempty" jsonschema:"If true returns only the count of matching CVEs."`
	IsKEV      bool   `json:"is_kev,omitempty" jsonschema:"If true returns only CVEs with the KEV flag set."`
	SortByEPSS bool   `json:"sort_by_epss,omitempty" jsonschema:"If true sorts CVEs by EPSS score in descending order."`
	Skip       int    `json:"skip,omitempty" jsonschema:"Number of CVEs to skip (for pagination)." validate:"min=0"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of CVEs to return (max 1000). Defaults to 1000." validate:"min=0"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"Start date for filtering CVEs (format: YYYY-MM-DDTHH:MM:SS)."`
	EndDate    string `json:"end_date,omitempty" jsonschema:"End date for filtering CVEs (format: YYYY-MM-DDTHH:MM:SS)."`
}

type QueryInformation struct {
	Product    string `json:"Product"`
	CPE23      string `json:"CPE 2.3"`
	KEVOnly    string `json:"KEV Only"`
	SortByEPSS string `json:"Sort by EPSS"`
	DateRange  string `json:"Date Range,omitempty"`
}

type CountReport struct {
	QueryInformation QueryInformation `json:"Query Information"`
	Results          CountResults     `json:"Results"`
}

type CountResults struct {
	TotalCVEsFound *int `json:"Total CVEs Found,omitempty"`
}

type ListReport struct {
	QueryInformation QueryInformation       `json:"Query Information"`
	ResultsSummary   ResultsSummary         `json:"Results Summary"`
	Vulnerabilities  []report.Vulnerability `json:"Vulnerabilities"`
}

type ResultsSummary struct {
	TotalCVEsFound *int   `json:"Total CVEs Found,omitempty"`
	CVEsReturned   int    `json:"CVEs Returned"`
	Page           string `json:"Page"`
	CVEsPerPage    int    `json:"CVEs per Page"`
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
		Description: "Search for vulnerabilities affecting specific products or CPEs. Supports filtering by KEV " +
			"status, sorting by EPSS score, date ranges and pagination. Search by product name or CPE 2.3 " +
			"identifier, not both.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.CVEsByProductHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) CVEsByProductHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	input.CPE23 = strings.TrimSpace(input.CPE23)
	input.Product = strings.TrimSpace(input.Product)

	switch {
	case input.CPE23 != "" && input.Product != "":
		return nil, nil, ErrBothIdentifiers
	case input.CPE23 == "" && input.Product == "":
		return nil, nil, ErrNoIdentifier
	}
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	limit := types.DefaultPageLimit
	if input.Limit > 0 {
		limit = input.Limit
	}

	list, err := t.client.CVEs(ctx, upstream.CVEQuery{
		CPE23:      input.CPE23,
		Product:    input.Product,
		Count:      input.Count,
		IsKEV:      input.IsKEV,
		SortByEPSS: input.SortByEPSS,
		Skip:       input.Skip,
		Limit:      limit,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	})
	if err != nil {
		return nil, nil, err
	}

	query := QueryInformation{
		Product:    orNA(input.Product),
		CPE23:      orNA(input.CPE23),
		KEVOnly:    report.YesNo(input.IsKEV),
		SortByEPSS: report.YesNo(input.SortByEPSS),
	}

	var out any
	if input.Count {
		out = CountReport{
			QueryInformation: query,
			Results:          CountResults{TotalCVEsFound: list.Total},
		}
	} else {
		query.DateRange = dateRange(input.StartDate, input.EndDate)

		vulnerabilities := make([]report.Vulnerability, 0, len(list.CVEs))
		for _, cve := range list.CVEs {
			vulnerabilities = append(vulnerabilities, report.NewVulnerability(cve))
		}

		out = ListReport{
			QueryInformation: query,
			ResultsSummary: ResultsSummary{
				TotalCVEsFound: list.Total,
				CVEsReturned:   len(list.CVEs),
				Page:           fmt.Sprint(input.Skip/limit + 1),
				CVEsPerPage:    limit,
			},
			Vulnerabilities: vulnerabilities,
		}
	}

	result, err := tools.TextResult(out)
	return result, nil, err
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func dateRange(start, end string) string {
	if start == "" {
		return "All dates"
	}
	if end == "" {
		end = "now"
	}
	return start + " to " + end
}

func New(logger zerolog.Logger, client *upstream.Client) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: validator.New(),
		client:    client,
	}
}
