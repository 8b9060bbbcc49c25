package search

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

const toolName = "shodan_search"

type Input struct {
	Query      string `json:"query" jsonschema:"Search query for Shodan." validate:"required"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum results to return. Defaults to 10." validate:"min=0"`
}

type Report struct {
	SearchSummary       Summary        `json:"Search Summary"`
	CountryDistribution []CountryShare `json:"Country Distribution"`
	Matches             []Match        `json:"Matches"`
}

type Summary struct {
	Query           string `json:"Query"`
	TotalResults    int    `json:"Total Results"`
	ResultsReturned int    `json:"Results Returned"`
}

type CountryShare struct {
	Country    string `json:"Country"`
	Count      int    `json:"Count"`
	Percentage string `json:"Percentage"`
}

type Match struct {
	BasicInformation BasicInformation `json:"Basic Information"`
	Location         Location         `json:"Location"`
	ServiceDetails   ServiceDetails   `json:"Service Details"`
	WebInformation   any              `json:"Web Information"`
	Hostnames        []string         `json:"Hostnames"`
	Domains          []string         `json:"Domains"`
}

type BasicInformation struct {
	IPAddress    string `json:"IP Address"`
	Organization string `json:"Organization"`
	ISP          string `json:"ISP"`
	ASN          string `json:"ASN"`
	LastUpdate   string `json:"Last Update"`
}

type Location struct {
	Country     string `json:"Country"`
	City        string `json:"City"`
	Region      string `json:"Region"`
	Coordinates string `json:"Coordinates"`
}

type ServiceDetails struct {
	Port      int      `json:"Port"`
	Transport string   `json:"Transport"`
	Product   string   `json:"Product"`
	Version   string   `json:"Version"`
	CPE       []string `json:"CPE"`
}

type WebInformation struct {
	Server    string `json:"Server"`
	Title     string `json:"Title"`
	RobotsTxt string `json:"Robots.txt"`
	Sitemap   string `json:"Sitemap"`
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
		Description: "Search Shodan's database of internet-connected devices. Returns matching devices with their " +
			"services and locations, plus the country distribution of all results. Supports Shodan search filters.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.SearchHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) SearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	input.Query = strings.TrimSpace(input.Query)
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	maxResults := types.DefaultSearchResults
	if input.MaxResults > 0 {
		maxResults = input.MaxResults
	}

	result, err := t.client.Search(ctx, input.Query, maxResults)
	if err != nil {
		return nil, nil, err
	}

	// Shodan may return a full page regardless of limit.
	matches := result.Matches
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	out, err := tools.TextResult(buildReport(input.Query, result.Total, result.Facets.Country, matches))
	return out, nil, err
}

func buildReport(query string, total int, countries []upstream.FacetValue, matches []upstream.Service) Report {
	distribution := make([]CountryShare, 0, len(countries))
	for _, country := range countries {
		distribution = append(distribution, CountryShare{
			Country:    country.Value,
			Count:      country.Count,
			Percentage: report.Share(country.Count, total),
		})
	}

	described := make([]Match, 0, len(matches))
	for _, match := range matches {
		described = append(described, describeMatch(match))
	}

	return Report{
		SearchSummary: Summary{
			Query:           query,
			TotalResults:    total,
			ResultsReturned: len(matches),
		},
		CountryDistribution: distribution,
		Matches:             described,
	}
}

func describeMatch(match upstream.Service) Match {
	location := upstream.Location{}
	if match.Location != nil {
		location = *match.Location
	}

	var web any = "No HTTP information"
	if match.HTTP != nil {
		web = WebInformation{
			Server:    report.OrDefault(match.HTTP.Server, report.Unknown),
			Title:     report.OrDefault(match.HTTP.Title, report.Unknown),
			RobotsTxt: presence(match.HTTP.Robots),
			Sitemap:   presence(match.HTTP.Sitemap),
		}
	}

	return Match{
		BasicInformation: BasicInformation{
			IPAddress:    match.IPStr,
			Organization: report.OrDefault(match.Org, report.Unknown),
			ISP:          report.OrDefault(match.ISP, report.Unknown),
			ASN:          report.OrDefault(match.ASN, report.Unknown),
			LastUpdate:   report.OrDefault(match.Timestamp, report.Unknown),
		},
		Location: Location{
			Country:     report.OrDefault(location.CountryName, report.Unknown),
			City:        report.OrDefault(location.City, report.Unknown),
			Region:      report.OrDefault(location.RegionCode, report.Unknown),
			Coordinates: report.Coordinates(location.Latitude, location.Longitude),
		},
		ServiceDetails: ServiceDetails{
			Port:      match.Port,
			Transport: report.OrDefault(match.Transport, report.Unknown),
			Product:   report.OrDefault(match.Product, report.Unknown),
			Version:   report.OrDefault(match.Version, report.Unknown),
			CPE:       report.List(match.CPE),
		},
		WebInformation: web,
		Hostnames:      report.List(match.Hostnames),
		Domains:        report.List(match.Domains),
	}
}

func presence(v *string) string {
	if v == nil || *v == "" {
		return "Not found"
	}
	return "Present"
}

func New(logger zerolog.Logger, client *upstream.Client) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: validator.New(),
		client:    client,
	}
}
