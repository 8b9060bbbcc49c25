package iplookup

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

const toolName = "ip_lookup"

type Input struct {
	IP string `json:"ip" jsonschema:"The IP address to query." validate:"required,ip"`
}

type Report struct {
	IPInformation IPInformation `json:"IP Information"`
	Location      Location      `json:"Location"`
	Services      []Service     `json:"Services"`
	CloudProvider any           `json:"Cloud Provider"`
	Hostnames     []string      `json:"Hostnames"`
	Domains       []string      `json:"Domains"`
	Tags          []string      `json:"Tags"`
}

type IPInformation struct {
	IPAddress    string `json:"IP Address"`
	Organization string `json:"Organization"`
	ISP          string `json:"ISP"`
	ASN          string `json:"ASN"`
	LastUpdate   string `json:"Last Update"`
}

type Location struct {
	Country     string `json:"Country"`
	City        string `json:"City"`
	Coordinates string `json:"Coordinates"`
	Region      string `json:"Region"`
}

type Service struct {
	Port     int    `json:"Port"`
	Protocol string `json:"Protocol"`
	Service  string `json:"Service"`
	HTTP     *HTTP  `json:"HTTP,omitempty"`
}

type HTTP struct {
	Server string `json:"Server"`
	Title  string `json:"Title"`
}

type CloudProvider struct {
	Provider string `json:"Provider"`
	Service  string `json:"Service"`
	Region   string `json:"Region"`
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
		Description: "Retrieve comprehensive information about an IP address, including geolocation, open ports, " +
			"running services, hostnames and cloud provider details if available. Returns service banners and " +
			"HTTP server information when present.",
		Annotations: tools.LookupAnnotations(),
	}

	wrappedHandler := tools.WrapToolHandler(srv.Storage(), t.logger, toolName, t.IPLookupHandler)

	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) IPLookupHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	input.IP = strings.TrimSpace(input.IP)
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	host, err := t.client.Host(ctx, input.IP)
	if err != nil {
		return nil, nil, err
	}

	result, err := tools.TextResult(buildReport(host))
	return result, nil, err
}

func buildReport(host *upstream.Host) Report {
	services := make([]Service, 0, len(host.Ports))
	for _, port := range host.Ports {
		services = append(services, describePort(port, findService(host.Data, port)))
	}

	var cloud any = "Not detected"
	if len(host.Data) > 0 && host.Data[0].Cloud != nil {
		c := host.Data[0].Cloud
		cloud = CloudProvider{
			Provider: report.OrDefault(c.Provider, report.Unknown),
			Service:  report.OrDefault(c.Service, report.Unknown),
			Region:   report.OrDefault(c.Region, report.Unknown),
		}
	}

	return Report{
		IPInformation: IPInformation{
			IPAddress:    host.IPStr,
			Organization: report.OrDefault(host.Org, report.Unknown),
			ISP:          report.OrDefault(host.ISP, report.Unknown),
			ASN:          report.OrDefault(host.ASN, report.Unknown),
			LastUpdate:   report.OrDefault(host.LastUpdate, report.Unknown),
		},
		Location: Location{
			Country:     report.OrDefault(host.CountryName, report.Unknown),
			City:        report.OrDefault(host.City, report.Unknown),
			Coordinates: report.Coordinates(host.Latitude, host.Longitude),
			Region:      report.OrDefault(host.RegionCode, report.Unknown),
		},
		Services:      services,
		CloudProvider: cloud,
		Hostnames:     report.List(host.Hostnames),
		Domains:       report.List(host.Domains),
		Tags:          report.List(host.Tags),
	}
}

// findService returns the first banner record for port, or nil.
func findService(data []upstream.Service, port int) *upstream.Service {
	for i := range data {
		if data[i].Port == port {
			return &data[i]
		}
	}
	return nil
}

func describePort(port int, svc *upstream.Service) Service {
	out := Service{Port: port, Protocol: "unknown", Service: "No banner"}
	if svc == nil {
		return out
	}
	out.Protocol = report.OrDefault(svc.Transport, "unknown")
	if svc.Data != nil {
		if banner := strings.TrimSpace(*svc.Data); banner != "" {
			out.Service = banner
		}
	}
	if svc.HTTP != nil {
		out.HTTP = &HTTP{
			Server: report.OrDefault(svc.HTTP.Server, report.Unknown),
			Title:  report.OrDefault(svc.HTTP.Title, report.Unknown),
		}
	}
	return out
}

func New(logger zerolog.Logger, client *upstream.Client) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: validator.New(),
		client:    client,
	}
}
