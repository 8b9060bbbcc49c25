package search

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream/upstreamtest"
)

const searchResponse = `{
  "total": 50,
  "facets": {"country": [{"value": "US", "count": 10}, {"value": "DE", "count": 7}, {"value": "JP", "count": 3}]},
  "matches": [
    {
      "ip_str": "203.0.113.10",
      "org": "Example Hosting",
      "port": 80,
      "transport": "tcp",
      "product": "nginx",
      "timestamp": "2026-10-01T00:00:00.000000",
      "cpe": ["cpe:/a:f5:nginx"],
      "location": {"country_name": "United States", "latitude": 40.7, "longitude": -74.0},
      "http": {"server": "nginx", "title": "Welcome", "robots": "User-agent: *"},
      "hostnames": ["www.example.com"],
      "domains": ["example.com"]
    },
    {"ip_str": "203.0.113.11", "port": 22, "transport": "tcp"}
  ]
}`

type SearchTestSuite struct {
	suite.Suite
	backend *upstreamtest.Backend
	tool    *Tool
}

func (s *SearchTestSuite) SetupTest() {
	s.backend = upstreamtest.New(s.T())
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	s.tool = New(logger, s.backend.Client).(*Tool)
}

func (s *SearchTestSuite) call(input Input) (map[string]any, error) {
	result, _, err := s.tool.SearchHandler(context.Background(), nil, input)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	s.Require().NoError(json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &decoded))
	return decoded, nil
}

func (s *SearchTestSuite) TestReport() {
	s.backend.Mux.HandleFunc("/shodan/host/search", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("nginx", r.URL.Query().Get("query"))
		s.Equal("10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(searchResponse))
	})

	out, err := s.call(Input{Query: "nginx"})
	s.Require().NoError(err)

	summary := out["Search Summary"].(map[string]any)
	s.Equal("nginx", summary["Query"])
	s.Equal(float64(50), summary["Total Results"])
	s.Equal(float64(2), summary["Results Returned"])

	countries := out["Country Distribution"].([]any)
	s.Require().Len(countries, 3)
	s.Equal(map[string]any{"Country": "US", "Count": float64(10), "Percentage": "20.00%"}, countries[0])
	s.Equal("14.00%", countries[1].(map[string]any)["Percentage"])

	matches := out["Matches"].([]any)
	s.Require().Len(matches, 2)

	first := matches[0].(map[string]any)
	web := first["Web Information"].(map[string]any)
	s.Equal("nginx", web["Server"])
	s.Equal("Present", web["Robots.txt"])
	s.Equal("Not found", web["Sitemap"])
	location := first["Location"].(map[string]any)
	s.Equal("Unknown", location["City"])
	s.Equal("40.7, -74", location["Coordinates"])

	second := matches[1].(map[string]any)
	s.Equal("No HTTP information", second["Web Information"])
	details := second["Service Details"].(map[string]any)
	s.Equal("Unknown", details["Product"])
	s.Equal([]any{}, details["CPE"])
}

func (s *SearchTestSuite) TestCountryPercentagesBounded() {
	s.backend.JSON("/shodan/host/search", http.StatusOK, searchResponse)

	out, err := s.call(Input{Query: "nginx"})
	s.Require().NoError(err)

	sum := 0.0
	for _, entry := range out["Country Distribution"].([]any) {
		pct := strings.TrimSuffix(entry.(map[string]any)["Percentage"].(string), "%")
		value, err := strconv.ParseFloat(pct, 64)
		s.Require().NoError(err)
		sum += value
	}
	s.LessOrEqual(sum, 100.0)
}

func (s *SearchTestSuite) TestMaxResultsCapsMatches() {
	s.backend.Mux.HandleFunc("/shodan/host/search", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(searchResponse))
	})

	out, err := s.call(Input{Query: "nginx", MaxResults: 1})
	s.Require().NoError(err)

	s.Len(out["Matches"].([]any), 1)
	s.Equal(float64(1), out["Search Summary"].(map[string]any)["Results Returned"])
}

func (s *SearchTestSuite) TestNoFacets() {
	s.backend.JSON("/shodan/host/search", http.StatusOK, `{"total":0,"matches":[]}`)

	out, err := s.call(Input{Query: "nothing-matches"})
	s.Require().NoError(err)

	s.Equal([]any{}, out["Country Distribution"])
	s.Equal([]any{}, out["Matches"])
}

func (s *SearchTestSuite) TestValidation() {
	_, err := s.call(Input{Query: "  "})
	s.Require().Error(err)
	s.Contains(err.Error(), "validation error")

	_, err = s.call(Input{Query: "nginx", MaxResults: -1})
	s.Require().Error(err)
	s.Zero(s.backend.Requests())
}

func (s *SearchTestSuite) TestUpstreamError() {
	s.backend.JSON("/shodan/host/search", http.StatusForbidden, `{"error":"Access denied (403 Forbidden)"}`)

	_, err := s.call(Input{Query: "nginx"})
	s.Require().Error(err)
	s.Equal("Shodan API error: Access denied (403 Forbidden)", err.Error())
}

func TestSearchTestSuite(t *testing.T) {
	suite.Run(t, new(SearchTestSuite))
}
