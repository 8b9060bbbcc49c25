package dns

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream/upstreamtest"
)

type DNSTestSuite struct {
	suite.Suite
	backend *upstreamtest.Backend
	tool    *Tool
}

func (s *DNSTestSuite) SetupTest() {
	s.backend = upstreamtest.New(s.T())
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	s.tool = New(logger, s.backend.Client).(*Tool)
}

func (s *DNSTestSuite) call(input Input) (Report, error) {
	result, _, err := s.tool.DNSLookupHandler(context.Background(), nil, input)
	if err != nil {
		return Report{}, err
	}
	var decoded Report
	s.Require().NoError(json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &decoded))
	return decoded, nil
}

func (s *DNSTestSuite) TestSingleHostname() {
	s.backend.Mux.HandleFunc("/dns/resolve", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("example.com", r.URL.Query().Get("hostnames"))
		s.Equal(upstreamtest.APIKey, r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"example.com":"93.184.216.34"}`))
	})

	out, err := s.call(Input{Hostnames: []string{"example.com"}})
	s.Require().NoError(err)

	s.Equal([]Resolution{{Hostname: "example.com", IPAddress: "93.184.216.34"}}, out.Resolutions)
	s.Equal(1, out.Summary.TotalLookups)
	s.Equal([]string{"example.com"}, out.Summary.QueriedHostnames)
}

func (s *DNSTestSuite) TestBatchKeepsQueryOrder() {
	s.backend.Mux.HandleFunc("/dns/resolve", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("b.example,a.example,gone.example", r.URL.Query().Get("hostnames"))
		_, _ = w.Write([]byte(`{"a.example":"192.0.2.1","gone.example":null,"b.example":"192.0.2.2"}`))
	})

	out, err := s.call(Input{Hostnames: []string{"b.example", "a.example", "gone.example"}})
	s.Require().NoError(err)

	s.Equal([]Resolution{
		{Hostname: "b.example", IPAddress: "192.0.2.2"},
		{Hostname: "a.example", IPAddress: "192.0.2.1"},
		{Hostname: "gone.example", IPAddress: "No IP found"},
	}, out.Resolutions)
	s.Equal(3, out.Summary.TotalLookups)
}

func (s *DNSTestSuite) TestValidation() {
	_, err := s.call(Input{})
	s.Require().Error(err)
	s.Contains(err.Error(), "validation error")

	_, err = s.call(Input{Hostnames: []string{"example.com", " "}})
	s.Require().Error(err)

	s.Zero(s.backend.Requests())
}

func (s *DNSTestSuite) TestUpstreamError() {
	s.backend.JSON("/dns/resolve", http.StatusUnauthorized, `{"error":"Invalid API key"}`)

	_, err := s.call(Input{Hostnames: []string{"example.com"}})
	s.Require().Error(err)
	s.Equal("Shodan API error: Invalid API key", err.Error())
}

func TestDNSTestSuite(t *testing.T) {
	suite.Run(t, new(DNSTestSuite))
}
