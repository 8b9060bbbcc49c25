package reversedns

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

type ReverseDNSTestSuite struct {
	suite.Suite
	backend *upstreamtest.Backend
	tool    *Tool
}

func (s *ReverseDNSTestSuite) SetupTest() {
	s.backend = upstreamtest.New(s.T())
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	s.tool = New(logger, s.backend.Client).(*Tool)
}

func (s *ReverseDNSTestSuite) call(input Input) (Report, error) {
	result, _, err := s.tool.ReverseDNSHandler(context.Background(), nil, input)
	if err != nil {
		return Report{}, err
	}
	var decoded Report
	s.Require().NoError(json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &decoded))
	return decoded, nil
}

func (s *ReverseDNSTestSuite) TestReport() {
	s.backend.Mux.HandleFunc("/dns/reverse", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("8.8.8.8,192.0.2.1", r.URL.Query().Get("ips"))
		_, _ = w.Write([]byte(`{"192.0.2.1":[],"8.8.8.8":["dns.google"]}`))
	})

	out, err := s.call(Input{IPs: []string{"8.8.8.8", "192.0.2.1"}})
	s.Require().NoError(err)

	s.Equal([]Resolution{
		{IPAddress: "8.8.8.8", Hostnames: []string{"dns.google"}},
		{IPAddress: "192.0.2.1", Hostnames: []string{"No hostnames found"}},
	}, out.Resolutions)
	s.Equal(Summary{
		TotalIPsQueried: 2,
		IPsWithResults:  2,
		QueriedIPs:      []string{"8.8.8.8", "192.0.2.1"},
	}, out.Summary)
}

func (s *ReverseDNSTestSuite) TestNullHostnamesUseMarker() {
	s.backend.JSON("/dns/reverse", http.StatusOK, `{"198.51.100.7":null}`)

	out, err := s.call(Input{IPs: []string{"198.51.100.7"}})
	s.Require().NoError(err)

	s.Require().Len(out.Resolutions, 1)
	s.Equal([]string{"No hostnames found"}, out.Resolutions[0].Hostnames)
}

func (s *ReverseDNSTestSuite) TestMarkerIsNotEmptyList() {
	s.backend.JSON("/dns/reverse", http.StatusOK, `{"198.51.100.7":[]}`)

	result, _, err := s.tool.ReverseDNSHandler(context.Background(), nil, Input{IPs: []string{"198.51.100.7"}})
	s.Require().NoError(err)

	text := result.Content[0].(*mcp.TextContent).Text
	s.Contains(text, `"No hostnames found"`)
	s.NotContains(text, `"Hostnames": []`)
}

func (s *ReverseDNSTestSuite) TestValidation() {
	_, err := s.call(Input{IPs: []string{}})
	s.Require().Error(err)

	_, err = s.call(Input{IPs: []string{"8.8.8.8", "dns.google"}})
	s.Require().Error(err)
	s.Contains(err.Error(), "validation error")

	s.Zero(s.backend.Requests())
}

func TestReverseDNSTestSuite(t *testing.T) {
	suite.Run(t, new(ReverseDNSTestSuite))
}
