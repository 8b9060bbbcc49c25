package cvelookup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream/upstreamtest"
)

const cveResponse = `{
  "cve_id": "CVE-2021-44228",
  "summary": "Apache Log4j2 JNDI features do not protect against attacker controlled LDAP endpoints.",
  "cvss_v3": 10.0,
  "cvss_v2": 9.3,
  "epss": 0.9445,
  "ranking_epss": 0.9999,
  "kev": true,
  "propose_action": "Apply updates per vendor instructions.",
  "ransomware_campaign": "Known",
  "references": ["https://logging.apache.org/log4j/2.x/security.html"],
  "published_time": "2021-12-10T10:15:09",
  "cpes": ["cpe:2.3:a:apache:log4j:2.0:*:*:*:*:*:*:*"]
}`

type CVELookupTestSuite struct {
	suite.Suite
	backend *upstreamtest.Backend
	tool    *Tool
}

func (s *CVELookupTestSuite) SetupTest() {
	s.backend = upstreamtest.New(s.T())
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	s.tool = New(logger, s.backend.Client).(*Tool)
}

func (s *CVELookupTestSuite) call(input Input) (map[string]any, error) {
	result, _, err := s.tool.CVELookupHandler(context.Background(), nil, input)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	s.Require().NoError(json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &decoded))
	return decoded, nil
}

func (s *CVELookupTestSuite) TestReport() {
	s.backend.Mux.HandleFunc("/cve/CVE-2021-44228", func(w http.ResponseWriter, r *http.Request) {
		s.Empty(r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(cveResponse))
	})

	out, err := s.call(Input{CVEID: " cve-2021-44228 "})
	s.Require().NoError(err)

	basic := out["Basic Information"].(map[string]any)
	s.Equal("CVE-2021-44228", basic["CVE ID"])
	s.Equal("12/10/2021, 10:15:09 AM", basic["Published"])

	scores := out["Severity Scores"].(map[string]any)
	s.Equal(map[string]any{"Score": 10.0, "Severity": "Critical"}, scores["CVSS v3"])
	s.Equal(map[string]any{"Score": 9.3, "Severity": "Critical"}, scores["CVSS v2"])
	s.Equal(map[string]any{"Score": "94.45%", "Ranking": "Top 99.99%"}, scores["EPSS"])

	impact := out["Impact Assessment"].(map[string]any)
	s.Equal("Yes", impact["Known Exploited Vulnerability"])
	s.Equal("Known", impact["Ransomware Campaign"])

	s.Equal([]any{"cpe:2.3:a:apache:log4j:2.0:*:*:*:*:*:*:*"}, out["Affected Products"])
}

func (s *CVELookupTestSuite) TestReport_SparseRecord() {
	s.backend.JSON("/cve/CVE-2000-0001", http.StatusOK, `{"cve_id":"CVE-2000-0001","cvss_v2":5.0}`)

	out, err := s.call(Input{CVEID: "CVE-2000-0001"})
	s.Require().NoError(err)

	scores := out["Severity Scores"].(map[string]any)
	s.Equal("Not available", scores["CVSS v3"])
	s.Equal(map[string]any{"Score": 5.0, "Severity": "Medium"}, scores["CVSS v2"])
	s.Equal("Not available", scores["EPSS"])
	s.Equal([]any{"No references provided"}, out["References"])
	s.Equal([]any{"No affected products listed"}, out["Affected Products"])
}

func (s *CVELookupTestSuite) TestNotFound() {
	s.backend.JSON("/cve/CVE-2099-0001", http.StatusNotFound, `{"detail":"Not Found"}`)

	_, err := s.call(Input{CVEID: "CVE-2099-0001"})
	s.Require().Error(err)
	s.Equal("CVE not found: CVE-2099-0001", err.Error())
	s.True(errors.Is(err, upstream.ErrNotFound))
}

func (s *CVELookupTestSuite) TestInvalidFormat() {
	s.backend.JSON("/cve/NOT-A-CVE", http.StatusUnprocessableEntity, `{"detail":"invalid cve id"}`)

	_, err := s.call(Input{CVEID: "not-a-cve"})
	s.Require().Error(err)
	s.Equal("Invalid CVE ID format: NOT-A-CVE", err.Error())
}

func (s *CVELookupTestSuite) TestValidation_Empty() {
	_, err := s.call(Input{CVEID: "   "})
	s.Require().Error(err)
	s.Contains(err.Error(), "validation error")
	s.Zero(s.backend.Requests())
}

func TestCVELookupTestSuite(t *testing.T) {
	suite.Run(t, new(CVELookupTestSuite))
}
