package report

import "github.com/tb0hdan/shodan-mcp/pkg/upstream"

type Vulnerability struct {
	BasicInformation BasicInformation `json:"Basic Information"`
	SeverityScores   SeverityScores   `json:"Severity Scores"`
	ImpactAssessment ImpactAssessment `json:"Impact Assessment"`
	References       []string         `json:"References"`
}

type BasicInformation struct {
	CVEID     string `json:"CVE ID"`
	Published string `json:"Published"`
	Summary   string `json:"Summary"`
}

// SeverityScores fields hold either a score struct or NotAvailable.
type SeverityScores struct {
	CVSSv3 any `json:"CVSS v3"`
	CVSSv2 any `json:"CVSS v2"`
	EPSS   any `json:"EPSS"`
}

type CVSSScore struct {
	Score    float64 `json:"Score"`
	Severity string  `json:"Severity"`
}

type EPSSScore struct {
	Score   string `json:"Score"`
	Ranking string `json:"Ranking"`
}

type ImpactAssessment struct {
	KnownExploited     string `json:"Known Exploited Vulnerability"`
	ProposedAction     string `json:"Proposed Action"`
	RansomwareCampaign string `json:"Ransomware Campaign"`
}

// NewVulnerability turns a CVEDB record into the report entry shared by
// cve_lookup and cves_by_product.
func NewVulnerability(cve upstream.CVE) Vulnerability {
	return Vulnerability{
		BasicInformation: BasicInformation{
			CVEID:     cve.CVEID,
			Published: Timestamp(cve.PublishedTime),
			Summary:   OrDefault(cve.Summary, "No summary available"),
		},
		SeverityScores: SeverityScores{
			CVSSv3: cvss(cve.CVSSv3),
			CVSSv2: cvss(cve.CVSSv2),
			EPSS:   epss(cve.EPSS, cve.RankingEPSS),
		},
		ImpactAssessment: ImpactAssessment{
			KnownExploited:     YesNo(cve.KEV),
			ProposedAction:     OrDefault(cve.ProposeAction, "No specific action proposed"),
			RansomwareCampaign: OrDefault(cve.RansomwareCampaign, "No known ransomware campaigns"),
		},
		References: ListOr(cve.References, "No references provided"),
	}
}

func cvss(score *float64) any {
	if score == nil {
		return NotAvailable
	}
	return CVSSScore{Score: *score, Severity: Severity(*score)}
}

func epss(score, ranking *float64) any {
	if score == nil {
		return NotAvailable
	}
	out := EPSSScore{Score: Percent(*score), Ranking: NotAvailable}
	if ranking != nil {
		out.Ranking = "Top " + Percent(*ranking)
	}
	return out
}
