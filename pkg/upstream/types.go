package upstream

// Host is the /shodan/host/{ip} response.
type Host struct {
	IPStr       string    `json:"ip_str"`
	Org         *string   `json:"org"`
	ISP         *string   `json:"isp"`
	ASN         *string   `json:"asn"`
	LastUpdate  *string   `json:"last_update"`
	CountryName *string   `json:"country_name"`
	City        *string   `json:"city"`
	RegionCode  *string   `json:"region_code"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Ports       []int     `json:"ports"`
	Hostnames   []string  `json:"hostnames"`
	Domains     []string  `json:"domains"`
	Tags        []string  `json:"tags"`
	Data        []Service `json:"data"`
}

// Service is one banner record. Search matches carry the same shape plus
// the host level fields.
type Service struct {
	Port      int       `json:"port"`
	Transport *string   `json:"transport"`
	Data      *string   `json:"data"`
	Product   *string   `json:"product"`
	Version   *string   `json:"version"`
	CPE       []string  `json:"cpe"`
	HTTP      *HTTPInfo `json:"http"`
	Cloud     *Cloud    `json:"cloud"`

	IPStr     string    `json:"ip_str"`
	Org       *string   `json:"org"`
	ISP       *string   `json:"isp"`
	ASN       *string   `json:"asn"`
	Timestamp *string   `json:"timestamp"`
	Location  *Location `json:"location"`
	Hostnames []string  `json:"hostnames"`
	Domains   []string  `json:"domains"`
}

type HTTPInfo struct {
	Server  *string `json:"server"`
	Title   *string `json:"title"`
	Robots  *string `json:"robots"`
	Sitemap *string `json:"sitemap"`
}

type Cloud struct {
	Provider *string `json:"provider"`
	Service  *string `json:"service"`
	Region   *string `json:"region"`
}

type Location struct {
	CountryName *string  `json:"country_name"`
	City        *string  `json:"city"`
	RegionCode  *string  `json:"region_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// SearchResult is the /shodan/host/search response.
type SearchResult struct {
	Total   int       `json:"total"`
	Matches []Service `json:"matches"`
	Facets  Facets    `json:"facets"`
}

type Facets struct {
	Country []FacetValue `json:"country"`
}

type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CVE is a CVEDB vulnerability record, used by /cve/{id} and /cves.
type CVE struct {
	CVEID              string   `json:"cve_id"`
	Summary            *string  `json:"summary"`
	CVSS               *float64 `json:"cvss"`
	CVSSVersion        *float64 `json:"cvss_version"`
	CVSSv2             *float64 `json:"cvss_v2"`
	CVSSv3             *float64 `json:"cvss_v3"`
	EPSS               *float64 `json:"epss"`
	RankingEPSS        *float64 `json:"ranking_epss"`
	KEV                bool     `json:"kev"`
	ProposeAction      *string  `json:"propose_action"`
	RansomwareCampaign *string  `json:"ransomware_campaign"`
	References         []string `json:"references"`
	PublishedTime      *string  `json:"published_time"`
	CPEs               []string `json:"cpes"`
}

// CPEList is the /cpes response. Total is only set in count mode.
type CPEList struct {
	Total *int     `json:"total"`
	CPEs  []string `json:"cpes"`
}

// CVEList is the /cves response. Total is only set in count mode.
type CVEList struct {
	Total *int  `json:"total"`
	CVEs  []CVE `json:"cves"`
}

// CPEQuery holds the /cpes query parameters.
type CPEQuery struct {
	Product string
	Count   bool
	Skip    int
	Limit   int
}

// CVEQuery holds the /cves query parameters. Exactly one of CPE23 and Product is set.
type CVEQuery struct {
	CPE23      string
	Product    string
	Count      bool
	IsKEV      bool
	SortByEPSS bool
	Skip       int
	Limit      int
	StartDate  string
	EndDate    string
}
