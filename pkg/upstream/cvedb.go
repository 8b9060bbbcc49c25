package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CVE fetches a single vulnerability record.
func (c *Client) CVE(ctx context.Context, id string) (*CVE, error) {
	var cve CVE
	err := c.queryCVEDB(ctx, "/cve/"+url.PathEscape(id), nil, &cve, func(f *failure) (Kind, string) {
		switch f.status {
		case http.StatusUnprocessableEntity:
			return KindInvalidParams, "Invalid CVE ID format: " + id
		case http.StatusNotFound:
			return KindNotFound, "CVE not found: " + id
		}
		return KindStatus, ""
	})
	if err != nil {
		return nil, err
	}
	return &cve, nil
}

// CPEs searches CPE identifiers by product name.
func (c *Client) CPEs(ctx context.Context, q CPEQuery) (*CPEList, error) {
	params := url.Values{}
	params.Set("product", q.Product)
	params.Set("count", strconv.FormatBool(q.Count))
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("limit", strconv.Itoa(q.Limit))

	var result CPEList
	if err := c.queryCVEDB(ctx, "/cpes", params, &result, invalidParams); err != nil {
		return nil, err
	}
	return &result, nil
}

// CVEs searches vulnerabilities by CPE 2.3 string or product name.
func (c *Client) CVEs(ctx context.Context, q CVEQuery) (*CVEList, error) {
	params := url.Values{}
	if q.CPE23 != "" {
		params.Set("cpe23", q.CPE23)
	}
	if q.Product != "" {
		params.Set("product", q.Product)
	}
	params.Set("count", strconv.FormatBool(q.Count))
	params.Set("is_kev", strconv.FormatBool(q.IsKEV))
	params.Set("sort_by_epss", strconv.FormatBool(q.SortByEPSS))
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.StartDate != "" {
		params.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("end_date", q.EndDate)
	}

	var result CVEList
	if err := c.queryCVEDB(ctx, "/cves", params, &result, invalidParams); err != nil {
		return nil, err
	}
	return &result, nil
}

func invalidParams(f *failure) (Kind, string) {
	if f.status == http.StatusUnprocessableEntity {
		return KindInvalidParams, "Invalid parameters: " + f.detail
	}
	return KindStatus, ""
}
