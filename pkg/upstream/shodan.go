package upstream

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Host returns everything Shodan knows about a single IP.
func (c *Client) Host(ctx context.Context, ip string) (*Host, error) {
	var host Host
	if err := c.queryShodan(ctx, "/shodan/host/"+url.PathEscape(ip), nil, &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// Search runs a device search and asks for the country facet.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("facets", "country")

	var result SearchResult
	if err := c.queryShodan(ctx, "/shodan/host/search", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Resolve maps hostnames to IPs in one batch. Unresolvable names map to nil.
func (c *Client) Resolve(ctx context.Context, hostnames []string) (map[string]*string, error) {
	params := url.Values{}
	params.Set("hostnames", strings.Join(hostnames, ","))

	result := map[string]*string{}
	if err := c.queryShodan(ctx, "/dns/resolve", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Reverse maps IPs to their known hostnames in one batch.
func (c *Client) Reverse(ctx context.Context, ips []string) (map[string][]string, error) {
	params := url.Values{}
	params.Set("ips", strings.Join(ips, ","))

	result := map[string][]string{}
	if err := c.queryShodan(ctx, "/dns/reverse", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}
