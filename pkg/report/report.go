// Package report holds the formatting shared by the lookup tools: severity
// bucketing, percentages and the fallback text shown for absent fields.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	NotAvailable = "Not available"
	Unknown      = "Unknown"
)

// Severity buckets a CVSS score. Each band includes its lower bound.
func Severity(score float64) string {
	switch {
	case score >= 9.0:
		return "Critical"
	case score >= 7.0:
		return "High"
	case score >= 4.0:
		return "Medium"
	case score >= 0.1:
		return "Low"
	default:
		return "None"
	}
}

// Share renders count as a percentage of total with two decimals.
func Share(count, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return Percent(float64(count) / float64(total))
}

// Percent renders a 0..1 fraction as a percentage with two decimals.
func Percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// OrDefault returns the trimmed value or fallback when it is absent or blank.
func OrDefault(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}

func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// List never returns nil so empty lists render as [] rather than null.
func List(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// ListOr replaces an empty list with a single marker entry.
func ListOr(values []string, marker string) []string {
	if len(values) == 0 {
		return []string{marker}
	}
	return values
}

// Coordinates renders "lat, lon", or Unknown when either half is missing.
func Coordinates(lat, lon *float64) string {
	if lat == nil || lon == nil {
		return Unknown
	}
	return strconv.FormatFloat(*lat, 'f', -1, 64) + ", " + strconv.FormatFloat(*lon, 'f', -1, 64)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp renders an upstream timestamp as "1/2/2006, 3:04:05 PM" in UTC.
// Values that do not parse are returned unchanged.
func Timestamp(value *string) string {
	if value == nil || *value == "" {
		return NotAvailable
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return t.UTC().Format("1/2/2006, 3:04:05 PM")
		}
	}
	return *value
}

// OrderedKeys lists the keys of m in query order, then any others sorted.
func OrderedKeys[V any](query []string, m map[string]V) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, name := range query {
		if _, ok := m[name]; ok && !seen[name] {
			keys = append(keys, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
