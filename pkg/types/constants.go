package types

import "time"

const (
	// DefaultSkip is the pagination offset used when a caller omits skip.
	DefaultSkip = 0
	// DefaultPageLimit is the CVEDB page size used when a caller omits limit.
	DefaultPageLimit = 1000
	// MaxPageLimit is the largest page CVEDB documents. Not enforced locally.
	MaxPageLimit = 1000
	// DefaultSearchResults caps shodan_search matches when max_results is omitted.
	DefaultSearchResults = 10

	// ShodanTimeout bounds every call to the Shodan API host.
	ShodanTimeout = 10 * time.Second

	// DefaultHistoryLimit is the page size of lookup_history list.
	DefaultHistoryLimit = 10
	// MaxHistoryLimit is the largest page lookup_history list returns.
	MaxHistoryLimit = 100
)
