package recipecrawl

import "context"

// SitemapService extracts page URLs from a sitemap document.
type SitemapService interface {
	// DiscoverURLs fetches and parses a single sitemap URL and returns
	// the page URLs it lists. Sitemap indexes are resolved recursively.
	//
	// Callers union the results of multiple sitemaps; duplicate URLs
	// across sitemaps collapse. A fetch or parse failure is reported as
	// an error so the caller can log it and continue with an empty set.
	DiscoverURLs(ctx context.Context, sitemapURL string) ([]string, error)
}
