// Package mock provides function-field mock implementations of the
// recipecrawl service interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/recipecrawl"
)

var _ recipecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of recipecrawl.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, sitemapURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, sitemapURL)
}
