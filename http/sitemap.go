package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/recipecrawl"
)

// Ensure SitemapService implements recipecrawl.SitemapService.
var _ recipecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService extracts page URLs from sitemap documents via HTTP.
//
// Parsing runs in permissive mode so a sitemap with minor XML defects
// still yields its URLs; only a fetch failure or an unreadable document
// is reported as an error.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP
// client. If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs fetches and parses a sitemap URL and returns the page
// URLs it lists. Sitemap indexes are resolved recursively; a sitemap
// referenced more than once is only processed the first time.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	seen := make(map[string]bool)
	return s.processSitemap(ctx, sitemapURL, seen)
}

// processSitemap fetches and parses one sitemap document, handling both
// urlset and sitemapindex roots.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, recipecrawl.Errorf(recipecrawl.EINVALID, "parsing sitemap XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, recipecrawl.Errorf(recipecrawl.EINVALID, "empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen)
	}
	return parseURLSet(root), nil
}

// processSitemapIndex resolves the child sitemaps of a <sitemapindex>.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var allURLs []string
	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		childURL := strings.TrimSpace(loc.Text())
		if childURL == "" {
			continue
		}

		urls, err := s.processSitemap(ctx, childURL, seen)
		if err != nil {
			return nil, err
		}
		allURLs = append(allURLs, urls...)
	}
	return allURLs, nil
}

// parseURLSet extracts loc text values from a <urlset> element.
// etree keeps namespace prefixes in Element.Space, so matching on Tag
// covers both the default sitemap namespace and prefixed documents.
func parseURLSet(root *etree.Element) []string {
	var urls []string
	for _, urlEl := range root.ChildElements() {
		if urlEl.Tag != "url" {
			continue
		}
		for _, loc := range urlEl.ChildElements() {
			if loc.Tag != "loc" {
				continue
			}
			if u := strings.TrimSpace(loc.Text()); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, recipecrawl.Errorf(recipecrawl.EINVALID, "creating request: %v", err)
	}
	setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, recipecrawl.Errorf(recipecrawl.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}
