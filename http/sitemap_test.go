package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	rchttp "github.com/fwojciec/recipecrawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the given path → body map, replacing {{BASE}}
// in bodies with the server's own URL.
func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	return srv
}

func TestSitemapService_DiscoverURLs_URLSet(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/coconut-curry/</loc></url>
  <url><loc>{{BASE}}/lentil-soup/</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{"/post-sitemap.xml": sitemapXML})
	defer srv.Close()

	svc := rchttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/post-sitemap.xml")

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/coconut-curry/")
	assert.Contains(t, urls, srv.URL+"/lentil-soup/")
}

func TestSitemapService_DiscoverURLs_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/post-sitemap.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/post-sitemap2.xml</loc></sitemap>
</sitemapindex>`

	sitemap1 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/coconut-curry/</loc></url>
</urlset>`

	sitemap2 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/lentil-soup/</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap_index.xml": sitemapIndex,
		"/post-sitemap.xml":  sitemap1,
		"/post-sitemap2.xml": sitemap2,
	})
	defer srv.Close()

	svc := rchttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap_index.xml")

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/coconut-curry/")
	assert.Contains(t, urls, srv.URL+"/lentil-soup/")
}

func TestSitemapService_DiscoverURLs_SelfReferencingIndex(t *testing.T) {
	t.Parallel()

	// An index that lists itself must not loop.
	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap_index.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/post-sitemap.xml</loc></sitemap>
</sitemapindex>`

	sitemap := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/recipe/</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap_index.xml": sitemapIndex,
		"/post-sitemap.xml":  sitemap,
	})
	defer srv.Close()

	svc := rchttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap_index.xml")

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/recipe/"}, urls)
}

func TestSitemapService_DiscoverURLs_MalformedXMLRecovers(t *testing.T) {
	t.Parallel()

	// Unclosed url element and a stray ampersand; permissive parsing
	// should still surface the well-formed loc entries.
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/good-recipe/</loc></url>
  <url><loc>{{BASE}}/also-good/</loc>
</urlset>`

	srv := newTestServer(t, map[string]string{"/post-sitemap.xml": sitemapXML})
	defer srv.Close()

	svc := rchttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/post-sitemap.xml")

	require.NoError(t, err)
	assert.Contains(t, urls, srv.URL+"/good-recipe/")
}

func TestSitemapService_DiscoverURLs_SkipsEmptyLocs(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>  </loc></url>
  <url></url>
  <url><loc>{{BASE}}/recipe/</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{"/post-sitemap.xml": sitemapXML})
	defer srv.Close()

	svc := rchttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/post-sitemap.xml")

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/recipe/"}, urls)
}

func TestSitemapService_DiscoverURLs_HTTPError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := rchttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/missing-sitemap.xml")

	assert.Error(t, err)
	assert.Empty(t, urls)
}

func TestSitemapService_DiscoverURLs_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := rchttp.NewSitemapService(srv.Client())
	_, err := svc.DiscoverURLs(ctx, srv.URL+"/post-sitemap.xml")

	assert.ErrorIs(t, err, context.Canceled)
}
