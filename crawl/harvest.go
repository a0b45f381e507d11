// Package crawl orchestrates a harvest run: sitemap collection, polite
// concurrent fetching, per-page extraction, and outcome aggregation.
package crawl

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sort"
	"time"

	"github.com/fwojciec/recipecrawl"
	"golang.org/x/sync/errgroup"
)

// Harvester tuning defaults.
const (
	DefaultConcurrency = 3
	DefaultDelayMin    = 1 * time.Second
	DefaultDelayMax    = 3 * time.Second
)

// Classification records why a URL was skipped or failed.
type Classification struct {
	URL    string
	Reason string
}

// Result aggregates the outcomes of one harvest run.
type Result struct {
	Recipes []*recipecrawl.Recipe
	Skipped []Classification
	Failed  []Classification
}

// Counts returns the number of successful, skipped, and failed URLs.
func (r *Result) Counts() (success, skipped, failed int) {
	return len(r.Recipes), len(r.Skipped), len(r.Failed)
}

// Harvester runs the full pipeline over a list of sitemap URLs.
//
// Per-URL extraction is pure; the only shared state is the aggregated
// Result, which is built by a single collector goroutine reading from
// a channel, so no locking is needed anywhere in the run.
type Harvester struct {
	Sitemaps  recipecrawl.SitemapService
	Fetcher   recipecrawl.Fetcher
	Extractor recipecrawl.RecipeExtractor

	// Recipes optionally persists each successful record as it is
	// collected. Nil disables persistence.
	Recipes recipecrawl.RecipeWriter

	// Limiter paces requests per host. Optional.
	Limiter recipecrawl.RateLimiter

	// Concurrency bounds the worker pool. Defaults to DefaultConcurrency.
	Concurrency int

	// DelayMin/DelayMax bound the randomized politeness delay each
	// worker sleeps before a fetch. Both zero disables the delay.
	DelayMin time.Duration
	DelayMax time.Duration

	// RetryDelays overrides the fetch retry backoff schedule.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Run unions the page URLs of all sitemaps, processes each URL through
// fetch → extract, and returns the aggregated result.
//
// A sitemap that fails to fetch or parse costs the run its URLs, never
// the run itself. Cancellation is cooperative: dispatch stops, in-flight
// work finishes, and the partial result is returned alongside the
// context's error so callers can persist what was collected.
func (h *Harvester) Run(ctx context.Context, sitemapURLs []string) (*Result, error) {
	logger := h.logger()

	urls := h.collectURLs(ctx, sitemapURLs)
	logger.Info("sitemap collection finished", "sitemaps", len(sitemapURLs), "urls", len(urls))

	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomeCh := make(chan *recipecrawl.Outcome, concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, pageURL := range urls {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				outcomeCh <- h.processURL(gctx, pageURL)
				return nil
			})
		}
		_ = g.Wait()
		close(outcomeCh)
	}()

	var result Result
	processed := 0
	for outcome := range outcomeCh {
		if outcome == nil {
			// canceled mid-flight, nothing to record
			continue
		}
		processed++
		switch outcome.Status {
		case recipecrawl.StatusSuccess:
			result.Recipes = append(result.Recipes, outcome.Recipe)
			logger.Info("recipe extracted", "url", outcome.URL, "processed", processed, "total", len(urls))
		case recipecrawl.StatusSkipped:
			result.Skipped = append(result.Skipped, Classification{URL: outcome.URL, Reason: outcome.Reason})
			logger.Info("page skipped", "url", outcome.URL, "reason", outcome.Reason)
		case recipecrawl.StatusFailed:
			result.Failed = append(result.Failed, Classification{URL: outcome.URL, Reason: outcome.Reason})
			logger.Warn("extraction failed", "url", outcome.URL, "reason", outcome.Reason)
		}
	}

	if err := ctx.Err(); err != nil {
		return &result, err
	}
	return &result, nil
}

// collectURLs unions the page URLs of all sitemaps with exact set
// semantics and returns them in sorted order for deterministic runs.
func (h *Harvester) collectURLs(ctx context.Context, sitemapURLs []string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, sitemapURL := range sitemapURLs {
		if ctx.Err() != nil {
			break
		}
		found, err := h.Sitemaps.DiscoverURLs(ctx, sitemapURL)
		if err != nil {
			h.logger().Warn("sitemap discovery failed", "sitemap", sitemapURL, "err", err)
			continue
		}
		for _, u := range found {
			if seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)
	return urls
}

// processURL handles one page: politeness delay, rate limit, fetch with
// retry, extraction, and optional persistence. Returns nil when the
// context was canceled before an outcome could be produced.
func (h *Harvester) processURL(ctx context.Context, pageURL string) *recipecrawl.Outcome {
	if err := h.politenessDelay(ctx); err != nil {
		return nil
	}

	if h.Limiter != nil {
		var host string
		if u, err := url.Parse(pageURL); err == nil {
			host = u.Host
		}
		if err := h.Limiter.Wait(ctx, host); err != nil {
			return nil
		}
	}

	delays := h.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, pageURL, h.Fetcher.Fetch, delays)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return recipecrawl.Failed(pageURL, "fetching page: "+err.Error())
	}

	outcome := h.Extractor.Extract(pageURL, html)

	if outcome.Status == recipecrawl.StatusSuccess && h.Recipes != nil {
		if err := h.Recipes.CreateRecipe(ctx, outcome.Recipe); err != nil {
			return recipecrawl.Failed(pageURL, "saving recipe: "+err.Error())
		}
	}
	return outcome
}

// politenessDelay sleeps a uniformly random duration between DelayMin
// and DelayMax so request timing doesn't look mechanical.
func (h *Harvester) politenessDelay(ctx context.Context) error {
	lo, hi := h.DelayMin, h.DelayMax
	if hi < lo {
		hi = lo
	}
	if hi <= 0 {
		return nil
	}
	d := lo
	if hi > lo {
		d = lo + rand.N(hi-lo)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
