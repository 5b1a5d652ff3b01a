// Package titles resolves and caches page titles for classified links.
package titles

import (
	"context"
	"log/slog"

	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/extract"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
)

const fetchBudget = 48 * 1024

// Resolver fetches the head of a page and extracts its title, caching
// results in the titles cache instance. Failures resolve to the empty
// title; a missing title is never an error.
type Resolver struct {
	prober    *prober.Prober
	extractor extract.Extractor
	cache     *cache.Cache[string]
	logger    *slog.Logger
}

func NewResolver(p *prober.Prober, ex extract.Extractor, c *cache.Cache[string], logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{prober: p, extractor: ex, cache: c, logger: logger}
}

// Resolve returns the page title for an http(s) URL, cached for the
// TTL window. The empty string is a valid, cacheable answer.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) string {
	if title, ok := r.cache.Get(pageURL); ok {
		return title
	}

	result, err := r.prober.PartialFetch(ctx, pageURL, fetchBudget)
	if err != nil {
		r.logger.Debug("title fetch failed", "url", pageURL, "error", err)
		return ""
	}

	title := r.extractor.PageTitle(string(result.Bytes))
	r.cache.Set(pageURL, title)
	return title
}
