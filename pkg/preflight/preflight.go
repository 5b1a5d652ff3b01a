// Package preflight sequences the classification pipeline: scheme
// gate, lexical checks, network probe, type and risk resolution, and
// fetch planning. Classify never returns an error; every branch,
// including internal failure, yields a complete PreflightResult.
package preflight

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/AdityaBoddepalli/HoverPeek/internal/common"
	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/classify"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/signals"
)

// Request is one link event: the href under the cursor, its visible
// text, and the URL of the page hosting it.
type Request struct {
	Href       string
	AnchorText string
	PageURL    string
}

// Orchestrator runs classifications and caches their results. It does
// not deduplicate concurrent requests for the same href; two racing
// classifications are both valid and the cache is last-write-wins.
type Orchestrator struct {
	prober *prober.Prober
	cache  *cache.Cache[models.PreflightResult]
	cfg    models.Config
	logger *slog.Logger
}

// New wires an orchestrator over the given prober and preflight cache.
func New(p *prober.Prober, c *cache.Cache[models.PreflightResult], cfg models.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{prober: p, cache: c, cfg: cfg, logger: logger}
}

// Classify resolves one link to a PreflightResult, serving from cache
// within the TTL window. The result is cached under the original href.
func (o *Orchestrator) Classify(ctx context.Context, req Request) models.PreflightResult {
	if cached, ok := o.cache.Get(req.Href); ok {
		return cached
	}

	result := o.classify(ctx, req)
	o.cache.Set(req.Href, result)
	return result
}

// classify is the state machine proper, terminal on the first
// applicable branch. A panic anywhere degrades to the fallback result
// rather than escaping to the caller.
func (o *Orchestrator) classify(ctx context.Context, req Request) (result models.PreflightResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("classification panic, degrading", "href", req.Href, "panic", r)
			result = o.degraded(req.Href)
		}
	}()

	target, err := url.Parse(common.SanitizeURL(req.Href))
	if err != nil {
		return o.degraded(req.Href)
	}

	pageURL, _ := url.Parse(req.PageURL)
	if target.Scheme == "" && pageURL != nil {
		// Relative href: resolve against the hosting page before any
		// scheme or anchor decision.
		target = pageURL.ResolveReference(target)
	}

	// Gate: unsafe schemes fail the whole pipeline, no network call.
	if signals.UnsafeScheme(target.Scheme) {
		return models.PreflightResult{
			Href:     req.Href,
			Type:     models.TypeBlocked,
			Risk:     models.RiskRed,
			Reasons:  []string{signals.ReasonUnsafeScheme},
			FinalURL: req.Href,
			Plan:     models.PlanBlocked,
		}
	}

	// Scheme specials need no risk analysis.
	switch target.Scheme {
	case "mailto":
		return o.noFetch(req.Href, target, models.TypeMailto)
	case "tel":
		return o.noFetch(req.Href, target, models.TypeTel)
	}

	if isSamePageAnchor(target, pageURL) {
		return o.noFetch(req.Href, target, models.TypeAnchor)
	}

	// Lexical checks accumulate; none of them is terminal.
	var sigs []models.RiskSignal
	sigs = append(sigs, signals.CheckHomograph(target.Hostname())...)
	sigs = append(sigs, signals.CheckDowngrade(req.PageURL, target)...)
	mismatch := signals.CheckMismatch(req.AnchorText, target)

	if target.Scheme != "http" && target.Scheme != "https" {
		return models.PreflightResult{
			Href:     req.Href,
			Domain:   target.Hostname(),
			Type:     models.TypeBlocked,
			Risk:     models.RiskRed,
			Reasons:  []string{signals.ReasonUnknownProtocol},
			FinalURL: target.String(),
			Plan:     models.PlanBlocked,
			Mismatch: mismatch,
		}
	}

	// Hosted video is recognized from the URL shape alone; the preview
	// never fetches it, so the probe is skipped too.
	if video := classify.DetectVideoPlatform(target); video != nil {
		tier, reasons := classify.ReduceRisk(sigs)
		return models.PreflightResult{
			Href:     req.Href,
			Domain:   target.Hostname(),
			Type:     models.TypeVideo,
			Risk:     tier,
			Reasons:  reasons,
			FinalURL: target.String(),
			Plan:     classify.PlanFetch(models.TypeVideo, tier),
			Mismatch: mismatch,
			Video:    video,
		}
	}

	probe := o.prober.ProbeHead(ctx, target.String())
	if probe.Failed {
		// The host never answered; the guessed type ships with a
		// visible caution instead of a clean green.
		sigs = append(sigs, signals.ProbeFailureSignal())
	}
	sigs = append(sigs, signals.RedirectSignals(probe.RedirectCount, probe.CapExceeded)...)

	finalURL, err := url.Parse(probe.FinalURL)
	if err != nil {
		finalURL = target
	}

	// Sniff ambiguous downloads to learn what the bytes really are.
	var sniffed models.ResourceType
	provisional := classify.ResolveType(classify.Input{
		Target:             finalURL,
		PageURL:            pageURL,
		ContentType:        probe.ContentType,
		ContentDisposition: probe.ContentDisposition,
	})
	if provisional == models.TypeDownload && !probe.Guessed {
		sniffed = o.prober.SniffBytes(ctx, probe.FinalURL)
		if sniffed == models.TypeDownload {
			// Positive executable/archive signature on a download.
			sigs = append(sigs, signals.ExecutableSignal())
		}
	}

	resolved := classify.ResolveType(classify.Input{
		Target:             finalURL,
		PageURL:            pageURL,
		ContentType:        probe.ContentType,
		ContentDisposition: probe.ContentDisposition,
		Sniffed:            sniffed,
	})

	tier, reasons := classify.ReduceRisk(sigs)
	return models.PreflightResult{
		Href:          req.Href,
		Domain:        finalURL.Hostname(),
		Type:          resolved,
		Risk:          tier,
		Reasons:       reasons,
		SizeBytes:     max64(probe.ContentLength, 0),
		FinalURL:      probe.FinalURL,
		Plan:          classify.PlanFetch(resolved, tier),
		RedirectCount: probe.RedirectCount,
		Mismatch:      mismatch,
	}
}

// noFetch builds the terminal Green result for scheme specials and
// same-page anchors.
func (o *Orchestrator) noFetch(href string, target *url.URL, t models.ResourceType) models.PreflightResult {
	return models.PreflightResult{
		Href:     href,
		Domain:   target.Hostname(),
		Type:     t,
		Risk:     models.RiskGreen,
		FinalURL: target.String(),
		Plan:     models.PlanNoFetch,
	}
}

// degraded is the fallback when classification itself fails: the link
// is treated as a webpage the user should be mildly wary of.
func (o *Orchestrator) degraded(href string) models.PreflightResult {
	domain := ""
	if u, err := url.Parse(href); err == nil {
		domain = u.Hostname()
	}
	return models.PreflightResult{
		Href:     href,
		Domain:   domain,
		Type:     models.TypeWebpage,
		Risk:     models.RiskAmber,
		Reasons:  []string{signals.ReasonUnableToCheck},
		FinalURL: href,
		Plan:     models.PlanPartialGet,
	}
}

func isSamePageAnchor(target, page *url.URL) bool {
	if page == nil || target.Fragment == "" {
		return false
	}
	return target.Host == page.Host && target.Path == page.Path && target.RawQuery == page.RawQuery
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
