package preview

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

const webpageExcerptLimit = 4096

// webpagePreview fetches the head of the page, distills an excerpt,
// and prompts for a short overview, streamed as a single update.
func (g *Generator) webpagePreview(ctx context.Context, result models.PreflightResult, updates chan<- models.PreviewUpdate) models.PreviewArtifact {
	var artifact models.PreviewArtifact

	fetched, err := g.prober.PartialFetch(ctx, result.FinalURL, g.cfg.WebpageFetchBytes)
	if err != nil {
		updates <- normalizeFetchError(err)
		return artifact
	}

	rawHTML := string(fetched.Bytes)
	excerpt, err := g.extractor.WebpageExcerpt(rawHTML, result.FinalURL)
	if err != nil || excerpt == "" {
		// No distillable content; markdown of the truncated markup is
		// a usable last resort for the prompt.
		if markdown, mdErr := g.extractor.Markdown(rawHTML); mdErr == nil {
			excerpt = strings.TrimSpace(markdown)
		}
	}
	if excerpt == "" {
		updates <- models.PreviewUpdate{Kind: models.UpdateClear}
		return artifact
	}
	if len(excerpt) > webpageExcerptLimit {
		excerpt = truncateRunes(excerpt, webpageExcerptLimit)
	}

	artifact.Language = g.extractor.DetectLanguage(excerpt)

	sess, ok := g.session(updates)
	if !ok {
		return artifact
	}
	defer sess.Dispose()

	overview, err := sess.Prompt(
		"You write webpage previews for a link-preview tool. Respond with 2-3 plain sentences describing what the page is about. No headings, no lists.",
		fmt.Sprintf("URL: %s\n\nPage content:\n%s", result.FinalURL, excerpt),
	)
	if err != nil {
		g.logger.Warn("webpage overview prompt failed", "href", result.Href, "error", err)
		updates <- models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgUnavailable}
		return artifact
	}

	if overview = strings.TrimSpace(overview); overview != "" {
		artifact.Overview = overview
		updates <- models.PreviewUpdate{Kind: models.UpdateOverview, Text: overview}
	}
	return artifact
}
