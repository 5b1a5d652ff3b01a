package preview

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

const (
	pdfOutlineInput = 2 * 1024
	pdfSummaryInput = 4 * 1024
	pdfOutlineMax   = 5
)

// pdfPreview extracts page text from a bounded fetch and streams
// outline and summary as two independent updates. Each step degrades
// to an empty result on its own; one failing never blocks the other.
func (g *Generator) pdfPreview(ctx context.Context, result models.PreflightResult, updates chan<- models.PreviewUpdate) models.PreviewArtifact {
	var artifact models.PreviewArtifact

	fetched, err := g.prober.PartialFetch(ctx, result.FinalURL, g.cfg.PDFFetchBytes)
	if err != nil {
		updates <- normalizeFetchError(err)
		return artifact
	}

	text, pageCount, err := g.extractor.PDFText(fetched.Bytes)
	if err != nil || strings.TrimSpace(text) == "" {
		// No extractable text; outline and summary simply stay empty.
		g.logger.Debug("pdf text unavailable", "href", result.Href, "error", err)
		updates <- models.PreviewUpdate{Kind: models.UpdateClear}
		return artifact
	}

	sess, ok := g.session(updates)
	if !ok {
		return artifact
	}
	defer sess.Dispose()

	if outline := g.pdfOutline(sess, text, pageCount); len(outline) > 0 {
		artifact.Outline = outline
		updates <- models.PreviewUpdate{Kind: models.UpdateOutline, Lines: outline}
	}

	if summary := g.pdfSummary(sess, text); summary != "" {
		artifact.Summary = summary
		updates <- models.PreviewUpdate{Kind: models.UpdateSummary, Text: summary}
	}

	return artifact
}

func (g *Generator) pdfOutline(sess Prompter, text string, pageCount int) []string {
	input := text
	if len(input) > pdfOutlineInput {
		input = truncateRunes(input, pdfOutlineInput)
	}

	response, err := sess.Prompt(
		fmt.Sprintf("You outline PDF documents for a link-preview tool. Respond with up to %d section headings, one per line. No numbering, no commentary.", pdfOutlineMax),
		fmt.Sprintf("Document text (%d pages, truncated):\n%s", pageCount, input),
	)
	if err != nil {
		g.logger.Warn("pdf outline prompt failed", "error", err)
		return nil
	}

	var outline []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" {
			continue
		}
		outline = append(outline, line)
		if len(outline) == pdfOutlineMax {
			break
		}
	}
	return outline
}

func (g *Generator) pdfSummary(sess Prompter, text string) string {
	input := text
	if len(input) > pdfSummaryInput {
		input = truncateRunes(input, pdfSummaryInput)
	}

	summary, err := sess.Prompt(
		"You summarize PDF documents for a link-preview tool. Respond with a short abstractive summary, 2-4 sentences.",
		fmt.Sprintf("Document text (truncated):\n%s", input),
	)
	if err != nil {
		g.logger.Warn("pdf summary prompt failed", "error", err)
		return ""
	}
	return strings.TrimSpace(summary)
}
