package preview

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

// downloadPreview describes a download from metadata alone; no bytes
// of the file are ever fetched here.
func (g *Generator) downloadPreview(result models.PreflightResult, updates chan<- models.PreviewUpdate) models.PreviewArtifact {
	var artifact models.PreviewArtifact

	sess, ok := g.session(updates)
	if !ok {
		return artifact
	}
	defer sess.Dispose()

	filename, ext := downloadName(result.FinalURL)
	user := fmt.Sprintf(
		"A link points to a downloadable file.\nFilename: %s\nExtension: %s\nHost: %s\nSize: %s\n\nIn one or two sentences, tell the user what this file most likely is and what opening it would do.",
		filename, ext, result.Domain, sizeLabel(result.SizeBytes),
	)
	overview, err := sess.Prompt(
		"You describe downloadable files for a link-preview tool. Be factual and brief. Never speculate about file contents you cannot know.",
		user,
	)
	if err != nil {
		g.logger.Warn("download overview prompt failed", "href", result.Href, "error", err)
	} else if overview = strings.TrimSpace(overview); overview != "" {
		artifact.Overview = overview
		updates <- models.PreviewUpdate{Kind: models.UpdateOverview, Text: overview}
	}

	// The risk note exists only when there are reasons to compress.
	if len(result.Reasons) > 0 {
		note, err := sess.Prompt(
			"You compress security warnings for a link-preview tool. Respond with a single sentence of at most 120 characters. No preamble.",
			fmt.Sprintf("Warnings for this download: %s", strings.Join(result.Reasons, "; ")),
		)
		if err != nil {
			g.logger.Warn("risk note prompt failed", "href", result.Href, "error", err)
		} else if note = truncateRunes(note, riskNoteLimit); note != "" {
			artifact.Summary = note
			updates <- models.PreviewUpdate{Kind: models.UpdateRiskNote, Text: note}
		}
	}

	return artifact
}

func downloadName(finalURL string) (filename, ext string) {
	u, err := url.Parse(finalURL)
	if err != nil {
		return "unknown", ""
	}
	filename = path.Base(u.Path)
	if filename == "." || filename == "/" || filename == "" {
		filename = "unknown"
	}
	return filename, strings.TrimPrefix(path.Ext(filename), ".")
}

func sizeLabel(bytes int64) string {
	switch {
	case bytes <= 0:
		return "unknown"
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	}
}
