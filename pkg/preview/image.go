package preview

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

const imageDescriptionWords = 30

// imagePreview builds a displayable data URL from the fetched bytes
// and, when vision prompting is possible, adds a short description.
// The two updates are independent; a failed description never retracts
// the image.
func (g *Generator) imagePreview(ctx context.Context, result models.PreflightResult, updates chan<- models.PreviewUpdate) models.PreviewArtifact {
	var artifact models.PreviewArtifact

	fetched, err := g.prober.PartialFetch(ctx, result.FinalURL, g.cfg.ImageFetchBytes)
	if err != nil {
		updates <- normalizeFetchError(err)
		return artifact
	}
	if fetched.Truncated {
		// A cut-off image renders broken; better to show nothing.
		updates <- models.PreviewUpdate{Kind: models.UpdateClear}
		return artifact
	}

	contentType := fetched.ContentType
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(fetched.Bytes))
	artifact.ImageURL = dataURL
	updates <- models.PreviewUpdate{Kind: models.UpdateImage, Text: dataURL}

	sess, err := g.capability.TextSession()
	if err != nil {
		// Description is optional; the image already shipped.
		return artifact
	}
	defer sess.Dispose()

	description, err := sess.DescribeImage(
		fmt.Sprintf("Describe this image in at most %d words for a link preview.", imageDescriptionWords),
		fetched.Bytes,
		extFor(contentType),
	)
	if err != nil {
		g.logger.Warn("image description prompt failed", "href", result.Href, "error", err)
		return artifact
	}

	if description = truncateWords(description, imageDescriptionWords); description != "" {
		artifact.ImageDescription = description
		updates <- models.PreviewUpdate{Kind: models.UpdateDescription, Text: description}
	}
	return artifact
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}
