package preview

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
)

// normalizeFetchError maps a bounded-fetch failure onto the update the
// presentation layer should show. All three outcomes are terminal for
// this link's preview.
func normalizeFetchError(err error) models.PreviewUpdate {
	if errors.Is(err, prober.ErrBotChallenge) {
		return models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgProtected}
	}

	var httpErr *prober.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound, http.StatusForbidden, http.StatusGone:
			return models.PreviewUpdate{Kind: models.UpdateClear}
		}
		return models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgUnavailable}
	}

	// Timeouts and plain network failures clear the loading state
	// without a message.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.PreviewUpdate{Kind: models.UpdateClear}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.PreviewUpdate{Kind: models.UpdateClear}
	}
	if isTransportError(err) {
		return models.PreviewUpdate{Kind: models.UpdateClear}
	}

	return models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgUnavailable}
}

// isTransportError recognizes connection-level failures where no
// response was produced at all, the closest analog of a CORS denial.
func isTransportError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
