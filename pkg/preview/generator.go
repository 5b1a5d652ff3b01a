// Package preview turns a qualifying PreflightResult into a stream of
// partial preview updates, driven by bounded fetches and generative
// prompts. Each strategy catches its own failures; nothing raises past
// Generate, and the update channel always closes.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/internal/common"
	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/capability"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/extract"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
)

const (
	msgHighRisk       = "Preview unavailable for high-risk links"
	msgAIDownloading  = "AI model still downloading"
	msgAINotAvailable = "AI model not available"
	msgProtected      = "Protected site, showing basic info only"
	msgUnavailable    = "Preview unavailable"

	riskNoteLimit = 120
)

// Prompter is one disposable generative session, text and vision.
type Prompter interface {
	Prompt(system, user string) (string, error)
	DescribeImage(prompt string, image []byte, ext string) (string, error)
	Dispose()
}

// CapabilitySource exposes the capability registry to the generator.
type CapabilitySource interface {
	Snapshot() capability.Status
	TextSession() (Prompter, error)
}

// RegistrySource adapts the concrete registry to CapabilitySource.
func RegistrySource(r *capability.Registry) CapabilitySource {
	return registrySource{r}
}

type registrySource struct {
	r *capability.Registry
}

func (s registrySource) Snapshot() capability.Status { return s.r.Snapshot() }

func (s registrySource) TextSession() (Prompter, error) {
	sess, err := s.r.NewTextSession()
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Generator runs per-type preview strategies against classified links.
type Generator struct {
	prober     *prober.Prober
	extractor  extract.Extractor
	capability CapabilitySource
	cache      *cache.Cache[models.PreviewArtifact]
	cfg        models.Config
	logger     *slog.Logger
}

func NewGenerator(p *prober.Prober, ex extract.Extractor, source CapabilitySource, c *cache.Cache[models.PreviewArtifact], cfg models.Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{prober: p, extractor: ex, capability: source, cache: c, cfg: cfg, logger: logger}
}

// CacheKey is the content hash identifying one preview: final URL,
// resource type, and fetch plan.
func CacheKey(result models.PreflightResult) string {
	return common.ContentHash([]byte(fmt.Sprintf("%s|%s|%s", result.FinalURL, result.Type, result.Plan)))
}

// qualifies reports whether the (type, plan) combination gets a
// preview at all.
func qualifies(result models.PreflightResult) bool {
	switch result.Type {
	case models.TypeWebpage, models.TypePDF, models.TypeImage:
		return result.Plan == models.PlanPartialGet
	case models.TypeDownload:
		return result.Plan == models.PlanHeadOnly
	}
	return false
}

// Generate starts preview generation for one classified link and
// returns its update stream. The channel is closed when the strategy
// finishes, including every guard-clause early exit.
func (g *Generator) Generate(ctx context.Context, result models.PreflightResult) <-chan models.PreviewUpdate {
	updates := make(chan models.PreviewUpdate, 8)

	go func() {
		defer close(updates)
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("preview panic", "href", result.Href, "panic", r)
			}
		}()
		g.run(ctx, result, updates)
	}()

	return updates
}

func (g *Generator) run(ctx context.Context, result models.PreflightResult, updates chan<- models.PreviewUpdate) {
	if result.Risk == models.RiskRed {
		updates <- models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgHighRisk}
		return
	}

	if !qualifies(result) {
		return
	}

	status := g.capability.Snapshot()
	switch status.State {
	case capability.StateDownloading:
		updates <- models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgAIDownloading}
		return
	case capability.StateUnavailable:
		updates <- models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgAINotAvailable}
		return
	}

	key := CacheKey(result)
	if artifact, ok := g.cache.Get(key); ok {
		replay(artifact, updates)
		return
	}

	var artifact models.PreviewArtifact
	switch result.Type {
	case models.TypeDownload:
		artifact = g.downloadPreview(result, updates)
	case models.TypeWebpage:
		artifact = g.webpagePreview(ctx, result, updates)
	case models.TypePDF:
		artifact = g.pdfPreview(ctx, result, updates)
	case models.TypeImage:
		artifact = g.imagePreview(ctx, result, updates)
	}

	if !artifact.Empty() {
		g.cache.Set(key, artifact)
	}
}

// replay streams a cached artifact's fields in the same order a fresh
// generation would have produced them.
func replay(artifact models.PreviewArtifact, updates chan<- models.PreviewUpdate) {
	if artifact.Overview != "" {
		updates <- models.PreviewUpdate{Kind: models.UpdateOverview, Text: artifact.Overview, FromCache: true}
	}
	if len(artifact.Outline) > 0 {
		updates <- models.PreviewUpdate{Kind: models.UpdateOutline, Lines: artifact.Outline, FromCache: true}
	}
	if artifact.Summary != "" {
		updates <- models.PreviewUpdate{Kind: models.UpdateSummary, Text: artifact.Summary, FromCache: true}
	}
	if artifact.ImageURL != "" {
		updates <- models.PreviewUpdate{Kind: models.UpdateImage, Text: artifact.ImageURL, FromCache: true}
	}
	if artifact.ImageDescription != "" {
		updates <- models.PreviewUpdate{Kind: models.UpdateDescription, Text: artifact.ImageDescription, FromCache: true}
	}
}

// session opens a text session, or emits the capability-unavailable
// update and reports false.
func (g *Generator) session(updates chan<- models.PreviewUpdate) (Prompter, bool) {
	sess, err := g.capability.TextSession()
	if err != nil {
		updates <- models.PreviewUpdate{Kind: models.UpdateUnavailable, Text: msgAINotAvailable}
		return nil, false
	}
	return sess, true
}

// truncateWords cuts text to at most n words, appending an ellipsis
// when anything was dropped.
func truncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[:n], " ") + "…"
}

// truncateRunes hard-cuts text to at most n runes with an ellipsis.
func truncateRunes(text string, n int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
