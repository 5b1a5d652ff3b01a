// Package models defines the shared data types for link preflight
// classification and preview generation.
package models

// ResourceType classifies what a link points at and therefore which
// preview strategy, if any, applies.
type ResourceType string

const (
	TypeWebpage  ResourceType = "webpage"
	TypePDF      ResourceType = "pdf"
	TypeDownload ResourceType = "download"
	TypeImage    ResourceType = "image"
	TypeVideo    ResourceType = "video"
	TypeMailto   ResourceType = "mailto"
	TypeTel      ResourceType = "tel"
	TypeAnchor   ResourceType = "anchor"
	TypeBlocked  ResourceType = "blocked"
)

// RiskTier is the advisory risk level assigned to a link.
// Red dominates Amber dominates Green when signals are merged.
type RiskTier int

const (
	RiskGreen RiskTier = iota
	RiskAmber
	RiskRed
)

func (t RiskTier) String() string {
	switch t {
	case RiskRed:
		return "red"
	case RiskAmber:
		return "amber"
	default:
		return "green"
	}
}

// MarshalText makes RiskTier render as its name in JSON/YAML output.
func (t RiskTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// RiskSignal is a single (severity, reason) observation produced during
// one classification pass. Signals are never persisted standalone.
type RiskSignal struct {
	Tier   RiskTier
	Reason string
}

// FetchPlan governs how much, if any, of the remote resource the
// preview generator may retrieve.
type FetchPlan string

const (
	PlanBlocked    FetchPlan = "blocked"
	PlanHeadOnly   FetchPlan = "head_only"
	PlanPartialGet FetchPlan = "partial_get"
	PlanNoFetch    FetchPlan = "no_fetch"
)

// TextMismatch records a domain-looking token in the visible anchor
// text whose registrable domain differs from the link target's.
// Informational only; it does not contribute to the risk tier.
type TextMismatch struct {
	TextDomain string `json:"text_domain" yaml:"text_domain"`
	LinkDomain string `json:"link_domain" yaml:"link_domain"`
}

// VideoPlatform describes a recognized hosted-video target.
type VideoPlatform struct {
	Name     string `json:"name" yaml:"name"` // youtube, vimeo
	VideoID  string `json:"video_id,omitempty" yaml:"video_id,omitempty"`
	EmbedURL string `json:"embed_url,omitempty" yaml:"embed_url,omitempty"`
}

// PreflightResult is the immutable classification record for one href.
// It is created once per unique href per TTL window and keyed in the
// preflight cache by the original href; a fresh classification replaces
// a cached one, never edits it.
type PreflightResult struct {
	Href          string         `json:"href" yaml:"href"`
	Domain        string         `json:"domain" yaml:"domain"`
	Type          ResourceType   `json:"type" yaml:"type"`
	Risk          RiskTier       `json:"risk" yaml:"risk"`
	Reasons       []string       `json:"reasons,omitempty" yaml:"reasons,omitempty"` // at most two
	SizeBytes     int64          `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	FinalURL      string         `json:"final_url" yaml:"final_url"`
	Plan          FetchPlan      `json:"fetch_plan" yaml:"fetch_plan"`
	RedirectCount int            `json:"redirect_count" yaml:"redirect_count"`
	Mismatch      *TextMismatch  `json:"text_mismatch,omitempty" yaml:"text_mismatch,omitempty"`
	Video         *VideoPlatform `json:"video,omitempty" yaml:"video,omitempty"`
}
