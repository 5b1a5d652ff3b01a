package models

// PreviewArtifact accumulates the preview content for one classified
// link. Fields fill in as async steps complete; the artifact persisted
// to cache is the final accumulated state, not each partial update.
type PreviewArtifact struct {
	Summary          string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Outline          []string `json:"outline,omitempty" yaml:"outline,omitempty"`
	Overview         string   `json:"overview,omitempty" yaml:"overview,omitempty"`
	ImageDescription string   `json:"image_description,omitempty" yaml:"image_description,omitempty"`
	ImageURL         string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// ISO-639-1 code of the extracted excerpt, when detectable.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Empty reports whether no preview content was produced at all.
func (a PreviewArtifact) Empty() bool {
	return a.Summary == "" && len(a.Outline) == 0 && a.Overview == "" &&
		a.ImageDescription == "" && a.ImageURL == ""
}

// UpdateKind tags a partial preview update on the per-request stream.
type UpdateKind string

const (
	UpdateOverview    UpdateKind = "overview"
	UpdateSummary     UpdateKind = "summary"
	UpdateOutline     UpdateKind = "outline"
	UpdateImage       UpdateKind = "image"
	UpdateDescription UpdateKind = "description"
	UpdateRiskNote    UpdateKind = "risk_note"
	UpdateUnavailable UpdateKind = "unavailable"
	UpdateClear       UpdateKind = "clear"
)

// PreviewUpdate is one tagged partial-result message. Updates within a
// request's stream are ordered; a later update never retracts a field
// carried by an earlier one.
type PreviewUpdate struct {
	Kind      UpdateKind `json:"kind" yaml:"kind"`
	Text      string     `json:"text,omitempty" yaml:"text,omitempty"`
	Lines     []string   `json:"lines,omitempty" yaml:"lines,omitempty"`
	FromCache bool       `json:"from_cache,omitempty" yaml:"from_cache,omitempty"`
}
