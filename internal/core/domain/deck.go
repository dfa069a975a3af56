package domain

// Stage identifies one step of the deck generation pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageOutline  Stage = "outline"
	StageExpand   Stage = "expand"
	StageReview   Stage = "review"
	StageOptimize Stage = "optimize"
	StageExport   Stage = "export"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// ValidationStatus is the fact-check classification of a single statement.
type ValidationStatus string

// Available validation statuses.
const (
	// StatusAccurate marks a statement supported by the reference text.
	StatusAccurate ValidationStatus = "accurate"

	// StatusNeedsReview marks a statement that is uncertain, unsupported,
	// or potentially incorrect. A non-empty reason is required.
	StatusNeedsReview ValidationStatus = "needs_review"
)

// IsValid returns true if the status is recognised.
func (s ValidationStatus) IsValid() bool {
	return s == StatusAccurate || s == StatusNeedsReview
}

// SlideOutline is one planned slide: a title plus short bullet points.
type SlideOutline struct {
	Title        string   `json:"title"`
	BulletPoints []string `json:"bullet_points"`
}

// Outline is the ordered plan for the whole deck, produced once by the
// outline stage. Slide count is a best-effort target, not a guarantee.
type Outline struct {
	Slides []SlideOutline `json:"slides"`
}

// ExpandedSlide elaborates one outline slide into detailed prose points.
// Titles and slide order match the outline; point count may differ from
// the bullet count because expansion may merge or split bullets.
type ExpandedSlide struct {
	Title          string   `json:"title"`
	DetailedPoints []string `json:"detailed_points"`
}

// ValidationPoint is the fact-check result for a single expanded statement.
// Reason is present iff Status is needs_review.
type ValidationPoint struct {
	Point  string           `json:"point"`
	Status ValidationStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}

// SlideValidation is the per-slide output of the review stage.
// Point order matches the expanded slide; statement text is never altered.
type SlideValidation struct {
	Title      string            `json:"title"`
	Validation []ValidationPoint `json:"validation"`
}

// SlideContentItem is one final, optionally styled statement.
type SlideContentItem struct {
	Statement  string           `json:"statement"`
	Status     ValidationStatus `json:"status"`
	DesignHint string           `json:"design_hint,omitempty"`
}

// ContentSlide is one slide of the final, export-ready deck.
type ContentSlide struct {
	Title   string             `json:"title"`
	Content []SlideContentItem `json:"content"`
}

// DeckState is the single aggregate threaded through all pipeline stages.
// It is exclusively owned by one generation run. Each stage populates only
// the field it owns and must not mutate fields set by earlier stages.
type DeckState struct {
	// RunID uniquely identifies this generation run.
	RunID string

	// Topic is the presentation subject.
	Topic string

	// SlideTarget is the requested number of slides (best-effort).
	SlideTarget int

	// Context is optional free-text background supplied by the caller.
	Context string

	// Outline is set by the outline stage.
	Outline *Outline

	// ExpandedContent is set by the expand stage, one entry per outline slide.
	ExpandedContent []ExpandedSlide

	// ValidationResults is set by the review stage, one entry per expanded slide.
	ValidationResults []SlideValidation

	// FinalSlides is set by the optional optimize stage.
	FinalSlides []ContentSlide

	// ExportStatus is "success" or "failed" once the export stage ran.
	ExportStatus string

	// OutputFile is the path of the rendered artifact on success.
	OutputFile string
}

// Phase labels derivable from a DeckState.
const (
	PhaseOutlining  = "Creating outline..."
	PhaseExpanding  = "Expanding content..."
	PhaseReviewing  = "Reviewing content..."
	PhaseOptimizing = "Optimizing format..."
	PhaseExporting  = "Exporting..."
	PhaseComplete   = "Complete"
	PhaseFailed     = "Export failed"
)

// Phase derives a human-readable progress label purely from which fields
// of the state are populated. It is a pure function, not a stored field.
func (s *DeckState) Phase() string {
	switch {
	case s.ExportStatus == "success":
		return PhaseComplete
	case s.ExportStatus != "":
		return PhaseFailed
	case s.FinalSlides != nil:
		return PhaseExporting
	case s.ValidationResults != nil:
		return PhaseOptimizing
	case s.ExpandedContent != nil:
		return PhaseReviewing
	case s.Outline != nil:
		return PhaseExpanding
	default:
		return PhaseOutlining
	}
}

// SlideTitles returns the ordered slide titles of the outline,
// or nil when no outline has been produced yet.
func (s *DeckState) SlideTitles() []string {
	if s.Outline == nil {
		return nil
	}
	titles := make([]string, len(s.Outline.Slides))
	for i, slide := range s.Outline.Slides {
		titles[i] = slide.Title
	}
	return titles
}
