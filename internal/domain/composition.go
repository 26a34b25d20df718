package domain

// Grade is the five-valued classification of a garment's main fiber content
type Grade string

const (
	GradeNatural       Grade = "Natural"
	GradeSynthetic     Grade = "Synthetic"
	GradeSemiSynthetic Grade = "Semi-Synthetic"
	GradeMixed         Grade = "Mixed"
	GradeUnknown       Grade = "Unknown"
)

// Grades lists every allowed grade in display order
var Grades = []Grade{GradeNatural, GradeSynthetic, GradeSemiSynthetic, GradeMixed, GradeUnknown}

// IsValid reports whether g is one of the enumerated grades
func (g Grade) IsValid() bool {
	for _, allowed := range Grades {
		if g == allowed {
			return true
		}
	}
	return false
}

// FiberEntry is a named textile material with its mass percentage
type FiberEntry struct {
	Name       string  `json:"name" bson:"name"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}

// OtherSection is an auxiliary labeled section (interlining, padding, ...).
// It is display-only and never persisted.
type OtherSection struct {
	Label  string       `json:"label"`
	Fibers []FiberEntry `json:"fibers"`
}

// CompositionRecord is the structured result of an extraction.
// A nil Lining, Trim or Other means the section was absent.
type CompositionRecord struct {
	Fibers           []FiberEntry   `json:"fibers"`
	Lining           []FiberEntry   `json:"lining"`
	Trim             []FiberEntry   `json:"trim"`
	Other            []OtherSection `json:"other"`
	CompositionGrade Grade          `json:"composition_grade"`
}

// ScoredTextBlock is a candidate text block and its composition score
type ScoredTextBlock struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// ExtractionRequest is the pair sent to the extraction provider
type ExtractionRequest struct {
	Instruction string
	UserText    string
}

// AnalysisResult is the composition plus the caller's remaining quota
type AnalysisResult struct {
	CompositionRecord
	ScansRemaining   int    `json:"scans_remaining"`
	SubscriptionTier string `json:"subscription_tier"`
	Cached           bool   `json:"-"`
}
