package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sana-a-khan/fabrix/internal/domain"
)

// Section is the typed bucket a labeled composition statement belongs to
type Section int

const (
	SectionOther Section = iota
	SectionMain
	SectionLining
	SectionTrim
)

func (s Section) String() string {
	switch s {
	case SectionMain:
		return "fibers"
	case SectionLining:
		return "lining"
	case SectionTrim:
		return "trim"
	default:
		return "other"
	}
}

// Label patterns, checked lining/trim/other before main so "Ribbed Trim" or
// "Lining Fabric" do not land in the main bucket.
var (
	liningLabel = regexp.MustCompile(`(?i)\blining\b`)
	trimLabel   = regexp.MustCompile(`(?i)\b(trim|ribbed trim|cuffs?|collar|binding|rib|ribbing)\b`)
	otherLabel  = regexp.MustCompile(`(?i)\b(interlining|interfacing|padding|fill|filling|insulation)\b`)
	mainLabel   = regexp.MustCompile(`(?i)\b(content|shell|body|fabric|main|outer)\b`)
)

// ClassifySectionLabel maps a section label to its bucket
func ClassifySectionLabel(label string) Section {
	switch {
	case otherLabel.MatchString(label):
		return SectionOther
	case liningLabel.MatchString(label):
		return SectionLining
	case trimLabel.MatchString(label):
		return SectionTrim
	case mainLabel.MatchString(label):
		return SectionMain
	default:
		return SectionOther
	}
}

// SectionClassifier turns a parsed extraction into a record that satisfies the
// section and grading invariants regardless of how the provider behaved
type SectionClassifier struct {
	logger zerolog.Logger
}

// NewSectionClassifier creates a new section classifier
func NewSectionClassifier(logger zerolog.Logger) *SectionClassifier {
	return &SectionClassifier{
		logger: logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify normalizes fiber names, re-buckets labeled auxiliary sections, removes
// duplicated entries and recomputes the grade from the main section.
func (c *SectionClassifier) Classify(record *domain.CompositionRecord) *domain.CompositionRecord {
	if record == nil {
		return &domain.CompositionRecord{Fibers: []domain.FiberEntry{}, CompositionGrade: domain.GradeUnknown}
	}

	out := &domain.CompositionRecord{
		Fibers: normalizeSection(record.Fibers),
		Lining: normalizeSection(record.Lining),
		Trim:   normalizeSection(record.Trim),
	}
	if out.Fibers == nil {
		out.Fibers = []domain.FiberEntry{}
	}

	// Step 1: move labeled auxiliary sections into empty primary buckets
	for _, section := range record.Other {
		fibers := normalizeSection(section.Fibers)
		if len(fibers) == 0 {
			continue
		}

		switch ClassifySectionLabel(section.Label) {
		case SectionMain:
			if len(out.Fibers) == 0 {
				out.Fibers = fibers
				continue
			}
		case SectionLining:
			if len(out.Lining) == 0 {
				out.Lining = fibers
				continue
			}
		case SectionTrim:
			if len(out.Trim) == 0 {
				out.Trim = fibers
				continue
			}
		}
		out.Other = append(out.Other, domain.OtherSection{
			Label:  strings.TrimSpace(section.Label),
			Fibers: fibers,
		})
	}

	// Step 2: a secondary section copied into the main array is removed from it
	for _, secondary := range [][]domain.FiberEntry{out.Lining, out.Trim} {
		if stripped, ok := removeRun(out.Fibers, secondary); ok {
			c.logger.Debug().
				Int("removed", len(secondary)).
				Msg("secondary section duplicated into main fibers")
			out.Fibers = stripped
		}
	}

	// Step 3: the grade is a function of the main section only
	out.CompositionGrade = GradeFibers(out.Fibers)
	if record.CompositionGrade != "" && record.CompositionGrade != out.CompositionGrade {
		c.logger.Debug().
			Str("provider_grade", string(record.CompositionGrade)).
			Str("grade", string(out.CompositionGrade)).
			Msg("provider grade overridden")
	}

	return out
}

// normalizeSection canonicalizes names and drops exact duplicate entries.
// A nil section stays nil.
func normalizeSection(fibers []domain.FiberEntry) []domain.FiberEntry {
	if fibers == nil {
		return nil
	}

	out := make([]domain.FiberEntry, 0, len(fibers))
	seen := make(map[domain.FiberEntry]bool, len(fibers))
	for _, f := range fibers {
		entry := domain.FiberEntry{
			Name:       NormalizeFiberName(f.Name),
			Percentage: f.Percentage,
		}
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	return out
}

// removeRun removes the first contiguous occurrence of run from fibers.
// It refuses when nothing would be left, since then the main section is the run itself.
func removeRun(fibers, run []domain.FiberEntry) ([]domain.FiberEntry, bool) {
	if len(run) == 0 || len(run) >= len(fibers) {
		return fibers, false
	}

	for start := 0; start+len(run) <= len(fibers); start++ {
		match := true
		for i := range run {
			if fibers[start+i] != run[i] {
				match = false
				break
			}
		}
		if !match {
			continue
		}

		out := make([]domain.FiberEntry, 0, len(fibers)-len(run))
		out = append(out, fibers[:start]...)
		out = append(out, fibers[start+len(run):]...)
		return out, true
	}
	return fibers, false
}
