package usecase

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

// Candidate scoring weights
const (
	ScoreContentLabel     = 500
	ScoreCompositionLabel = 100
	ScorePerPercent       = 20
	ScoreCompleteSum      = 300
	PenaltyPartialSum     = -100
	PenaltyMarketing      = -150
	PenaltyMultiProduct   = -1000
	ScoreConcise          = 30
	PenaltyVerbose        = -20
)

// Candidate thresholds
const (
	CompleteSumMin   = 95
	CompleteSumMax   = 105
	PartialSumBelow  = 90
	ConciseBelow     = 300
	VerboseAbove     = 1000
	MaxBlockLength   = 2000
	MaxCandidates    = 3
	MaxCandidateText = 20000
	// multiProductHundreds is the largest number of "100%" mentions a single product block may hold
	multiProductHundreds = 2
)

// CandidateSeparator follows every selected block in the concatenated text
const CandidateSeparator = "\n\n---\n\n"

var fabricKeywords = []string{
	"composition", "material", "fabric", "care", "content", "shell", "lining",
	"polyester", "cotton", "wool", "nylon", "polyamide", "viscose", "elastane",
}

var marketingPhrases = []string{"made with", "sourced from", "premier"}

// Package-level compiled patterns
var (
	candidateLabelRegex   = regexp.MustCompile(`\b(content|composition|fabric|material)s?:`)
	compositionLabelRegex = regexp.MustCompile(`\b(composition|fabric|material)s?:`)
	percentValueRegex     = regexp.MustCompile(`(\d+)%`)
	signaturePairRegex    = regexp.MustCompile(`(?i)(\d+)%\s*([a-z\s]+)`)
)

// SelectionResult is the ranked output of the selector
type SelectionResult struct {
	Blocks []domain.ScoredTextBlock `json:"blocks"`
	Text   string                   `json:"text"`
}

// CandidateSelector ranks page text blocks by how likely they are the
// authoritative composition statement
type CandidateSelector struct {
	maxCandidates int
}

// NewCandidateSelector creates a selector returning at most MaxCandidates blocks
func NewCandidateSelector() *CandidateSelector {
	return &CandidateSelector{maxCandidates: MaxCandidates}
}

// Select scores blocks in discovery order, drops duplicates and non-positive
// scores, and returns the best blocks with their concatenated text.
func (s *CandidateSelector) Select(blocks []string) SelectionResult {
	seenText := make(map[string]bool)
	seenSignature := make(map[string]bool)
	scored := make([]domain.ScoredTextBlock, 0)

	for _, text := range blocks {
		if text == "" || seenText[text] {
			continue
		}
		if !IsCandidateBlock(text) || utf8.RuneCountInString(text) >= MaxBlockLength {
			continue
		}

		signature := CompositionSignature(text)
		if signature == "" || seenSignature[signature] {
			continue
		}

		score := ScoreBlock(text)
		if score <= 0 {
			continue
		}

		scored = append(scored, domain.ScoredTextBlock{Text: text, Score: score})
		seenText[text] = true
		seenSignature[signature] = true
	}

	// Stable keeps discovery order for equal scores
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > s.maxCandidates {
		scored = scored[:s.maxCandidates]
	}

	var sb strings.Builder
	for _, block := range scored {
		sb.WriteString(block.Text)
		sb.WriteString(CandidateSeparator)
	}

	return SelectionResult{
		Blocks: scored,
		Text:   truncateRunes(sb.String(), MaxCandidateText),
	}
}

// IsCandidateBlock reports whether a block mentions the fabric domain with a
// percentage, or carries a composition label followed by a percentage
func IsCandidateBlock(text string) bool {
	lower := strings.ToLower(text)
	hasPercent := strings.Contains(text, "%")

	if hasPercent && containsAny(lower, fabricKeywords) {
		return true
	}

	loc := candidateLabelRegex.FindStringIndex(lower)
	return loc != nil && strings.Contains(lower[loc[1]:], "%")
}

// ScoreBlock computes the heuristic score of a single block
func ScoreBlock(text string) int {
	score := 0
	lower := strings.ToLower(text)

	// The content label is the canonical composition field on most shops
	if strings.Contains(lower, "content:") && strings.Contains(text, "%") {
		score += ScoreContentLabel
	}
	if compositionLabelRegex.MatchString(lower) {
		score += ScoreCompositionLabel
	}

	score += strings.Count(text, "%") * ScorePerPercent

	if matches := percentValueRegex.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		total := 0
		for _, m := range matches {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			total += n
		}
		if total >= CompleteSumMin && total <= CompleteSumMax {
			score += ScoreCompleteSum
		}
		if total < PartialSumBelow {
			score += PenaltyPartialSum
		}
	}

	if containsAny(lower, marketingPhrases) {
		score += PenaltyMarketing
	}

	if strings.Count(text, "100%") > multiProductHundreds {
		score += PenaltyMultiProduct
	}

	length := utf8.RuneCountInString(text)
	if length < ConciseBelow {
		score += ScoreConcise
	}
	if length > VerboseAbove {
		score += PenaltyVerbose
	}

	return score
}

// CompositionSignature reduces a block to its sorted percentage/fiber pairs,
// so the same statement repeated in different containers compares equal
func CompositionSignature(text string) string {
	matches := signaturePairRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(matches))
	for _, m := range matches {
		pairs = append(pairs, strings.TrimSpace(strings.ToLower(m)))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// truncateRunes cuts s to at most limit characters without splitting a rune
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
