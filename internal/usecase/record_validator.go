package usecase

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

// Stored field limits, in characters
const (
	MaxTitleLength   = 500
	MaxBrandLength   = 100
	MaxRawTextLength = 20000
)

// allowedURLSchemes mirrors the protocols a product page can be served over
var allowedURLSchemes = map[string]bool{"http": true, "https": true, "ftp": true}

// validate is safe for concurrent use and caches struct metadata
var validate = validator.New()

// htmlEscaper escapes the characters that are unsafe in HTML text and attributes
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// ValidateProduct returns every problem found in a product record, in check order.
// An empty result means the record can be stored.
func ValidateProduct(p *domain.ProductRecord) []string {
	return validateProduct(p, nil)
}

// ValidateProductInput validates a decoded body, reporting wrong-typed sections
// in their place in the check order
func ValidateProductInput(in *ProductInput) []string {
	if in == nil {
		return validateProduct(nil, nil)
	}
	return validateProduct(in.Record, in.SectionProblems)
}

func validateProduct(p *domain.ProductRecord, sectionProblems map[string]string) []string {
	if p == nil {
		return []string{"Invalid or missing URL", "Invalid or missing title", "Invalid or missing brand",
			"Invalid composition_grade", "fibers must be an array"}
	}

	var problems []string

	if !isValidProductURL(p.URL) {
		problems = append(problems, "Invalid or missing URL")
	}

	if strings.TrimSpace(p.Title) == "" {
		problems = append(problems, "Invalid or missing title")
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		problems = append(problems, "Title too long (max 500 characters)")
	}

	if strings.TrimSpace(p.Brand) == "" {
		problems = append(problems, "Invalid or missing brand")
	}
	if utf8.RuneCountInString(p.Brand) > MaxBrandLength {
		problems = append(problems, "Brand too long (max 100 characters)")
	}

	if !p.CompositionGrade.IsValid() {
		problems = append(problems, "Invalid composition_grade")
	}

	if p.Fibers == nil {
		problems = append(problems, "fibers must be an array")
	} else {
		problems = append(problems, validateFiberEntries("fibers", p.Fibers)...)
	}

	// Lining and trim may be absent
	for _, section := range []struct {
		field   string
		entries []domain.FiberEntry
	}{{"lining", p.Lining}, {"trim", p.Trim}} {
		if msg, ok := sectionProblems[section.field]; ok {
			problems = append(problems, msg)
			continue
		}
		problems = append(problems, validateFiberEntries(section.field, section.entries)...)
	}

	return problems
}

// CheckProduct wraps ValidateProduct problems in a *domain.ValidationError
func CheckProduct(p *domain.ProductRecord) error {
	return problemsError(ValidateProduct(p))
}

func problemsError(problems []string) error {
	if len(problems) > 0 {
		return &domain.ValidationError{Problems: problems}
	}
	return nil
}

func validateFiberEntries(field string, entries []domain.FiberEntry) []string {
	var problems []string
	for i, f := range entries {
		if strings.TrimSpace(f.Name) == "" {
			problems = append(problems, fmt.Sprintf("%s[%d]: fiber name must be a non-empty string", field, i))
		}
		switch {
		case math.IsNaN(f.Percentage) || math.IsInf(f.Percentage, 0):
			problems = append(problems, fmt.Sprintf("%s[%d]: percentage must be a valid number", field, i))
		case f.Percentage < 0:
			problems = append(problems, fmt.Sprintf("%s[%d]: percentage cannot be negative", field, i))
		case f.Percentage > 100:
			problems = append(problems, fmt.Sprintf("%s[%d]: percentage cannot exceed 100", field, i))
		}
	}
	return problems
}

// isValidProductURL requires an absolute URL with an explicit scheme and host
func isValidProductURL(raw string) bool {
	if err := validate.Var(raw, "required,url"); err != nil {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return allowedURLSchemes[strings.ToLower(u.Scheme)] && u.Hostname() != ""
}

// SanitizeProduct returns a copy ready for storage: title and brand trimmed,
// HTML-escaped and truncated, raw text truncated. Composition fields are kept as is.
func SanitizeProduct(p *domain.ProductRecord) *domain.ProductRecord {
	return &domain.ProductRecord{
		URL:              p.URL,
		Title:            truncateRunes(htmlEscaper.Replace(strings.TrimSpace(p.Title)), MaxTitleLength),
		Brand:            truncateRunes(htmlEscaper.Replace(strings.TrimSpace(p.Brand)), MaxBrandLength),
		CompositionGrade: p.CompositionGrade,
		Fibers:           p.Fibers,
		Lining:           p.Lining,
		Trim:             p.Trim,
		RawText:          truncateRunes(p.RawText, MaxRawTextLength),
		CheckCount:       p.CheckCount,
	}
}
