package usecase

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/sana-a-khan/fabrix/internal/domain"
)

// FiberCategory is the grading bucket of a base fiber
type FiberCategory int

const (
	CategoryUnrecognized FiberCategory = iota
	CategoryNatural
	CategorySynthetic     // petroleum-based
	CategorySemiSynthetic // plant-based regenerated cellulose
	CategoryElastic       // other synthetics, not graded on their own
)

func (c FiberCategory) String() string {
	switch c {
	case CategoryNatural:
		return "natural"
	case CategorySynthetic:
		return "synthetic"
	case CategorySemiSynthetic:
		return "semi-synthetic"
	case CategoryElastic:
		return "elastic"
	default:
		return "unrecognized"
	}
}

// Grading thresholds, in percent of the main section's total mass
const (
	MajorityThreshold = 50.0
	// ElasticAllowance is the largest elastane/spandex share that still lets a
	// natural-only main section grade Natural.
	ElasticAllowance = 10.0
	// FuzzyMatchThreshold is the minimum Jaro-Winkler similarity for a misspelled fiber name
	FuzzyMatchThreshold = 0.92
	// FuzzyMinLength is the shortest word compared by edit distance. Shorter words
	// ("lines", "silky") only match a fiber name with two adjacent letters swapped.
	FuzzyMinLength = 6
	// FuzzyMaxEdits is the largest Damerau-Levenshtein distance of a misspelling
	FuzzyMaxEdits = 2
	// Suffix markers, cosmetic only
	SuffixRecycled = "(Recycled)"
	SuffixOrganic  = "(Organic)"
)

// fiberTaxonomy maps every known base fiber to its category
var fiberTaxonomy = map[string]FiberCategory{
	// Natural
	"cotton": CategoryNatural, "wool": CategoryNatural, "silk": CategoryNatural,
	"linen": CategoryNatural, "cashmere": CategoryNatural, "alpaca": CategoryNatural,
	"mohair": CategoryNatural, "hemp": CategoryNatural, "ramie": CategoryNatural,
	"jute": CategoryNatural, "merino": CategoryNatural,
	// Petroleum-based synthetics
	"polyester": CategorySynthetic, "nylon": CategorySynthetic,
	"polyamide": CategorySynthetic, "acrylic": CategorySynthetic,
	// Plant-based semi-synthetics
	"viscose": CategorySemiSynthetic, "rayon": CategorySemiSynthetic,
	"modal": CategorySemiSynthetic, "lyocell": CategorySemiSynthetic,
	"tencel": CategorySemiSynthetic, "cupro": CategorySemiSynthetic,
	"bamboo": CategorySemiSynthetic,
	// Other synthetics
	"spandex": CategoryElastic, "elastane": CategoryElastic, "lycra": CategoryElastic,
}

// taxonomyNames is fiberTaxonomy's keys, sorted for deterministic fuzzy matching
var taxonomyNames = func() []string {
	names := make([]string, 0, len(fiberTaxonomy))
	for name := range fiberTaxonomy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// recycledBrand is a trade name that implies a recycled fiber
type recycledBrand struct {
	pattern *regexp.Regexp
	base    string
}

// recycledBrands is ordered longest first so "lenzing ecovero" wins over "ecovero"
var recycledBrands = []recycledBrand{
	{regexp.MustCompile(`\blenzing\s+ecovero\b`), "viscose"},
	{regexp.MustCompile(`\becovero\b`), "viscose"},
	{regexp.MustCompile(`\brepreve\b`), "polyester"},
	{regexp.MustCompile(`\brpet\b`), "polyester"},
	{regexp.MustCompile(`\beconyl\b`), "nylon"},
	{regexp.MustCompile(`\btencel\b`), "lyocell"},
}

var (
	recycledMarker    = regexp.MustCompile(`\b(recycled|reclaimed)\b`)
	organicMarker     = regexp.MustCompile(`\borganic\b`)
	suffixPattern     = regexp.MustCompile(`(?i)\s*\((recycled|organic)\)`)
	fiberSpacePattern = regexp.MustCompile(`\s+`)
	fiberTokenPattern = regexp.MustCompile(`[a-z]+`)
)

// fiberName is a parsed fiber label
type fiberName struct {
	base     string
	recycled bool
	organic  bool
}

// parseFiberName splits a raw fiber label into its base name and sustainability markers
func parseFiberName(raw string) fiberName {
	var fn fiberName

	name := strings.ToLower(strings.TrimSpace(raw))
	for _, m := range suffixPattern.FindAllStringSubmatch(name, -1) {
		switch m[1] {
		case "recycled":
			fn.recycled = true
		case "organic":
			fn.organic = true
		}
	}
	name = suffixPattern.ReplaceAllString(name, " ")

	for _, brand := range recycledBrands {
		if brand.pattern.MatchString(name) {
			fn.recycled = true
			name = brand.pattern.ReplaceAllString(name, " ")
			if strings.TrimSpace(name) == "" {
				name = brand.base
			}
		}
	}

	if recycledMarker.MatchString(name) {
		fn.recycled = true
		name = recycledMarker.ReplaceAllString(name, " ")
	}
	if organicMarker.MatchString(name) {
		fn.organic = true
		name = organicMarker.ReplaceAllString(name, " ")
	}

	fn.base = strings.TrimSpace(fiberSpacePattern.ReplaceAllString(name, " "))
	return fn
}

// NormalizeFiberName returns the canonical display name of a fiber:
// lowercase base name plus a "(Recycled)" or "(Organic)" suffix.
// Recycled wins when both markers are present.
func NormalizeFiberName(raw string) string {
	fn := parseFiberName(raw)
	if fn.base == "" {
		return strings.TrimSpace(raw)
	}

	switch {
	case fn.recycled:
		return fn.base + " " + SuffixRecycled
	case fn.organic:
		return fn.base + " " + SuffixOrganic
	default:
		return fn.base
	}
}

// BaseFiberName strips sustainability markers and returns the lowercase base name
func BaseFiberName(raw string) string {
	return parseFiberName(raw).base
}

// ClassifyFiber returns the grading category of a fiber name.
// Lookup order: exact base name, any known token inside the name, fuzzy match.
func ClassifyFiber(raw string) FiberCategory {
	base := BaseFiberName(raw)
	if base == "" {
		return CategoryUnrecognized
	}

	if category, ok := fiberTaxonomy[base]; ok {
		return category
	}

	// "merino wool", "stretch cotton", "polyamide/nylon"
	for _, token := range fiberTokenPattern.FindAllString(base, -1) {
		if category, ok := fiberTaxonomy[token]; ok {
			return category
		}
	}

	return fuzzyClassify(base)
}

// fuzzyClassify matches misspellings like "polyster" or "visocse"
func fuzzyClassify(base string) FiberCategory {
	best := 0.0
	bestCategory := CategoryUnrecognized

	for _, token := range fiberTokenPattern.FindAllString(base, -1) {
		if len(token) < 4 {
			continue
		}
		for _, name := range taxonomyNames {
			if !plausibleMisspelling(token, name) {
				continue
			}
			similarity := matchr.JaroWinkler(token, name, false)
			if similarity > best {
				best = similarity
				bestCategory = fiberTaxonomy[name]
			}
		}
	}

	if best >= FuzzyMatchThreshold {
		return bestCategory
	}
	return CategoryUnrecognized
}

// plausibleMisspelling keeps the similarity ranking to words a typo away from name
func plausibleMisspelling(token, name string) bool {
	if len(token) < FuzzyMinLength || len(name) < FuzzyMinLength {
		return isAdjacentSwap(token, name)
	}
	return matchr.DamerauLevenshtein(token, name) <= FuzzyMaxEdits
}

// isAdjacentSwap reports whether a becomes b by swapping one pair of neighbouring letters
func isAdjacentSwap(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if i+1 >= len(a) || a[i] != b[i+1] || a[i+1] != b[i] {
		return false
	}
	return a[i+2:] == b[i+2:]
}

// CategoryShares returns each category's share of the total percentage mass, in percent.
// Entries with non-positive or non-finite percentages carry no mass.
func CategoryShares(fibers []domain.FiberEntry) (map[FiberCategory]float64, float64) {
	mass := make(map[FiberCategory]float64)
	total := 0.0

	// Sum in a fixed order so the result does not depend on input order
	entries := make([]domain.FiberEntry, len(fibers))
	copy(entries, fibers)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage < entries[j].Percentage
		}
		return entries[i].Name < entries[j].Name
	})

	for _, f := range entries {
		if f.Percentage <= 0 || math.IsNaN(f.Percentage) || math.IsInf(f.Percentage, 0) {
			continue
		}
		mass[ClassifyFiber(f.Name)] += f.Percentage
		total += f.Percentage
	}

	if total == 0 {
		return map[FiberCategory]float64{}, 0
	}

	shares := make(map[FiberCategory]float64, len(mass))
	for category, m := range mass {
		shares[category] = roundShare(m / total * 100)
	}
	return shares, total
}

// roundShare removes float noise so ties and thresholds compare exactly
func roundShare(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// GradeFibers assigns a composition grade from the main section only.
//
// Rules, in order:
//   - no percentage-bearing fibers: Unknown
//   - only natural fibers, plus at most ElasticAllowance of elastane/spandex/lycra: Natural
//   - the largest of natural, semi-synthetic and synthetic shares is tied: Mixed
//   - semi-synthetic or synthetic share >= 50% and largest: that grade
//   - no natural, semi-synthetic or synthetic mass but some elastic mass: Synthetic
//   - only unrecognized fibers: Unknown
//   - otherwise: Mixed
//
// Unknown therefore also covers a main section whose fibers all fall outside the
// taxonomy (for example "acetate 100"), not just one without percentages.
func GradeFibers(fibers []domain.FiberEntry) domain.Grade {
	shares, total := CategoryShares(fibers)
	if total == 0 {
		return domain.GradeUnknown
	}

	natural := shares[CategoryNatural]
	synthetic := shares[CategorySynthetic]
	semi := shares[CategorySemiSynthetic]
	elastic := shares[CategoryElastic]
	unrecognized := shares[CategoryUnrecognized]

	if natural > 0 && synthetic == 0 && semi == 0 && unrecognized == 0 && elastic <= ElasticAllowance {
		return domain.GradeNatural
	}

	graded := natural + synthetic + semi
	if graded == 0 {
		if elastic > 0 {
			return domain.GradeSynthetic
		}
		return domain.GradeUnknown
	}

	top := math.Max(natural, math.Max(synthetic, semi))
	leaders := 0
	for _, share := range []float64{natural, synthetic, semi} {
		if share == top {
			leaders++
		}
	}
	if leaders > 1 {
		return domain.GradeMixed
	}

	switch {
	case semi >= MajorityThreshold && semi == top:
		return domain.GradeSemiSynthetic
	case synthetic >= MajorityThreshold && synthetic == top:
		return domain.GradeSynthetic
	}
	return domain.GradeMixed
}
