package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

// productBody is a posted product with every field left raw, so a wrong-typed
// field becomes a validation problem instead of a decode failure
type productBody struct {
	URL              json.RawMessage `json:"url"`
	Title            json.RawMessage `json:"title"`
	Brand            json.RawMessage `json:"brand"`
	CompositionGrade json.RawMessage `json:"composition_grade"`
	Fibers           json.RawMessage `json:"fibers"`
	Lining           json.RawMessage `json:"lining"`
	Trim             json.RawMessage `json:"trim"`
	RawText          json.RawMessage `json:"raw_text"`
}

type fiberBody struct {
	Name       json.RawMessage `json:"name"`
	Percentage json.RawMessage `json:"percentage"`
}

// ProductInput is a decoded product body. SectionProblems holds the message for
// an optional section (lining, trim) that was neither null nor an array.
type ProductInput struct {
	Record          *domain.ProductRecord
	SectionProblems map[string]string
}

// DecodeProduct decodes a posted product one field at a time.
// Wrong-typed strings decode as empty, wrong-typed percentages as NaN and a
// non-array fibers as nil, so ValidateProductInput reports each of them.
// Only a body that is not a JSON object fails with ErrInvalidInput.
func DecodeProduct(data []byte) (*ProductInput, error) {
	var body productBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: request body must be a JSON object", domain.ErrInvalidInput)
	}

	in := &ProductInput{
		Record: &domain.ProductRecord{
			URL:              decodeString(body.URL),
			Title:            decodeString(body.Title),
			Brand:            decodeString(body.Brand),
			CompositionGrade: domain.Grade(decodeString(body.CompositionGrade)),
			RawText:          decodeString(body.RawText),
		},
		SectionProblems: map[string]string{},
	}

	in.Record.Fibers, _ = decodeFiberList(body.Fibers)

	var ok bool
	if in.Record.Lining, ok = decodeFiberList(body.Lining); !ok {
		in.SectionProblems["lining"] = "lining must be an array or null"
	}
	if in.Record.Trim, ok = decodeFiberList(body.Trim); !ok {
		in.SectionProblems["trim"] = "trim must be an array or null"
	}

	return in, nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) string {
	var s string
	if isJSONNull(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// decodeFiberList returns nil, true for an absent or null list and nil, false
// for anything that is not an array
func decodeFiberList(raw json.RawMessage) ([]domain.FiberEntry, bool) {
	if isJSONNull(raw) {
		return nil, true
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	entries := make([]domain.FiberEntry, 0, len(items))
	for _, item := range items {
		var fb fiberBody
		if err := json.Unmarshal(item, &fb); err != nil {
			entries = append(entries, domain.FiberEntry{Percentage: math.NaN()})
			continue
		}
		entries = append(entries, domain.FiberEntry{
			Name:       decodeString(fb.Name),
			Percentage: decodePercentage(fb.Percentage),
		})
	}
	return entries, true
}

// decodePercentage returns NaN for anything but a JSON number
func decodePercentage(raw json.RawMessage) float64 {
	var f float64
	if isJSONNull(raw) || json.Unmarshal(raw, &f) != nil {
		return math.NaN()
	}
	return f
}
