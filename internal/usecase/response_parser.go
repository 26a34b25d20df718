package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/titanous/json5"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

var codeFenceRegex = regexp.MustCompile("```(?:json|JSON)?")

// wireFiber is a fiber entry as the provider sends it. Pointers tell a missing
// field apart from a zero value.
type wireFiber struct {
	Name       *string  `json:"name"`
	Percentage *float64 `json:"percentage"`
}

type wireOther struct {
	Label  *string     `json:"label"`
	Fibers []wireFiber `json:"fibers"`
}

type wireRecord struct {
	Fibers           *[]wireFiber `json:"fibers"`
	Lining           []wireFiber  `json:"lining"`
	Trim             []wireFiber  `json:"trim"`
	Other            []wireOther  `json:"other"`
	CompositionGrade *string      `json:"composition_grade"`
}

// StripCodeFences removes markdown code fences around provider output
func StripCodeFences(raw string) string {
	return strings.TrimSpace(codeFenceRegex.ReplaceAllString(raw, ""))
}

// ParseExtraction turns raw provider output into a CompositionRecord.
// Every field is type-checked; anything that does not match the record shape
// fails with ErrMalformedExtraction.
func ParseExtraction(raw string) (*domain.CompositionRecord, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedExtraction)
	}

	data, err := canonicalJSON([]byte(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedExtraction, err)
	}

	var wire wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, fmt.Errorf("%w: %s has the wrong type", domain.ErrMalformedExtraction, typeErr.Field)
		}
		return nil, fmt.Errorf("%w: response is not a composition object", domain.ErrMalformedExtraction)
	}

	record, err := wire.toRecord()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedExtraction, err)
	}
	return record, nil
}

// canonicalJSON returns data unchanged when it is strict JSON, and otherwise
// re-encodes a lenient JSON5 reading of it (trailing commas, comments, single quotes)
func canonicalJSON(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}

	var loose any
	if err := json5.Unmarshal(data, &loose); err != nil {
		return nil, errors.New("response is not valid JSON")
	}

	out, err := json.Marshal(loose)
	if err != nil {
		return nil, errors.New("response contains non-finite numbers")
	}
	return out, nil
}

func (w wireRecord) toRecord() (*domain.CompositionRecord, error) {
	if w.Fibers == nil {
		return nil, errors.New("fibers must be an array")
	}

	record := &domain.CompositionRecord{}

	var err error
	if record.Fibers, err = convertFibers("fibers", *w.Fibers); err != nil {
		return nil, err
	}
	if record.Lining, err = convertFibers("lining", w.Lining); err != nil {
		return nil, err
	}
	if record.Trim, err = convertFibers("trim", w.Trim); err != nil {
		return nil, err
	}

	if w.Other != nil {
		record.Other = make([]domain.OtherSection, 0, len(w.Other))
		for i, section := range w.Other {
			if section.Label == nil {
				return nil, fmt.Errorf("other[%d]: label must be a string", i)
			}
			fibers, err := convertFibers(fmt.Sprintf("other[%d].fibers", i), section.Fibers)
			if err != nil {
				return nil, err
			}
			record.Other = append(record.Other, domain.OtherSection{Label: *section.Label, Fibers: fibers})
		}
	}

	if w.CompositionGrade != nil {
		record.CompositionGrade = domain.Grade(*w.CompositionGrade)
	}

	return record, nil
}

// convertFibers checks every entry has a name and a percentage. A nil slice stays nil.
func convertFibers(field string, in []wireFiber) ([]domain.FiberEntry, error) {
	if in == nil {
		return nil, nil
	}

	out := make([]domain.FiberEntry, 0, len(in))
	for i, f := range in {
		if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
			return nil, fmt.Errorf("%s[%d]: name must be a non-empty string", field, i)
		}
		if f.Percentage == nil {
			return nil, fmt.Errorf("%s[%d]: percentage must be a number", field, i)
		}
		out = append(out, domain.FiberEntry{Name: strings.TrimSpace(*f.Name), Percentage: *f.Percentage})
	}
	return out, nil
}
