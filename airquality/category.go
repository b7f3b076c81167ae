package airquality

import (
	"strings"

	"github.com/pkg/errors"
)

// Category is ordered so that a better air quality compares greater.
type Category int

const (
	Bad Category = iota
	Poor
	Moderate
	Good
	Excellent
)

var categoryNames = [...]string{
	Bad:       "Bad",
	Poor:      "Poor",
	Moderate:  "Moderate",
	Good:      "Good",
	Excellent: "Excellent",
}

var categorySuggestions = [...]string{
	Bad:       "Open windows; avoid prolonged stay.",
	Poor:      "Ventilate the room.",
	Moderate:  "Ventilate or reduce sources.",
	Good:      "Minor improvement possible.",
	Excellent: "Air quality is good.",
}

// Categories lists every category from worst to best.
func Categories() []Category {
	return []Category{Bad, Poor, Moderate, Good, Excellent}
}

func (c Category) valid() bool {
	return c >= Bad && c <= Excellent
}

func (c Category) String() string {
	if !c.valid() {
		return "Unknown"
	}
	return categoryNames[c]
}

// Suggestion is a short actionable tip for the category.
func (c Category) Suggestion() string {
	if !c.valid() {
		return ""
	}
	return categorySuggestions[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, errors.Errorf("unknown air quality category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for _, candidate := range Categories() {
		if strings.EqualFold(candidate.String(), string(text)) {
			*c = candidate
			return nil
		}
	}
	return errors.Errorf("unknown air quality category %q", text)
}

// Classify maps a score onto its category. Each cut point belongs to the
// band above it: a score equal to cuts.Excellent is Excellent.
func Classify(score int, cuts CategoryCuts) Category {
	switch {
	case score >= cuts.Excellent:
		return Excellent
	case score >= cuts.Good:
		return Good
	case score >= cuts.Moderate:
		return Moderate
	case score >= cuts.Poor:
		return Poor
	default:
		return Bad
	}
}
