// Package scoring computes weighted appraisal scores against a rubric.
// It is pure: no persistence, no side effects.
package scoring

import (
	"math"

	"teaps/internal/domain/fault"
)

// weightEpsilon tolerates float drift when checking that weights sum to 1.0.
const weightEpsilon = 1e-6

// Rubric maps category names to weights. Weights must sum to 1.0.
type Rubric map[string]float64

func ValidateRubric(r Rubric) error {
	if len(r) == 0 {
		return fault.Invalid("rubric", "rubric has no categories")
	}
	sum := 0.0
	for name, weight := range r {
		if name == "" {
			return fault.Invalid("rubric", "category name must not be empty")
		}
		if weight < 0 || weight > 1 {
			return fault.Invalid("rubric."+name, "weight must be between 0 and 1")
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return fault.Invalid("rubric", "weights must sum to 1.0")
	}
	return nil
}

func ValidateScore(category string, score float64) error {
	if score < 0 || score > 100 {
		return fault.Invalid(category, "score must be between 0 and 100")
	}
	return nil
}

// Compute returns the weighted final score rounded to one decimal place.
// Categories absent from raw count as zero; categories absent from the
// rubric are ignored.
func Compute(rubric Rubric, raw map[string]float64) (float64, error) {
	if err := ValidateRubric(rubric); err != nil {
		return 0, err
	}
	for category, score := range raw {
		if err := ValidateScore(category, score); err != nil {
			return 0, err
		}
	}

	total := 0.0
	for category, weight := range rubric {
		total += raw[category] * weight
	}
	return math.Round(total*10) / 10, nil
}

// ParseRubric converts a stored configuration value into a Rubric.
// Configuration values arrive as decoded JSON, so numbers are float64.
func ParseRubric(value map[string]any) (Rubric, error) {
	rubric := make(Rubric, len(value))
	for name, v := range value {
		weight, ok := v.(float64)
		if !ok {
			return nil, fault.Invalid("rubric."+name, "weight must be a number")
		}
		rubric[name] = weight
	}
	if err := ValidateRubric(rubric); err != nil {
		return nil, err
	}
	return rubric, nil
}
