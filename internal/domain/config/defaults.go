package config

const (
	// KeyAppraisalRubric holds the weighted rubric used to compute the
	// final appraisal score. Weights must sum to 1.0.
	KeyAppraisalRubric = "appraisal_rubric"

	// KeyCPERequiredHours holds the annual continuing-education hours a
	// teacher must accumulate to be compliant.
	KeyCPERequiredHours = "cpe_required_hours"
)

const DefaultCPERequiredHours = 20.0

// defaults are seeded on first read of a known key that has no stored
// version yet.
var defaults = map[string]map[string]any{
	KeyAppraisalRubric: {
		"part2": 0.6,
		"part3": 0.2,
		"cpe":   0.2,
	},
	KeyCPERequiredHours: {
		"hours": DefaultCPERequiredHours,
	},
}

func DefaultValue(key string) (map[string]any, bool) {
	value, ok := defaults[key]
	if !ok {
		return nil, false
	}
	copied := make(map[string]any, len(value))
	for k, v := range value {
		copied[k] = v
	}
	return copied, true
}
