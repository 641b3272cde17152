// Package plan resolves a movement-analysis classification into a
// body-region severity map and a matched exercise prescription list.
// All lookup tables are loaded once from embedded data at package init
// and are read-only afterwards, so every function here is safe for
// concurrent callers.
package plan

import "strings"

// ActivityType is the broad movement-assessment category. It selects which
// classification taxonomy and exercise library apply.
type ActivityType string

const (
	ActivityGait          ActivityType = "gait"
	ActivityStretching    ActivityType = "stretching"
	ActivityBalance       ActivityType = "balance"
	ActivityStrength      ActivityType = "strength"
	ActivityRangeOfMotion ActivityType = "range_of_motion"
)

// ActivityTypes lists every recognized activity type.
var ActivityTypes = []ActivityType{
	ActivityGait,
	ActivityStretching,
	ActivityBalance,
	ActivityStrength,
	ActivityRangeOfMotion,
}

// GeneralLabel is the table-level catch-all entry every activity defines in
// both the region table and the exercise table.
const GeneralLabel = "general"

// taxonomy is the single source of truth for valid (activity, label) pairs.
// Both static tables are checked against it in tests; editing one table
// without the other is a data-authoring defect, not a runtime condition.
var taxonomy = map[ActivityType][]string{
	ActivityGait: {
		"normal",
		"antalgic",
		"trendelenburg",
		"steppage",
		"parkinsonian",
		"hemiplegic",
		"scissors",
	},
	ActivityStretching: {
		"hip_tightness",
		"hamstring_tightness",
		"shoulder_tightness",
	},
	ActivityBalance: {
		"single_leg_deficit",
		"weight_shift_deficit",
		"dynamic_balance_deficit",
	},
	ActivityStrength: {
		"knee_valgus",
		"poor_hip_hinge",
		"core_weakness",
	},
	ActivityRangeOfMotion: {
		"shoulder_limitation",
		"knee_limitation",
		"ankle_limitation",
	},
}

// formLabels are exercise-form findings carried only by the strength region
// table. They have no dedicated prescriptions; the exercise resolver falls
// back to strength.general for them.
var formLabels = []string{
	"good_form",
	"alignment_issues",
	"limited_rom",
	"compensation",
	"wrong_exercise",
}

// Labels returns the canonical classification labels for an activity type,
// not including the general catch-all.
func Labels(activity ActivityType) []string {
	out := make([]string, len(taxonomy[activity]))
	copy(out, taxonomy[activity])
	return out
}

// NormalizeLabel canonicalizes a classification label for table lookup:
// lower case with internal whitespace collapsed to single underscores, so
// "Hip Tightness" and "hip_tightness" resolve identically.
func NormalizeLabel(label string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(label)))
	return strings.Join(fields, "_")
}

// parseActivity maps a raw activity string onto the closed enum. The second
// return reports whether the value was recognized; callers fall back to the
// gait tables when it was not.
func parseActivity(raw string) (ActivityType, bool) {
	switch ActivityType(NormalizeLabel(raw)) {
	case ActivityGait:
		return ActivityGait, true
	case ActivityStretching:
		return ActivityStretching, true
	case ActivityBalance:
		return ActivityBalance, true
	case ActivityStrength:
		return ActivityStrength, true
	case ActivityRangeOfMotion:
		return ActivityRangeOfMotion, true
	default:
		return ActivityGait, false
	}
}
