package plan

// Result is the assembled treatment-plan payload for one analysis: the
// severity-tiered region map and the ordered exercise prescriptions.
type Result struct {
	Regions   BodyRegionMapping      `json:"body_regions"`
	Exercises []ExercisePrescription `json:"exercises"`
}

// Assemble resolves a classification into its full plan. Severity is the
// upstream 0-10 score; it is not range-checked. Two augmentation branches
// can fold text-mined positive regions into the good tier:
//
//  1. If the base mapping flags no high or medium regions, detected regions
//     are added outright.
//  2. For severity <= 3, detected regions are added only when they are not
//     already in a problem tier.
//
// The branches are independent and both may apply; the union is idempotent
// so running the miner twice never double-counts. With no observations the
// base mapping passes through untouched.
func Assemble(activity, label string, severity int, observations []string) Result {
	regions := ResolveBodyRegions(activity, label)

	hasProblems := len(regions.High) > 0 || len(regions.Medium) > 0
	if !hasProblems && len(observations) > 0 {
		detected := DetectPositiveRegions(observations)
		if len(detected) > 0 {
			regions.Good = mergeGood(regions.Good, detected)
		}
	}

	if severity <= 3 && len(observations) > 0 {
		detected := DetectPositiveRegions(observations)
		problems := regions.ProblemRegions()
		safe := make(RegionSet)
		for r := range detected {
			if !problems.Has(r) {
				safe.Add(r)
			}
		}
		if len(safe) > 0 {
			regions.Good = mergeGood(regions.Good, safe)
		}
	}

	return Result{Regions: regions, Exercises: ResolveExercises(activity, label)}
}
