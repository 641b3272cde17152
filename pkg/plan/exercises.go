package plan

// ExercisePrescription is one prescribed exercise as displayed to the
// patient. Entries come only from the static tables and are never edited at
// runtime.
type ExercisePrescription struct {
	Name         string   `yaml:"name" json:"name"`
	Target       string   `yaml:"target" json:"target"`
	Instructions []string `yaml:"instructions" json:"instructions"`
	SetsReps     string   `yaml:"sets_reps" json:"sets_reps"`
	Frequency    string   `yaml:"frequency" json:"frequency"`
	FormTips     []string `yaml:"form_tips" json:"form_tips"`
}

// ResolveExercises returns the prescription list for a classification, in
// table-declared progression order. An unrecognized label falls back to the
// activity's general entry; an unrecognized activity falls back to the gait
// table. The returned slice is a copy.
func ResolveExercises(activity, label string) []ExercisePrescription {
	act, _ := parseActivity(activity)
	table := exerciseTables[act]

	set, ok := table[NormalizeLabel(label)]
	if !ok {
		set = table[GeneralLabel]
	}
	out := make([]ExercisePrescription, len(set))
	copy(out, set)
	return out
}
