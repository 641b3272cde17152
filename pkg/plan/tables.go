package plan

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/regions.yaml
var regionsYAML []byte

//go:embed data/exercises.yaml
var exercisesYAML []byte

// regionTables and exerciseTables hold the static lookup data for every
// activity type. They are populated once at package init and never written
// again.
var (
	regionTables   map[ActivityType]map[string]BodyRegionMapping
	exerciseTables map[ActivityType]map[string][]ExercisePrescription
)

func init() {
	var err error
	regionTables, err = loadRegionTables(regionsYAML)
	if err != nil {
		panic(fmt.Sprintf("plan: embedded region table is invalid: %v", err))
	}
	exerciseTables, err = loadExerciseTables(exercisesYAML)
	if err != nil {
		panic(fmt.Sprintf("plan: embedded exercise table is invalid: %v", err))
	}
}

func loadRegionTables(raw []byte) (map[ActivityType]map[string]BodyRegionMapping, error) {
	var parsed map[ActivityType]map[string]BodyRegionMapping
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	for _, activity := range ActivityTypes {
		labels, ok := parsed[activity]
		if !ok {
			return nil, fmt.Errorf("regions: missing activity %q", activity)
		}
		if _, ok := labels[GeneralLabel]; !ok {
			return nil, fmt.Errorf("regions: activity %q has no %q entry", activity, GeneralLabel)
		}
		for label, mapping := range labels {
			for _, tier := range [][]BodyRegion{mapping.High, mapping.Medium, mapping.Low, mapping.Good} {
				for _, r := range tier {
					if !validRegion(r) {
						return nil, fmt.Errorf("regions: %s/%s references unknown region %q", activity, label, r)
					}
				}
			}
		}
	}
	return parsed, nil
}

func loadExerciseTables(raw []byte) (map[ActivityType]map[string][]ExercisePrescription, error) {
	var parsed map[ActivityType]map[string][]ExercisePrescription
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse exercises: %w", err)
	}
	for _, activity := range ActivityTypes {
		labels, ok := parsed[activity]
		if !ok {
			return nil, fmt.Errorf("exercises: missing activity %q", activity)
		}
		if len(labels[GeneralLabel]) == 0 {
			return nil, fmt.Errorf("exercises: activity %q has an empty %q entry", activity, GeneralLabel)
		}
		for label, set := range labels {
			for i, ex := range set {
				if ex.Name == "" {
					return nil, fmt.Errorf("exercises: %s/%s entry %d has no name", activity, label, i)
				}
			}
		}
	}
	return parsed, nil
}

func validRegion(r BodyRegion) bool {
	for _, known := range BodyRegions {
		if r == known {
			return true
		}
	}
	return false
}
