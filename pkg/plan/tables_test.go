package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The region and exercise tables are maintained by hand in parallel. These
// tests are the consistency guard: the taxonomy is the single source of
// truth, and every table edit must keep both tables aligned with it.

func TestEveryTaxonomyLabelHasARegionMapping(t *testing.T) {
	for activity, labels := range taxonomy {
		table, ok := regionTables[activity]
		require.True(t, ok, "region table missing activity %q", activity)
		for _, label := range labels {
			_, ok := table[label]
			assert.True(t, ok, "region table %s missing label %q", activity, label)
		}
	}
}

func TestEveryTaxonomyLabelHasExercises(t *testing.T) {
	for activity, labels := range taxonomy {
		table, ok := exerciseTables[activity]
		require.True(t, ok, "exercise table missing activity %q", activity)
		for _, label := range labels {
			set, ok := table[label]
			assert.True(t, ok, "exercise table %s missing label %q", activity, label)
			assert.NotEmpty(t, set, "exercise table %s/%s is empty", activity, label)
		}
	}
}

func TestEveryActivityHasGeneralEntries(t *testing.T) {
	for _, activity := range ActivityTypes {
		_, ok := regionTables[activity][GeneralLabel]
		assert.True(t, ok, "region table %s has no general entry", activity)
		assert.NotEmpty(t, exerciseTables[activity][GeneralLabel],
			"exercise table %s has no general prescriptions", activity)
	}
}

func TestFormLabelsHaveRegionMappings(t *testing.T) {
	// Form findings are region-highlighting-only: they live in the strength
	// region table and resolve exercises through strength.general.
	for _, label := range formLabels {
		_, ok := regionTables[ActivityStrength][label]
		assert.True(t, ok, "strength region table missing form label %q", label)
	}
}

func TestRegionTableLabelsAreKnown(t *testing.T) {
	known := make(map[ActivityType]map[string]bool)
	for activity, labels := range taxonomy {
		known[activity] = map[string]bool{GeneralLabel: true}
		for _, label := range labels {
			known[activity][label] = true
		}
	}
	for _, label := range formLabels {
		known[ActivityStrength][label] = true
	}

	for activity, table := range regionTables {
		for label := range table {
			assert.True(t, known[activity][label],
				"region table %s carries label %q not in the taxonomy", activity, label)
		}
	}
	for activity, table := range exerciseTables {
		for label := range table {
			assert.True(t, known[activity][label],
				"exercise table %s carries label %q not in the taxonomy", activity, label)
		}
	}
}

func TestExerciseEntriesAreComplete(t *testing.T) {
	for activity, table := range exerciseTables {
		for label, set := range table {
			for _, ex := range set {
				assert.NotEmpty(t, ex.Name, "%s/%s: exercise with no name", activity, label)
				assert.NotEmpty(t, ex.Target, "%s/%s/%s: no target", activity, label, ex.Name)
				assert.NotEmpty(t, ex.Instructions, "%s/%s/%s: no instructions", activity, label, ex.Name)
				assert.NotEmpty(t, ex.SetsReps, "%s/%s/%s: no sets/reps", activity, label, ex.Name)
				assert.NotEmpty(t, ex.Frequency, "%s/%s/%s: no frequency", activity, label, ex.Name)
			}
		}
	}
}

func TestLoadRegionTablesRejectsBadData(t *testing.T) {
	_, err := loadRegionTables([]byte("gait:\n  general: {high: [made_up_region], medium: [], low: [], good: []}\n"))
	require.Error(t, err)

	_, err = loadRegionTables([]byte("not: [valid"))
	require.Error(t, err)
}

func TestLoadExerciseTablesRejectsBadData(t *testing.T) {
	_, err := loadExerciseTables([]byte("gait:\n  antalgic: []\n"))
	require.Error(t, err, "missing general entry must be rejected")
}
