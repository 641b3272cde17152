package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPositiveRegions(t *testing.T) {
	tests := []struct {
		name         string
		observations []string
		want         []BodyRegion
	}{
		{
			name:         "generic keyword maps to both sides",
			observations: []string{"Patient demonstrates good symmetric stride on both legs"},
			want: []BodyRegion{
				RegionLeftLegLower, RegionLeftLegUpper,
				RegionRightLegLower, RegionRightLegUpper,
			},
		},
		{
			name:         "lateralized phrase maps to one side only",
			observations: []string{"left knee shows good alignment"},
			// "knee" also matches as a generic keyword, so both sides land.
			want: []BodyRegion{RegionLeftLegLower, RegionRightLegLower},
		},
		{
			name:         "no positive sentiment skips the observation",
			observations: []string{"left knee collapses inward on landing"},
			want:         nil,
		},
		{
			name:         "sentiment in one observation does not leak into another",
			observations: []string{"posture is good", "knee collapses inward"},
			want:         nil,
		},
		{
			name:         "trunk maps to chest and stomach",
			observations: []string{"maintains stable trunk throughout"},
			want:         []BodyRegion{RegionChest, RegionStomach},
		},
		{
			name:         "multiple observations accumulate",
			observations: []string{"good ankle control", "strong core engagement"},
			want:         []BodyRegion{RegionLeftFoot, RegionRightFoot, RegionStomach},
		},
		{
			name:         "empty input",
			observations: nil,
			want:         nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPositiveRegions(tt.observations)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got.Sorted())
		})
	}
}

func TestDetectPositiveRegionsNegationFalsePositive(t *testing.T) {
	// Known limitation of the keyword heuristic: negated phrasing still
	// registers the named region as positive. Locked in so nobody "fixes"
	// it without a product decision.
	got := DetectPositiveRegions([]string{"not achieving full range in the left shoulder"})
	assert.True(t, got.Has(RegionLeftShoulder))
}

func TestDetectPositiveRegionsIsDeterministic(t *testing.T) {
	obs := []string{"good hip extension", "stable ankle position", "proper arm swing"}
	first := DetectPositiveRegions(obs)
	second := DetectPositiveRegions(obs)
	assert.Equal(t, first.Sorted(), second.Sorted())
}

func TestRegionSetUnionIsIdempotent(t *testing.T) {
	obs := []string{"good knee tracking"}
	once := make(RegionSet)
	once.AddAll(DetectPositiveRegions(obs).Sorted())

	twice := make(RegionSet)
	twice.AddAll(DetectPositiveRegions(obs).Sorted())
	twice.AddAll(DetectPositiveRegions(obs).Sorted())

	assert.Equal(t, once.Sorted(), twice.Sorted())
}
