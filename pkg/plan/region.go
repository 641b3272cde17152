package plan

import "sort"

// BodyRegion is one anatomical zone used for severity highlighting. The set
// is closed and shared across all activity types.
type BodyRegion string

const (
	RegionLeftFoot      BodyRegion = "left_foot"
	RegionRightFoot     BodyRegion = "right_foot"
	RegionLeftLegUpper  BodyRegion = "left_leg_upper"
	RegionRightLegUpper BodyRegion = "right_leg_upper"
	RegionLeftLegLower  BodyRegion = "left_leg_lower"
	RegionRightLegLower BodyRegion = "right_leg_lower"
	RegionStomach       BodyRegion = "stomach"
	RegionChest         BodyRegion = "chest"
	RegionLeftShoulder  BodyRegion = "left_shoulder"
	RegionRightShoulder BodyRegion = "right_shoulder"
	RegionLeftArm       BodyRegion = "left_arm"
	RegionRightArm      BodyRegion = "right_arm"
	RegionLeftHand      BodyRegion = "left_hand"
	RegionRightHand     BodyRegion = "right_hand"
	RegionHead          BodyRegion = "head"
)

// BodyRegions lists every valid body region.
var BodyRegions = []BodyRegion{
	RegionLeftFoot, RegionRightFoot,
	RegionLeftLegUpper, RegionRightLegUpper,
	RegionLeftLegLower, RegionRightLegLower,
	RegionStomach, RegionChest,
	RegionLeftShoulder, RegionRightShoulder,
	RegionLeftArm, RegionRightArm,
	RegionLeftHand, RegionRightHand,
	RegionHead,
}

// BodyRegionMapping partitions body regions into severity tiers for one
// classification. Absence from all four tiers means "not discussed", not
// "healthy". Mappings are value objects: merges produce new slices, never
// destructive updates of the static tables.
type BodyRegionMapping struct {
	High   []BodyRegion `yaml:"high" json:"high"`
	Medium []BodyRegion `yaml:"medium" json:"medium"`
	Low    []BodyRegion `yaml:"low" json:"low"`
	Good   []BodyRegion `yaml:"good" json:"good"`
}

// clone returns a deep copy so callers can merge without touching the table.
func (m BodyRegionMapping) clone() BodyRegionMapping {
	return BodyRegionMapping{
		High:   append([]BodyRegion{}, m.High...),
		Medium: append([]BodyRegion{}, m.Medium...),
		Low:    append([]BodyRegion{}, m.Low...),
		Good:   append([]BodyRegion{}, m.Good...),
	}
}

// ProblemRegions returns the union of the high, medium and low tiers.
func (m BodyRegionMapping) ProblemRegions() RegionSet {
	set := make(RegionSet)
	set.AddAll(m.High)
	set.AddAll(m.Medium)
	set.AddAll(m.Low)
	return set
}

// RegionSet is an order-independent, duplicate-insensitive collection of
// body regions.
type RegionSet map[BodyRegion]struct{}

// Add inserts a region into the set.
func (s RegionSet) Add(r BodyRegion) { s[r] = struct{}{} }

// AddAll inserts every region in the slice.
func (s RegionSet) AddAll(rs []BodyRegion) {
	for _, r := range rs {
		s.Add(r)
	}
}

// Has reports membership.
func (s RegionSet) Has(r BodyRegion) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the set's members in lexical order for deterministic output.
func (s RegionSet) Sorted() []BodyRegion {
	out := make([]BodyRegion, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// mergeGood unions detected regions into an existing good tier, preserving
// the tier's declared order and appending new regions in lexical order.
func mergeGood(good []BodyRegion, detected RegionSet) []BodyRegion {
	seen := make(RegionSet)
	seen.AddAll(good)
	merged := append([]BodyRegion{}, good...)
	for _, r := range detected.Sorted() {
		if !seen.Has(r) {
			merged = append(merged, r)
			seen.Add(r)
		}
	}
	return merged
}
