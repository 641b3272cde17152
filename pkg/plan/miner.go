package plan

import (
	"regexp"
	"strings"
)

// positiveSentiment gates the keyword scan. An observation that never uses
// positive phrasing contributes nothing, no matter which regions it names.
var positiveSentiment = regexp.MustCompile(`\b(good|full|adequate|proper|correct|strong|stable|symmetric|normal|smooth|controlled|achieved|demonstrates|maintains|achieves)\b`)

// keywordEntry pairs a searched substring with the regions it implies. Kept
// as ordered slices so the scan order is fixed.
type keywordEntry struct {
	keyword string
	regions []BodyRegion
}

// genericKeywords map unqualified anatomy words onto both sides of the body.
var genericKeywords = []keywordEntry{
	{"shoulder", []BodyRegion{RegionLeftShoulder, RegionRightShoulder}},
	{"arm", []BodyRegion{RegionLeftArm, RegionRightArm}},
	{"hand", []BodyRegion{RegionLeftHand, RegionRightHand}},
	{"hip", []BodyRegion{RegionLeftLegUpper, RegionRightLegUpper}},
	{"thigh", []BodyRegion{RegionLeftLegUpper, RegionRightLegUpper}},
	{"knee", []BodyRegion{RegionLeftLegLower, RegionRightLegLower}},
	{"leg", []BodyRegion{RegionLeftLegUpper, RegionRightLegUpper, RegionLeftLegLower, RegionRightLegLower}},
	{"ankle", []BodyRegion{RegionLeftFoot, RegionRightFoot}},
	{"foot", []BodyRegion{RegionLeftFoot, RegionRightFoot}},
	{"core", []BodyRegion{RegionStomach}},
	{"trunk", []BodyRegion{RegionChest, RegionStomach}},
	{"spine", []BodyRegion{RegionChest, RegionStomach}},
	{"back", []BodyRegion{RegionChest}},
	{"chest", []BodyRegion{RegionChest}},
	{"head", []BodyRegion{RegionHead}},
	{"neck", []BodyRegion{RegionHead}},
}

// lateralKeywords are the two-word side-qualified phrases. They are scanned
// before the generic words because they are more specific, but a match does
// not suppress the generic scan: "left knee" still also matches "knee".
var lateralKeywords = []keywordEntry{
	{"left shoulder", []BodyRegion{RegionLeftShoulder}},
	{"left arm", []BodyRegion{RegionLeftArm}},
	{"left hand", []BodyRegion{RegionLeftHand}},
	{"left hip", []BodyRegion{RegionLeftLegUpper}},
	{"left knee", []BodyRegion{RegionLeftLegLower}},
	{"left leg", []BodyRegion{RegionLeftLegUpper, RegionLeftLegLower}},
	{"left ankle", []BodyRegion{RegionLeftFoot}},
	{"left foot", []BodyRegion{RegionLeftFoot}},
	{"right shoulder", []BodyRegion{RegionRightShoulder}},
	{"right arm", []BodyRegion{RegionRightArm}},
	{"right hand", []BodyRegion{RegionRightHand}},
	{"right hip", []BodyRegion{RegionRightLegUpper}},
	{"right knee", []BodyRegion{RegionRightLegLower}},
	{"right leg", []BodyRegion{RegionRightLegUpper, RegionRightLegLower}},
	{"right ankle", []BodyRegion{RegionRightFoot}},
	{"right foot", []BodyRegion{RegionRightFoot}},
}

// DetectPositiveRegions scans free-text observations for body regions that
// are described positively. This is a keyword heuristic, not NLP: it has no
// negation handling, so "not achieving full range" still registers as
// positive. That trade-off is accepted for this input shape (short,
// clinician-style findings from the vision model).
func DetectPositiveRegions(observations []string) RegionSet {
	detected := make(RegionSet)
	for _, obs := range observations {
		lower := strings.ToLower(obs)
		if !positiveSentiment.MatchString(lower) {
			continue
		}
		for _, entry := range lateralKeywords {
			if strings.Contains(lower, entry.keyword) {
				detected.AddAll(entry.regions)
			}
		}
		for _, entry := range genericKeywords {
			if strings.Contains(lower, entry.keyword) {
				detected.AddAll(entry.regions)
			}
		}
	}
	return detected
}
