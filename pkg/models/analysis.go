package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gaitguard/gaitguard-engine/pkg/plan"
)

// VisionAnalysis is the structured assessment returned by the vision model
// for a walking-video frame sequence.
type VisionAnalysis struct {
	GaitType              string   `json:"gait_type"`
	SeverityScore         int      `json:"severity_score"`
	VisualObservations    []string `json:"visual_observations"`
	LeftSideObservations  []string `json:"left_side_observations"`
	RightSideObservations []string `json:"right_side_observations"`
	Asymmetries           []string `json:"asymmetries"`
	PosturalIssues        []string `json:"postural_issues"`
	Confidence            string   `json:"confidence"` // high | medium | low
}

// AllObservations flattens every observation list into one slice, in the
// order the vision model reported them.
func (a *VisionAnalysis) AllObservations() []string {
	out := make([]string, 0,
		len(a.VisualObservations)+len(a.LeftSideObservations)+
			len(a.RightSideObservations)+len(a.Asymmetries)+len(a.PosturalIssues))
	out = append(out, a.VisualObservations...)
	out = append(out, a.LeftSideObservations...)
	out = append(out, a.RightSideObservations...)
	out = append(out, a.Asymmetries...)
	out = append(out, a.PosturalIssues...)
	return out
}

// CoachingExercise is one exercise inside a coaching plan. Same display
// shape as the static prescriptions so the UI renders both identically.
type CoachingExercise struct {
	Name         string   `json:"name"`
	Target       string   `json:"target"`
	Instructions []string `json:"instructions"`
	SetsReps     string   `json:"sets_reps"`
	Frequency    string   `json:"frequency"`
	FormTips     []string `json:"form_tips"`
}

// CoachingPlan is the LLM-generated corrective program layered on top of the
// engine's static prescriptions.
type CoachingPlan struct {
	Explanation  string             `json:"explanation"`
	LikelyCauses []string           `json:"likely_causes"`
	Exercises    []CoachingExercise `json:"exercises"`
	Timeline     string             `json:"timeline"`
	WarningSigns []string           `json:"warning_signs"`
	ImmediateTip string             `json:"immediate_tip"`
}

// AnalysisRecord is one completed analysis: the vision assessment, the
// engine's resolved plan, and the optional coaching plan.
type AnalysisRecord struct {
	ID           uuid.UUID      `json:"id"`
	PatientID    string         `json:"patient_id"`
	ActivityType string         `json:"activity_type"`
	Vision       VisionAnalysis `json:"vision"`
	Plan         plan.Result    `json:"plan"`
	Coaching     *CoachingPlan  `json:"coaching,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
