package models

import (
	"time"

	"github.com/google/uuid"
)

// PatientEvent is one entry in the append-only patient timeline: check-ins,
// symptom notes, weekly summaries, doctor flags, and completed analyses.
type PatientEvent struct {
	ID        uuid.UUID      `json:"id"`
	PatientID string         `json:"patient_id"`
	Source    string         `json:"source"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// Event source constants.
const (
	SourcePokeText       = "poke_text"
	SourcePokeScheduled  = "poke_scheduled"
	SourceVisionAnalysis = "vision_analysis"
	SourceAPI            = "api"
	SourceAgent          = "agent"
)

// Event type constants.
const (
	EventCheckin       = "checkin"
	EventSymptom       = "symptom"
	EventWeeklySummary = "weekly_summary"
	EventFlagDoctor    = "flag_doctor"
	EventAnalysis      = "analysis"
)
