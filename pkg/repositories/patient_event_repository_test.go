//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/testhelpers"
)

func setupEventTest(t *testing.T) PatientEventRepository {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.TruncateTables(t, testDB.DB, "patient_events")
	return NewPatientEventRepository(testDB.DB)
}

func TestPatientEventRepository_AppendAndList(t *testing.T) {
	repo := setupEventTest(t)
	ctx := context.Background()

	event := &models.PatientEvent{
		PatientID: "patient-1",
		Source:    models.SourcePokeText,
		Type:      models.EventCheckin,
		Payload: map[string]any{
			"pain_level":   float64(4),
			"did_exercise": true,
			"notes":        "knee felt better today",
		},
	}
	if err := repo.Append(ctx, event); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if event.ID == uuid.Nil {
		t.Fatal("expected Append to assign an ID")
	}

	events, err := repo.ListForPatient(ctx, "patient-1", 10)
	if err != nil {
		t.Fatalf("ListForPatient failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.Type != models.EventCheckin {
		t.Errorf("expected type checkin, got %q", got.Type)
	}
	if got.Payload["pain_level"] != float64(4) {
		t.Errorf("expected pain_level 4, got %v", got.Payload["pain_level"])
	}
	if got.Payload["did_exercise"] != true {
		t.Errorf("expected did_exercise true, got %v", got.Payload["did_exercise"])
	}
}

func TestPatientEventRepository_ListForPatient_NewestFirst(t *testing.T) {
	repo := setupEventTest(t)
	ctx := context.Background()

	base := time.Now().Add(-3 * time.Hour)
	for i := 0; i < 3; i++ {
		err := repo.Append(ctx, &models.PatientEvent{
			PatientID: "patient-2",
			Source:    models.SourceAPI,
			Type:      models.EventSymptom,
			Payload:   map[string]any{"seq": float64(i)},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	events, err := repo.ListForPatient(ctx, "patient-2", 10)
	if err != nil {
		t.Fatalf("ListForPatient failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Payload["seq"] != float64(2) {
		t.Errorf("expected newest event first, got seq %v", events[0].Payload["seq"])
	}
}

func TestPatientEventRepository_ListSince(t *testing.T) {
	repo := setupEventTest(t)
	ctx := context.Background()

	now := time.Now()
	old := &models.PatientEvent{
		PatientID: "patient-3",
		Source:    models.SourcePokeText,
		Type:      models.EventCheckin,
		Payload:   map[string]any{"pain_level": float64(7)},
		CreatedAt: now.Add(-10 * 24 * time.Hour),
	}
	recent := &models.PatientEvent{
		PatientID: "patient-3",
		Source:    models.SourcePokeText,
		Type:      models.EventCheckin,
		Payload:   map[string]any{"pain_level": float64(3)},
		CreatedAt: now.Add(-2 * 24 * time.Hour),
	}
	flag := &models.PatientEvent{
		PatientID: "patient-3",
		Source:    models.SourceAgent,
		Type:      models.EventFlagDoctor,
		Payload:   map[string]any{"reason": "pain spike"},
		CreatedAt: now.Add(-1 * 24 * time.Hour),
	}
	for _, e := range []*models.PatientEvent{old, recent, flag} {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	cutoff := now.Add(-7 * 24 * time.Hour)

	all, err := repo.ListSince(ctx, "patient-3", cutoff, "")
	if err != nil {
		t.Fatalf("ListSince failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events within window, got %d", len(all))
	}
	if !all[0].CreatedAt.Before(all[1].CreatedAt) {
		t.Error("expected ListSince to return oldest first")
	}

	checkins, err := repo.ListSince(ctx, "patient-3", cutoff, models.EventCheckin)
	if err != nil {
		t.Fatalf("ListSince with type filter failed: %v", err)
	}
	if len(checkins) != 1 {
		t.Fatalf("expected 1 checkin within window, got %d", len(checkins))
	}
	if checkins[0].Payload["pain_level"] != float64(3) {
		t.Errorf("expected the recent checkin, got payload %v", checkins[0].Payload)
	}
}

func TestPatientEventRepository_EmptyPayload(t *testing.T) {
	repo := setupEventTest(t)
	ctx := context.Background()

	err := repo.Append(ctx, &models.PatientEvent{
		PatientID: "patient-4",
		Source:    models.SourcePokeScheduled,
		Type:      models.EventWeeklySummary,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := repo.ListForPatient(ctx, "patient-4", 10)
	if err != nil {
		t.Fatalf("ListForPatient failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}
