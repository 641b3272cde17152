package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gaitguard/gaitguard-engine/pkg/database"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
)

// PatientEventRepository defines the interface for the append-only patient
// timeline.
type PatientEventRepository interface {
	Append(ctx context.Context, event *models.PatientEvent) error
	ListForPatient(ctx context.Context, patientID string, limit int) ([]*models.PatientEvent, error)
	// ListSince returns a patient's events created at or after the cutoff,
	// oldest first, optionally filtered by event type ("" means all types).
	ListSince(ctx context.Context, patientID string, since time.Time, eventType string) ([]*models.PatientEvent, error)
}

// patientEventRepository implements PatientEventRepository using PostgreSQL.
type patientEventRepository struct {
	db *database.DB
}

// NewPatientEventRepository creates a new patient event repository.
func NewPatientEventRepository(db *database.DB) PatientEventRepository {
	return &patientEventRepository{db: db}
}

// Append inserts a new event. Events are never updated or deleted.
func (r *patientEventRepository) Append(ctx context.Context, event *models.PatientEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO patient_events (id, patient_id, source, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(ctx, query,
		event.ID,
		event.PatientID,
		event.Source,
		event.Type,
		payloadJSON,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append patient event: %w", err)
	}

	return nil
}

// ListForPatient returns a patient's events, newest first.
func (r *patientEventRepository) ListForPatient(ctx context.Context, patientID string, limit int) ([]*models.PatientEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, patient_id, source, type, payload, created_at
		FROM patient_events
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListSince returns events at or after the cutoff, oldest first.
func (r *patientEventRepository) ListSince(ctx context.Context, patientID string, since time.Time, eventType string) ([]*models.PatientEvent, error) {
	query := `
		SELECT id, patient_id, source, type, payload, created_at
		FROM patient_events
		WHERE patient_id = $1
		  AND created_at >= $2
		  AND ($3 = '' OR type = $3)
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, patientID, since, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient events since cutoff: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*models.PatientEvent, error) {
	var events []*models.PatientEvent
	for rows.Next() {
		var (
			event       models.PatientEvent
			payloadJSON []byte
		)
		err := rows.Scan(
			&event.ID,
			&event.PatientID,
			&event.Source,
			&event.Type,
			&payloadJSON,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient event: %w", err)
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &event.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
			}
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patient events: %w", err)
	}

	return events, nil
}
