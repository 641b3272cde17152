package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/database"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
)

// AnalysisRepository defines the interface for analysis record persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, record *models.AnalysisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error)
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*models.AnalysisRecord, error)
}

// analysisRepository implements AnalysisRepository using PostgreSQL.
type analysisRepository struct {
	db *database.DB
}

// NewAnalysisRepository creates a new analysis repository.
func NewAnalysisRepository(db *database.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create inserts a new analysis record. The vision assessment, resolved plan,
// and coaching plan are stored as JSONB documents.
func (r *analysisRepository) Create(ctx context.Context, record *models.AnalysisRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	visionJSON, err := json.Marshal(record.Vision)
	if err != nil {
		return fmt.Errorf("failed to marshal vision assessment: %w", err)
	}
	planJSON, err := json.Marshal(record.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	var coachingJSON []byte
	if record.Coaching != nil {
		coachingJSON, err = json.Marshal(record.Coaching)
		if err != nil {
			return fmt.Errorf("failed to marshal coaching plan: %w", err)
		}
	}

	query := `
		INSERT INTO analyses (id, patient_id, activity_type, vision, plan, coaching, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.PatientID,
		record.ActivityType,
		visionJSON,
		planJSON,
		coachingJSON,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	return nil
}

// GetByID retrieves an analysis record by its ID.
func (r *analysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, patient_id, activity_type, vision, plan, coaching, created_at
		FROM analyses
		WHERE id = $1`

	record, err := scanAnalysis(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return record, nil
}

// ListByPatient returns a patient's analyses, newest first.
func (r *analysisRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, patient_id, activity_type, vision, plan, coaching, created_at
		FROM analyses
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return records, nil
}

// scanAnalysis reads one analysis row, decoding the JSONB columns.
func scanAnalysis(row pgx.Row) (*models.AnalysisRecord, error) {
	var (
		record       models.AnalysisRecord
		visionJSON   []byte
		planJSON     []byte
		coachingJSON []byte
	)

	err := row.Scan(
		&record.ID,
		&record.PatientID,
		&record.ActivityType,
		&visionJSON,
		&planJSON,
		&coachingJSON,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(visionJSON, &record.Vision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vision assessment: %w", err)
	}
	if err := json.Unmarshal(planJSON, &record.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	if len(coachingJSON) > 0 {
		var coaching models.CoachingPlan
		if err := json.Unmarshal(coachingJSON, &coaching); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coaching plan: %w", err)
		}
		record.Coaching = &coaching
	}

	return &record, nil
}
