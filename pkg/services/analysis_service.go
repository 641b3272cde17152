package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/llm"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/plan"
	"github.com/gaitguard/gaitguard-engine/pkg/repositories"
	"github.com/gaitguard/gaitguard-engine/pkg/retry"
)

// AnalyzeRequest carries the inputs for a full movement analysis.
type AnalyzeRequest struct {
	PatientID    string
	ActivityType string
	Frames       []llm.Frame
	Duration     float64
}

// AnalysisService runs the full analysis pipeline: vision assessment,
// plan resolution, and LLM coaching.
type AnalysisService interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*models.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error)
	ListPatientAnalyses(ctx context.Context, patientID string, limit int) ([]*models.AnalysisRecord, error)
	// ResolvePlan runs only the deterministic resolution step, for callers
	// that already have a classification.
	ResolvePlan(activityType, label string, severity int, observations []string) plan.Result
}

type analysisService struct {
	vision   llm.VisionClient
	coach    llm.CoachClient // nil disables coaching
	analyses repositories.AnalysisRepository
	events   repositories.PatientEventRepository
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewAnalysisService creates a new analysis service. The coach client may be
// nil, in which case records carry only the statically resolved plan.
func NewAnalysisService(
	vision llm.VisionClient,
	coach llm.CoachClient,
	analyses repositories.AnalysisRepository,
	events repositories.PatientEventRepository,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		vision:   vision,
		coach:    coach,
		analyses: analyses,
		events:   events,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("analysis"),
	}
}

// Analyze runs the vision model on the frames, resolves the body-region map
// and exercise prescriptions, and layers an LLM coaching plan on top. A
// coaching failure degrades the record to the static plan rather than
// failing the analysis.
func (s *analysisService) Analyze(ctx context.Context, req *AnalyzeRequest) (*models.AnalysisRecord, error) {
	if s.vision == nil {
		return nil, fmt.Errorf("vision analysis is not configured")
	}
	if len(req.Frames) == 0 {
		return nil, fmt.Errorf("at least one frame is required")
	}

	activity := req.ActivityType
	if activity == "" {
		activity = "gait"
	}

	var vision *models.VisionAnalysis
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var visionErr error
		vision, visionErr = s.vision.AnalyzeFrames(ctx, req.Frames, req.Duration)
		return visionErr
	})
	if err != nil {
		return nil, fmt.Errorf("vision analysis failed: %w", err)
	}

	resolved := plan.Assemble(activity, vision.GaitType, vision.SeverityScore, vision.AllObservations())

	record := &models.AnalysisRecord{
		PatientID:    req.PatientID,
		ActivityType: activity,
		Vision:       *vision,
		Plan:         resolved,
	}

	if s.coach != nil {
		coaching, err := s.generateCoaching(ctx, vision)
		if err != nil {
			s.logger.Warn("coaching plan generation failed, serving static plan only",
				zap.String("patient_id", req.PatientID),
				zap.Error(err))
		} else {
			record.Coaching = coaching
		}
	}

	if err := s.analyses.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist analysis: %w", err)
	}

	if err := s.events.Append(ctx, &models.PatientEvent{
		PatientID: req.PatientID,
		Source:    models.SourceVisionAnalysis,
		Type:      models.EventAnalysis,
		Payload: map[string]any{
			"analysis_id":    record.ID.String(),
			"activity_type":  activity,
			"gait_type":      vision.GaitType,
			"severity_score": vision.SeverityScore,
			"confidence":     vision.Confidence,
		},
	}); err != nil {
		// The analysis itself is saved; a missing timeline entry is recoverable.
		s.logger.Warn("failed to append analysis event",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
	}

	s.logger.Info("analysis complete",
		zap.String("patient_id", req.PatientID),
		zap.String("analysis_id", record.ID.String()),
		zap.String("gait_type", vision.GaitType),
		zap.Int("severity", vision.SeverityScore),
		zap.Bool("coached", record.Coaching != nil))

	return record, nil
}

func (s *analysisService) generateCoaching(ctx context.Context, vision *models.VisionAnalysis) (*models.CoachingPlan, error) {
	var coaching *models.CoachingPlan
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var genErr error
		coaching, genErr = s.coach.GenerateCoachingPlan(ctx, vision)
		return genErr
	})
	return coaching, err
}

// GetAnalysis retrieves a stored analysis by ID.
func (s *analysisService) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	return s.analyses.GetByID(ctx, id)
}

// ListPatientAnalyses returns a patient's analyses, newest first.
func (s *analysisService) ListPatientAnalyses(ctx context.Context, patientID string, limit int) ([]*models.AnalysisRecord, error) {
	return s.analyses.ListByPatient(ctx, patientID, limit)
}

// ResolvePlan resolves body regions and exercises without any model calls.
func (s *analysisService) ResolvePlan(activityType, label string, severity int, observations []string) plan.Result {
	return plan.Assemble(activityType, label, severity, observations)
}
