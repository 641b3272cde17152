package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/gaitguard/gaitguard-engine/pkg/llm"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/plan"
	"github.com/gaitguard/gaitguard-engine/pkg/services"
)

// mockAnalysisService is a simple mock for handler unit tests.
type mockAnalysisService struct {
	analyzeResult *models.AnalysisRecord
	analyzeErr    error
	analyzeCalls  []*services.AnalyzeRequest

	getResult *models.AnalysisRecord
	getErr    error

	listResult []*models.AnalysisRecord
	listErr    error
	listLimit  int
}

func (m *mockAnalysisService) Analyze(ctx context.Context, req *services.AnalyzeRequest) (*models.AnalysisRecord, error) {
	m.analyzeCalls = append(m.analyzeCalls, req)
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	if m.analyzeResult != nil {
		return m.analyzeResult, nil
	}
	return &models.AnalysisRecord{
		ID:        uuid.New(),
		PatientID: req.PatientID,
	}, nil
}

func (m *mockAnalysisService) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResult, nil
}

func (m *mockAnalysisService) ListPatientAnalyses(ctx context.Context, patientID string, limit int) ([]*models.AnalysisRecord, error) {
	m.listLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

func (m *mockAnalysisService) ResolvePlan(activityType, label string, severity int, observations []string) plan.Result {
	return plan.Assemble(activityType, label, severity, observations)
}

// mockCheckinService is a simple mock for handler unit tests.
type mockCheckinService struct {
	logResult *services.CheckinResult
	logErr    error
	logCalls  []*services.CheckinRequest

	inboundResult *services.CheckinResult
	inboundErr    error
	inboundTexts  []string

	summaryResult *services.WeeklySummary
	summaryErr    error
	summarySends  []string

	flagErr     error
	flagReasons []string

	dailyErr      error
	dailyPatients []string
}

func (m *mockCheckinService) LogCheckin(ctx context.Context, req *services.CheckinRequest) (*services.CheckinResult, error) {
	m.logCalls = append(m.logCalls, req)
	if m.logErr != nil {
		return nil, m.logErr
	}
	if m.logResult != nil {
		return m.logResult, nil
	}
	return &services.CheckinResult{EventID: uuid.New().String(), CoachMessage: "Noted."}, nil
}

func (m *mockCheckinService) HandleInboundMessage(ctx context.Context, patientID, text string) (*services.CheckinResult, error) {
	m.inboundTexts = append(m.inboundTexts, text)
	if m.inboundErr != nil {
		return nil, m.inboundErr
	}
	return m.inboundResult, nil
}

func (m *mockCheckinService) GetWeeklySummary(ctx context.Context, patientID string) (*services.WeeklySummary, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	if m.summaryResult != nil {
		return m.summaryResult, nil
	}
	return &services.WeeklySummary{PatientID: patientID, PainTrend: "insufficient_data"}, nil
}

func (m *mockCheckinService) SendWeeklySummary(ctx context.Context, patientID, to string) (*services.WeeklySummary, error) {
	m.summarySends = append(m.summarySends, patientID)
	return m.GetWeeklySummary(ctx, patientID)
}

func (m *mockCheckinService) FlagForDoctor(ctx context.Context, patientID, to, reason string) error {
	m.flagReasons = append(m.flagReasons, reason)
	return m.flagErr
}

func (m *mockCheckinService) SendDailyCheckin(ctx context.Context, patientID, to string) error {
	m.dailyPatients = append(m.dailyPatients, patientID)
	return m.dailyErr
}

// mockConsultationService is a simple mock for handler unit tests.
type mockConsultationService struct {
	reply     string
	chatErr   error
	histories [][]llm.ChatMessage
	messages  []string
}

func (m *mockConsultationService) Chat(ctx context.Context, history []llm.ChatMessage, userMessage string) (string, error) {
	m.histories = append(m.histories, history)
	m.messages = append(m.messages, userMessage)
	if m.chatErr != nil {
		return "", m.chatErr
	}
	if m.reply != "" {
		return m.reply, nil
	}
	return "Keep up the gentle stretching.", nil
}
