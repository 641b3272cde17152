package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/messaging"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
)

// fakeEventRepo is an in-memory PatientEventRepository for service tests.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.PatientEvent

	appendErr error
}

func (r *fakeEventRepo) Append(ctx context.Context, event *models.PatientEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListForPatient(ctx context.Context, patientID string, limit int) ([]*models.PatientEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PatientEvent
	for _, e := range r.events {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEventRepo) ListSince(ctx context.Context, patientID string, since time.Time, eventType string) ([]*models.PatientEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PatientEvent
	for _, e := range r.events {
		if e.PatientID != patientID || e.CreatedAt.Before(since) {
			continue
		}
		if eventType != "" && e.Type != eventType {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeEventRepo) byType(eventType string) []*models.PatientEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PatientEvent
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeAnalysisRepo is an in-memory AnalysisRepository for service tests.
type fakeAnalysisRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.AnalysisRecord

	createErr error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{records: make(map[uuid.UUID]*models.AnalysisRecord)}
}

func (r *fakeAnalysisRepo) Create(ctx context.Context, record *models.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.records[record.ID] = record
	return nil
}

func (r *fakeAnalysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, apperrors.ErrAnalysisNotFound
	}
	return record, nil
}

func (r *fakeAnalysisRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]*models.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AnalysisRecord
	for _, record := range r.records {
		if record.PatientID == patientID {
			out = append(out, record)
		}
	}
	return out, nil
}

// mockMessenger records sent messages. Function fields override behavior.
type mockMessenger struct {
	mu sync.Mutex

	dailyCheckins   []string // patient IDs
	weeklySummaries []string // summary texts
	doctorFlags     []string // reasons

	sendDailyErr error
	sendFlagErr  error
}

func (m *mockMessenger) SendDailyCheckin(ctx context.Context, patientID, to string) (*messaging.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendDailyErr != nil {
		return nil, m.sendDailyErr
	}
	m.dailyCheckins = append(m.dailyCheckins, patientID)
	return &messaging.SendResult{MessageID: "mock", Mock: true, SentAt: time.Now()}, nil
}

func (m *mockMessenger) SendWeeklySummary(ctx context.Context, patientID, to, summaryText string) (*messaging.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weeklySummaries = append(m.weeklySummaries, summaryText)
	return &messaging.SendResult{MessageID: "mock", Mock: true, SentAt: time.Now()}, nil
}

func (m *mockMessenger) SendDoctorFlag(ctx context.Context, patientID, to, reason string) (*messaging.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendFlagErr != nil {
		return nil, m.sendFlagErr
	}
	m.doctorFlags = append(m.doctorFlags, reason)
	return &messaging.SendResult{MessageID: "mock", Mock: true, SentAt: time.Now()}, nil
}
