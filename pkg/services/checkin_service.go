package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/messaging"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/repositories"
)

const (
	// painFlagThreshold flags a single check-in immediately.
	painFlagThreshold = 8
	// painStreakThreshold flags when this level persists.
	painStreakThreshold = 6
	// painStreakLength is how many consecutive check-ins at or above
	// painStreakThreshold trigger a flag.
	painStreakLength = 3

	weeklySummaryWindow = 7 * 24 * time.Hour
)

// CheckinRequest carries one patient check-in response.
type CheckinRequest struct {
	PatientID   string
	To          string // message destination for flag notifications, may be empty
	PainLevel   int
	DidExercise bool
	Notes       string
	Source      string // defaults to api
}

// CheckinResult reports what happened with a logged check-in.
type CheckinResult struct {
	EventID      string `json:"event_id"`
	Flagged      bool   `json:"flagged"`
	FlagReason   string `json:"flag_reason,omitempty"`
	CoachMessage string `json:"coach_message"`
}

// WeeklySummary aggregates a patient's last seven days of check-ins.
type WeeklySummary struct {
	PatientID    string  `json:"patient_id"`
	CheckinCount int     `json:"checkin_count"`
	AveragePain  float64 `json:"average_pain"`
	ExerciseDays int     `json:"exercise_days"`
	PainTrend    string  `json:"pain_trend"` // improving | worsening | stable | insufficient_data
	FlagCount    int     `json:"flag_count"`
	SummaryText  string  `json:"summary_text"`
}

// CheckinService manages the daily check-in loop: outbound prompts, inbound
// responses, weekly summaries, and doctor flags.
type CheckinService interface {
	LogCheckin(ctx context.Context, req *CheckinRequest) (*CheckinResult, error)
	// HandleInboundMessage parses a free-text reply. Returns (nil, nil) when
	// the text does not contain a parsable check-in.
	HandleInboundMessage(ctx context.Context, patientID, text string) (*CheckinResult, error)
	GetWeeklySummary(ctx context.Context, patientID string) (*WeeklySummary, error)
	SendWeeklySummary(ctx context.Context, patientID, to string) (*WeeklySummary, error)
	FlagForDoctor(ctx context.Context, patientID, to, reason string) error
	// SendDailyCheckin sends the morning prompt, at most once per patient
	// per day. Returns apperrors.ErrCheckinAlreadySent on duplicates.
	SendDailyCheckin(ctx context.Context, patientID, to string) error
}

type checkinService struct {
	events    repositories.PatientEventRepository
	messenger messaging.Messenger
	redis     *redis.Client // nil disables daily-send dedupe
	logger    *zap.Logger
}

// NewCheckinService creates a new check-in service. The Redis client may be
// nil, which disables duplicate suppression for daily sends.
func NewCheckinService(
	events repositories.PatientEventRepository,
	messenger messaging.Messenger,
	redisClient *redis.Client,
	logger *zap.Logger,
) CheckinService {
	return &checkinService{
		events:    events,
		messenger: messenger,
		redis:     redisClient,
		logger:    logger.Named("checkin"),
	}
}

// LogCheckin validates and records a check-in, then applies the flag rules:
// a single pain report at 8+ or three consecutive reports at 6+ raise a
// doctor flag.
func (s *checkinService) LogCheckin(ctx context.Context, req *CheckinRequest) (*CheckinResult, error) {
	if req.PainLevel < 0 || req.PainLevel > 10 {
		return nil, apperrors.ErrInvalidPainLevel
	}

	source := req.Source
	if source == "" {
		source = models.SourceAPI
	}

	event := &models.PatientEvent{
		PatientID: req.PatientID,
		Source:    source,
		Type:      models.EventCheckin,
		Payload: map[string]any{
			"pain_level":   req.PainLevel,
			"did_exercise": req.DidExercise,
			"notes":        req.Notes,
		},
	}
	if err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to log checkin: %w", err)
	}

	result := &CheckinResult{EventID: event.ID.String()}

	if reason := s.flagReason(ctx, req); reason != "" {
		result.Flagged = true
		result.FlagReason = reason
		if err := s.FlagForDoctor(ctx, req.PatientID, req.To, reason); err != nil {
			s.logger.Error("failed to raise doctor flag",
				zap.String("patient_id", req.PatientID),
				zap.Error(err))
		}
	}

	result.CoachMessage = coachMessage(req, result.Flagged)
	return result, nil
}

// flagReason returns a non-empty reason when the check-in should raise a
// doctor flag.
func (s *checkinService) flagReason(ctx context.Context, req *CheckinRequest) string {
	if req.PainLevel >= painFlagThreshold {
		return fmt.Sprintf("pain level %d reported", req.PainLevel)
	}
	if req.PainLevel < painStreakThreshold {
		return ""
	}

	since := time.Now().Add(-weeklySummaryWindow)
	recent, err := s.events.ListSince(ctx, req.PatientID, since, models.EventCheckin)
	if err != nil {
		s.logger.Warn("failed to check pain streak",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
		return ""
	}

	// The just-logged check-in is the last entry; count the streak backwards.
	streak := 0
	for i := len(recent) - 1; i >= 0; i-- {
		if painLevel(recent[i]) < painStreakThreshold {
			break
		}
		streak++
	}
	if streak >= painStreakLength {
		return fmt.Sprintf("pain at %d+ for %d consecutive check-ins", painStreakThreshold, streak)
	}
	return ""
}

func painLevel(event *models.PatientEvent) int {
	switch v := event.Payload["pain_level"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func coachMessage(req *CheckinRequest, flagged bool) string {
	switch {
	case flagged:
		return "Thanks for checking in. Your pain level is concerning, so we've notified your care team. Please take it easy today."
	case req.PainLevel <= 3 && req.DidExercise:
		return "Great work! Pain is staying low and you're keeping up with your exercises."
	case req.PainLevel <= 3:
		return "Pain is staying low, nice. Try to fit in your exercises today to keep the momentum."
	case req.DidExercise:
		return "Thanks for checking in. Good job completing your exercises despite the discomfort. Watch for any worsening."
	default:
		return "Thanks for checking in. If pain is making exercises hard, try the gentler versions and let us know how it goes."
	}
}

var (
	painPattern  = regexp.MustCompile(`(?i)pain[:\s]*([0-9]{1,2})`)
	didExPattern = regexp.MustCompile(`(?i)did (you )?do|did_exercise|exercise[:\s]*yes|i did|i've done|done`)
	notesPattern = regexp.MustCompile(`(?i)notes?:\s*(.*)$`)
)

// ParseCheckinText extracts pain level, exercise adherence, and notes from a
// free-text reply. The pain pointer is nil when no pain number was found.
func ParseCheckinText(text string) (pain *int, didExercise bool, notes string) {
	lower := strings.ToLower(text)

	if m := painPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			pain = &n
		}
	}

	didExercise = didExPattern.MatchString(lower)

	notes = text
	if m := notesPattern.FindStringSubmatch(lower); m != nil {
		notes = strings.TrimSpace(m[1])
	}

	return pain, didExercise, notes
}

// HandleInboundMessage processes a webhook reply. Parsable check-ins are
// logged; anything else is recorded as a symptom note.
func (s *checkinService) HandleInboundMessage(ctx context.Context, patientID, text string) (*CheckinResult, error) {
	pain, didExercise, notes := ParseCheckinText(text)

	if pain == nil {
		err := s.events.Append(ctx, &models.PatientEvent{
			PatientID: patientID,
			Source:    models.SourcePokeText,
			Type:      models.EventSymptom,
			Payload:   map[string]any{"text": text},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to log symptom note: %w", err)
		}
		return nil, nil
	}

	return s.LogCheckin(ctx, &CheckinRequest{
		PatientID:   patientID,
		PainLevel:   *pain,
		DidExercise: didExercise,
		Notes:       notes,
		Source:      models.SourcePokeText,
	})
}

// GetWeeklySummary aggregates the last seven days of check-ins.
func (s *checkinService) GetWeeklySummary(ctx context.Context, patientID string) (*WeeklySummary, error) {
	since := time.Now().Add(-weeklySummaryWindow)

	checkins, err := s.events.ListSince(ctx, patientID, since, models.EventCheckin)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkins: %w", err)
	}
	flags, err := s.events.ListSince(ctx, patientID, since, models.EventFlagDoctor)
	if err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	summary := &WeeklySummary{
		PatientID:    patientID,
		CheckinCount: len(checkins),
		FlagCount:    len(flags),
		PainTrend:    "insufficient_data",
	}

	if len(checkins) == 0 {
		summary.SummaryText = "No check-ins recorded this week. Daily check-ins help us track your recovery."
		return summary, nil
	}

	total := 0
	for _, c := range checkins {
		total += painLevel(c)
		if didExercise(c) {
			summary.ExerciseDays++
		}
	}
	summary.AveragePain = float64(total) / float64(len(checkins))

	if len(checkins) >= 4 {
		summary.PainTrend = painTrend(checkins)
	}

	summary.SummaryText = buildSummaryText(summary)
	return summary, nil
}

func didExercise(event *models.PatientEvent) bool {
	v, _ := event.Payload["did_exercise"].(bool)
	return v
}

// painTrend compares average pain in the older half of the window against
// the newer half. Events arrive oldest first.
func painTrend(checkins []*models.PatientEvent) string {
	mid := len(checkins) / 2
	older, newer := checkins[:mid], checkins[mid:]

	avg := func(events []*models.PatientEvent) float64 {
		total := 0
		for _, e := range events {
			total += painLevel(e)
		}
		return float64(total) / float64(len(events))
	}

	diff := avg(newer) - avg(older)
	switch {
	case diff <= -0.5:
		return "improving"
	case diff >= 0.5:
		return "worsening"
	default:
		return "stable"
	}
}

func buildSummaryText(s *WeeklySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Check-ins: %d this week. ", s.CheckinCount)
	fmt.Fprintf(&b, "Average pain: %.1f/10. ", s.AveragePain)
	fmt.Fprintf(&b, "Exercise days: %d. ", s.ExerciseDays)

	switch s.PainTrend {
	case "improving":
		b.WriteString("Your pain is trending down, keep it up!")
	case "worsening":
		b.WriteString("Your pain is trending up. Consider easing intensity and watch for warning signs.")
	case "stable":
		b.WriteString("Your pain has been stable.")
	default:
		b.WriteString("Check in more often for trend tracking.")
	}

	if s.FlagCount > 0 {
		fmt.Fprintf(&b, " Note: %d concern flag(s) were raised this week.", s.FlagCount)
	}

	return b.String()
}

// SendWeeklySummary computes the summary, records it, and messages the
// patient.
func (s *checkinService) SendWeeklySummary(ctx context.Context, patientID, to string) (*WeeklySummary, error) {
	summary, err := s.GetWeeklySummary(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.messenger.SendWeeklySummary(ctx, patientID, to, summary.SummaryText); err != nil {
		return nil, fmt.Errorf("failed to send weekly summary: %w", err)
	}

	if err := s.events.Append(ctx, &models.PatientEvent{
		PatientID: patientID,
		Source:    models.SourcePokeScheduled,
		Type:      models.EventWeeklySummary,
		Payload: map[string]any{
			"checkin_count": summary.CheckinCount,
			"average_pain":  summary.AveragePain,
			"exercise_days": summary.ExerciseDays,
			"pain_trend":    summary.PainTrend,
		},
	}); err != nil {
		s.logger.Warn("failed to record weekly summary event",
			zap.String("patient_id", patientID),
			zap.Error(err))
	}

	return summary, nil
}

// FlagForDoctor records a concern flag and notifies the patient.
func (s *checkinService) FlagForDoctor(ctx context.Context, patientID, to, reason string) error {
	if err := s.events.Append(ctx, &models.PatientEvent{
		PatientID: patientID,
		Source:    models.SourceAgent,
		Type:      models.EventFlagDoctor,
		Payload:   map[string]any{"reason": reason},
	}); err != nil {
		return fmt.Errorf("failed to record doctor flag: %w", err)
	}

	if _, err := s.messenger.SendDoctorFlag(ctx, patientID, to, reason); err != nil {
		return fmt.Errorf("failed to send doctor flag: %w", err)
	}

	s.logger.Info("doctor flag raised",
		zap.String("patient_id", patientID),
		zap.String("reason", reason))

	return nil
}

// SendDailyCheckin sends the morning prompt. A Redis key scoped to the
// patient and calendar day suppresses duplicate sends.
func (s *checkinService) SendDailyCheckin(ctx context.Context, patientID, to string) error {
	if s.redis != nil {
		key := fmt.Sprintf("checkin:sent:%s:%s", patientID, time.Now().Format("2006-01-02"))
		ok, err := s.redis.SetNX(ctx, key, "1", 24*time.Hour).Result()
		if err != nil {
			// Dedupe is best effort; a Redis outage should not block sends.
			s.logger.Warn("checkin dedupe unavailable",
				zap.String("patient_id", patientID),
				zap.Error(err))
		} else if !ok {
			return apperrors.ErrCheckinAlreadySent
		}
	}

	if _, err := s.messenger.SendDailyCheckin(ctx, patientID, to); err != nil {
		return fmt.Errorf("failed to send daily checkin: %w", err)
	}

	return nil
}
