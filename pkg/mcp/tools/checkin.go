// Package tools provides MCP tool implementations for gaitguard-engine.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/services"
)

// CheckinToolDeps contains dependencies for check-in tools.
type CheckinToolDeps struct {
	Checkins services.CheckinService
	Logger   *zap.Logger
}

// RegisterCheckinTools registers the recovery check-in MCP tools.
func RegisterCheckinTools(s *server.MCPServer, deps *CheckinToolDeps) {
	registerLogCheckinTool(s, deps)
	registerWeeklySummaryTool(s, deps)
	registerFlagForDoctorTool(s, deps)
}

// registerLogCheckinTool adds the log_checkin tool for recording a
// patient's daily pain and adherence report.
func registerLogCheckinTool(s *server.MCPServer, deps *CheckinToolDeps) {
	tool := mcp.NewTool(
		"log_checkin",
		mcp.WithDescription(
			"Record a patient's daily recovery check-in: pain level (0-10), "+
				"whether they did their prescribed exercises, and free-text notes. "+
				"High or persistently elevated pain automatically raises a doctor flag; "+
				"the result reports whether that happened.",
		),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("Identifier of the patient checking in"),
		),
		mcp.WithNumber(
			"pain",
			mcp.Required(),
			mcp.Description("Pain level from 0 (none) to 10 (worst imaginable)"),
		),
		mcp.WithBoolean(
			"did_exercise",
			mcp.Description("Whether the patient did their prescribed exercises today"),
		),
		mcp.WithString(
			"notes",
			mcp.Description("Free-text notes from the patient, e.g. symptoms or concerns"),
		),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		patientID, err := req.RequireString("patient_id")
		if err != nil {
			return nil, err
		}

		pain, ok := getOptionalFloat(req, "pain")
		if !ok {
			return NewErrorResult("missing_pain", "pain level is required"), nil
		}

		result, err := deps.Checkins.LogCheckin(ctx, &services.CheckinRequest{
			PatientID:   patientID,
			PainLevel:   int(pain),
			DidExercise: getOptionalBool(req, "did_exercise"),
			Notes:       getOptionalString(req, "notes"),
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidPainLevel) {
				return NewErrorResultWithDetails("invalid_pain", err.Error(),
					map[string]any{"min": 0, "max": 10}), nil
			}
			return nil, fmt.Errorf("failed to log checkin: %w", err)
		}

		return jsonResult(result)
	})
}

// registerWeeklySummaryTool adds the get_weekly_summary tool.
func registerWeeklySummaryTool(s *server.MCPServer, deps *CheckinToolDeps) {
	tool := mcp.NewTool(
		"get_weekly_summary",
		mcp.WithDescription(
			"Summarize a patient's last seven days of check-ins: average pain, "+
				"exercise adherence, pain trend (improving/worsening/stable), and "+
				"doctor flags raised during the week.",
		),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("Identifier of the patient to summarize"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		patientID, err := req.RequireString("patient_id")
		if err != nil {
			return nil, err
		}

		summary, err := deps.Checkins.GetWeeklySummary(ctx, patientID)
		if err != nil {
			return nil, fmt.Errorf("failed to build weekly summary: %w", err)
		}

		return jsonResult(summary)
	})
}

// registerFlagForDoctorTool adds the flag_for_doctor tool for escalating
// concerning symptoms to the patient's care team.
func registerFlagForDoctorTool(s *server.MCPServer, deps *CheckinToolDeps) {
	tool := mcp.NewTool(
		"flag_for_doctor",
		mcp.WithDescription(
			"Flag a patient's concerning symptoms for doctor review. Records the "+
				"flag on the patient's timeline and notifies the patient that their "+
				"care team has been alerted. Use when symptoms warrant clinical "+
				"attention rather than coaching.",
		),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("Identifier of the patient to flag"),
		),
		mcp.WithString(
			"reason",
			mcp.Required(),
			mcp.Description("Why the patient is being flagged, e.g. 'pain level 9 reported'"),
		),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		patientID, err := req.RequireString("patient_id")
		if err != nil {
			return nil, err
		}
		reason, err := req.RequireString("reason")
		if err != nil {
			return nil, err
		}
		if trimString(reason) == "" {
			return NewErrorResult("missing_reason", "reason must not be blank"), nil
		}

		if err := deps.Checkins.FlagForDoctor(ctx, patientID, "", reason); err != nil {
			return nil, fmt.Errorf("failed to flag for doctor: %w", err)
		}

		deps.Logger.Info("Patient flagged via MCP tool",
			zap.String("patient_id", patientID),
			zap.String("reason", reason))

		return jsonResult(map[string]any{"flagged": true, "reason": reason})
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
