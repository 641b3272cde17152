package mcp

import (
	"context"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/auth"
)

// CallLogger records MCP tool calls with their duration and outcome.
type CallLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewCallLogger creates a CallLogger that records tool call events.
func NewCallLogger(logger *zap.Logger) *CallLogger {
	return &CallLogger{logger: logger.Named("mcp-tools")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (c *CallLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(c.beforeCallTool)
	hooks.AddAfterCallTool(c.afterCallTool)
	hooks.AddOnError(c.onError)
	return hooks
}

func (c *CallLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	c.startTimes.Store(id, time.Now())
}

func (c *CallLogger) afterCallTool(ctx context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	startTime, _ := c.loadAndDeleteStart(id)

	fields := c.callFields(ctx, req, startTime)
	if result != nil && result.IsError {
		fields = append(fields, zap.Bool("tool_error", true))
	}
	c.logger.Info("MCP tool call", fields...)
}

func (c *CallLogger) onError(ctx context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	startTime, _ := c.loadAndDeleteStart(id)

	fields := append(c.callFields(ctx, req, startTime), zap.Error(err))
	c.logger.Warn("MCP tool call failed", fields...)
}

func (c *CallLogger) loadAndDeleteStart(id any) (time.Time, bool) {
	if v, ok := c.startTimes.LoadAndDelete(id); ok {
		return v.(time.Time), true
	}
	return time.Now(), false
}

func (c *CallLogger) callFields(ctx context.Context, req *mcplib.CallToolRequest, startTime time.Time) []zap.Field {
	fields := []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Int("duration_ms", int(time.Since(startTime).Milliseconds())),
	}
	if claims, ok := auth.GetClaims(ctx); ok {
		fields = append(fields, zap.String("subject", claims.Subject))
	}
	return fields
}
