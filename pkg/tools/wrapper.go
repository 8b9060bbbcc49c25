package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/shodan-mcp/pkg/models"
	"github.com/tb0hdan/shodan-mcp/pkg/storage"
)

// WrapToolHandler tags each call with a request id, logs its outcome and,
// when store is non-nil, records it in the lookup audit log.
func WrapToolHandler[In, Out any](
	store storage.Storage,
	logger zerolog.Logger,
	toolName string,
	handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		startTime := time.Now()
		requestID := uuid.NewString()

		sessionID := ""
		if req != nil && req.Session != nil {
			sessionID = req.Session.ID()
		}

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		ctx = reqLogger.WithContext(ctx)

		result, output, err := handler(ctx, req, input)

		duration := time.Since(startTime)
		if err != nil {
			reqLogger.Warn().Err(err).Dur("duration", duration).Msgf("%s failed", toolName)
		} else {
			reqLogger.Info().Dur("duration", duration).Msgf("%s completed", toolName)
		}

		if store == nil {
			return result, output, err
		}

		inputJSON, _ := json.Marshal(input)
		lookup := &models.Lookup{
			RequestID:  requestID,
			SessionID:  sessionID,
			Tool:       toolName,
			Arguments:  string(inputJSON),
			DurationMs: duration.Milliseconds(),
			Success:    err == nil,
		}
		if err != nil {
			lookup.ErrorMessage = err.Error()
		} else if result != nil && len(result.Content) > 0 {
			if text, ok := result.Content[0].(*mcp.TextContent); ok {
				lookup.Report = text.Text
			}
		}

		// Recording must not delay the caller or depend on the request context.
		go func() { //nolint:contextcheck
			if saveErr := store.SaveLookup(context.Background(), lookup); saveErr != nil {
				reqLogger.Error().Err(saveErr).Msg("failed to record lookup")
			}
		}()

		return result, output, err
	}
}
