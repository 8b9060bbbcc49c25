package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/shodan-mcp/pkg/models"
	"github.com/tb0hdan/shodan-mcp/pkg/server"
	"github.com/tb0hdan/shodan-mcp/pkg/storage"
	"github.com/tb0hdan/shodan-mcp/pkg/tools"
	"github.com/tb0hdan/shodan-mcp/pkg/types"
)

const toolName = "lookup_history"

var ErrNoStorage = errors.New("lookup history requires a database")

type Input struct {
	Action        string `json:"action" jsonschema:"One of list, get, delete, clear or prune." validate:"required,oneof=list get delete clear prune"`
	ID            uint   `json:"id,omitempty" jsonschema:"Lookup id for get and delete."`
	Tool          string `json:"tool,omitempty" jsonschema:"Only list lookups made with this tool."`
	FailedOnly    bool   `json:"failed_only,omitempty" jsonschema:"Only list lookups that returned an error."`
	Limit         int    `json:"limit,omitempty" jsonschema:"Page size for list (max 100). Defaults to 10." validate:"min=0,max=100"`
	Offset        int    `json:"offset,omitempty" jsonschema:"Number of lookups to skip for list." validate:"min=0"`
	OlderThanDays int    `json:"older_than_days,omitempty" jsonschema:"Age in days beyond which prune removes lookups." validate:"min=0"`
}

// Entry is the list view of a lookup. The report body is left to get.
type Entry struct {
	ID         uint      `json:"id"`
	RequestID  string    `json:"request_id"`
	Tool       string    `json:"tool"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	Age        string    `json:"age"`
}

type ListReport struct {
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	Lookups []Entry `json:"lookups"`
}

type DetailReport struct {
	models.Lookup
	Age string `json:"age"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	store     storage.Storage
	now       func() time.Time
}

func (t *Tool) Name() string {
	return toolName
}

func (t *Tool) Register(srv *server.Server) error {
	if srv.Storage() == nil {
		return ErrNoStorage
	}

	tool := &mcp.Tool{
		Name: toolName,
		Description: "Browse and manage the audit log of past lookups. Actions: list (paginated, optional tool " +
			"and failed_only filters), get (by id), delete (by id), clear (all), prune (older than older_than_days).",
	}

	t.store = srv.Storage()

	mcp.AddTool(&srv.Server, tool, t.HistoryHandler)
	t.logger.Debug().Msgf("%s tool registered", toolName)

	return nil
}

func (t *Tool) HistoryHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	switch input.Action {
	case "list":
		return t.list(ctx, input)

	case "get":
		if input.ID == 0 {
			return nil, nil, errors.New("id is required for get action")
		}
		lookup, err := t.store.GetLookup(ctx, input.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("lookup not found: %w", err)
		}
		result, err := tools.TextResult(DetailReport{Lookup: *lookup, Age: humanize.RelTime(lookup.CreatedAt, t.now(), "ago", "from now")})
		return result, nil, err

	case "delete":
		if input.ID == 0 {
			return nil, nil, errors.New("id is required for delete action")
		}
		if err := t.store.DeleteLookup(ctx, input.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to delete lookup: %w", err)
		}
		return text(fmt.Sprintf("Lookup %d deleted successfully", input.ID)), nil, nil

	case "clear":
		if err := t.store.DeleteAllLookups(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to clear lookups: %w", err)
		}
		t.logger.Info().Msg("lookup history cleared")
		return text("All lookup history cleared"), nil, nil

	case "prune":
		if input.OlderThanDays == 0 {
			return nil, nil, errors.New("older_than_days is required for prune action")
		}
		cutoff := t.now().AddDate(0, 0, -input.OlderThanDays)
		removed, err := t.store.PruneLookups(ctx, cutoff)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to prune lookups: %w", err)
		}
		t.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("lookup history pruned")
		return text(fmt.Sprintf("Pruned %s lookups older than %s", humanize.Comma(removed), humanize.Time(cutoff))), nil, nil
	}

	return nil, nil, fmt.Errorf("unsupported action %q", input.Action)
}

func (t *Tool) list(ctx context.Context, input Input) (*mcp.CallToolResult, any, error) {
	limit := types.DefaultHistoryLimit
	if input.Limit > 0 {
		limit = input.Limit
	}

	lookups, total, err := t.store.ListLookups(ctx, models.LookupFilter{
		Tool:       input.Tool,
		FailedOnly: input.FailedOnly,
		Limit:      limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list lookups: %w", err)
	}

	now := t.now()
	entries := make([]Entry, 0, len(lookups))
	for _, l := range lookups {
		entries = append(entries, Entry{
			ID:         l.ID,
			RequestID:  l.RequestID,
			Tool:       l.Tool,
			Success:    l.Success,
			Error:      l.ErrorMessage,
			DurationMs: l.DurationMs,
			CreatedAt:  l.CreatedAt,
			Age:        humanize.RelTime(l.CreatedAt, now, "ago", "from now"),
		})
	}

	result, err := tools.TextResult(ListReport{
		Total:   total,
		Limit:   limit,
		Offset:  input.Offset,
		Lookups: entries,
	})
	return result, nil, err
}

func text(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func New(logger zerolog.Logger) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: validator.New(),
		now:       time.Now,
	}
}
