package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// ListRequest represents the arguments for tutorial_list.
type ListRequest struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Query      string `json:"query,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
}

// SearchRequest represents the arguments for tutorial_search.
type SearchRequest struct {
	Query      string `json:"query"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// FetchRequest represents the arguments for tutorial_fetch.
type FetchRequest struct {
	ID           string `json:"id,omitempty"`
	Category     string `json:"category,omitempty"`
	Slug         string `json:"slug,omitempty"`
	RelatedLimit int    `json:"related_limit,omitempty"`
	IncludeBody  *bool  `json:"include_body,omitempty"`
}

// RelatedRequest represents the arguments for tutorial_related.
type RelatedRequest struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// HandleList handles the tutorial_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = h.cfg.PageSize
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Category:   input.Category,
		Difficulty: input.Difficulty,
		Query:      input.Query,
		Page:       input.Page,
		PageSize:   pageSize,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the tutorial_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Query:      input.Query,
		Category:   input.Category,
		Difficulty: input.Difficulty,
		Page:       input.Page,
		Limit:      input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the tutorial_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	relatedLimit := input.RelatedLimit
	if relatedLimit == 0 {
		relatedLimit = h.cfg.RelatedLimit
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:           input.ID,
		Category:     input.Category,
		Slug:         input.Slug,
		RelatedLimit: relatedLimit,
		IncludeBody:  input.IncludeBody,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRelated handles the tutorial_related tool call.
func (h *Handlers) HandleRelated(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RelatedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Related(ctx, h.db, ops.RelatedInput{
		ID:       input.ID,
		Category: input.Category,
		Slug:     input.Slug,
		Limit:    input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryList handles the category_list tool call.
func (h *Handlers) HandleCategoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Categories(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var hErr *errors.HubError
	if stderrors.As(err, &hErr) && hErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    hErr.Code,
			"message": hErr.Message,
			"status":  hErr.Status,
		}
		if hErr.Details != nil {
			errorObj["details"] = hErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
