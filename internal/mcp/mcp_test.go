package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/ops"
)

// testSetup creates a temporary database seeded with the built-in catalog.
func testSetup(t *testing.T) (*sql.DB, *config.Config, func()) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	if _, err := ops.Seed(context.Background(), database); err != nil {
		t.Fatalf("failed to seed db: %v", err)
	}

	cleanup := func() {
		database.Close()
	}

	return database, config.DefaultConfig(), cleanup
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// TestHandleList tests the tutorial_list handler.
func TestHandleList(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantItems int
		wantTotal int
		errorCode string
	}{
		{
			name:      "defaults use configured page size",
			args:      map[string]any{},
			wantItems: 12,
			wantTotal: 16,
		},
		{
			name:      "category and difficulty",
			args:      map[string]any{"category": "go", "difficulty": "intermediate"},
			wantItems: 2,
			wantTotal: 2,
		},
		{
			name:      "last partial page",
			args:      map[string]any{"page": 4, "page_size": 5},
			wantItems: 1,
			wantTotal: 16,
		},
		{
			name:      "query",
			args:      map[string]any{"query": "docker"},
			wantItems: 2,
			wantTotal: 2,
		},
		{
			name:      "unknown difficulty",
			args:      map[string]any{"difficulty": "expert"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "wrong argument type",
			args:      map[string]any{"page": "two"},
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleList(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.errorCode != "" {
				if !result.IsError {
					t.Fatalf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}

			var out ops.ListOutput
			parseInto(t, result, &out)
			if len(out.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(out.Items), tt.wantItems)
			}
			if out.Pagination.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", out.Pagination.Total, tt.wantTotal)
			}
		})
	}
}

func TestHandleList_OmitsBodies(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	result, _ := h.HandleList(context.Background(), makeRequest(map[string]any{"category": "go", "page_size": 100}))

	var out ops.ListOutput
	parseInto(t, result, &out)
	for _, item := range out.Items {
		if item.Body != "" {
			t.Errorf("item %s has a body in list output", item.ID)
		}
	}
}

// TestHandleSearch tests the tutorial_search handler.
func TestHandleSearch(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	t.Run("match with snippet", func(t *testing.T) {
		result, err := h.HandleSearch(ctx, makeRequest(map[string]any{"query": "lambda"}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}

		var out ops.SearchOutput
		parseInto(t, result, &out)
		if len(out.Items) != 1 || out.Items[0].ID != "aws-002" {
			t.Fatalf("items = %+v, want only aws-002", out.Items)
		}
		if !strings.Contains(out.Items[0].Snippet, "<b>Lambda</b>") {
			t.Errorf("snippet = %q, want highlighted match", out.Items[0].Snippet)
		}
	})

	errCases := []struct {
		name string
		args map[string]any
	}{
		{"missing query", map[string]any{}},
		{"blank query", map[string]any{"query": "   "}},
		{"query too long", map[string]any{"query": strings.Repeat("a", ops.MaxQueryLength+1)}},
		{"bad difficulty", map[string]any{"query": "go", "difficulty": "hard"}},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleSearch(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected error result, got success")
			}
			assertErrorCode(t, result, "INVALID_REQUEST")
		})
	}
}

// TestHandleFetch tests the tutorial_fetch handler.
func TestHandleFetch(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "fetch by id",
			args:      map[string]any{"id": "go-001"},
			wantError: false,
		},
		{
			name:      "fetch by category and slug",
			args:      map[string]any{"category": "Go", "slug": "Getting-Started"},
			wantError: false,
		},
		{
			name:      "fetch non-existent",
			args:      map[string]any{"category": "go", "slug": "does-not-exist"},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
		{
			name:      "fetch with ambiguous addressing",
			args:      map[string]any{"id": "go-001", "category": "go", "slug": "getting-started"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "fetch with slug only",
			args:      map[string]any{"slug": "getting-started"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "fetch with no addressing",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleFetch(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
				return
			}

			var out ops.FetchOutput
			parseInto(t, result, &out)
			if out.ID != "go-001" {
				t.Errorf("id = %q, want go-001", out.ID)
			}
			if out.Path != "/tutorials/go/getting-started" {
				t.Errorf("path = %q", out.Path)
			}
			if out.CategoryInfo.Name != "Go" || out.CategoryInfo.TutorialCount != 4 {
				t.Errorf("category_info = %+v", out.CategoryInfo)
			}
			if !strings.Contains(out.Body, "## Install") {
				t.Error("expected body by default")
			}
			if len(out.Related) != cfg.RelatedLimit {
				t.Errorf("related = %d, want %d", len(out.Related), cfg.RelatedLimit)
			}
		})
	}
}

func TestHandleFetch_WithoutBody(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	result, _ := h.HandleFetch(context.Background(), makeRequest(map[string]any{
		"id":            "go-001",
		"include_body":  false,
		"related_limit": 1,
	}))

	output := parseOutput(t, result)
	if _, ok := output["body"]; ok {
		t.Error("expected body to be omitted")
	}
	related := output["related"].([]any)
	if len(related) != 1 {
		t.Fatalf("related = %d, want 1", len(related))
	}
	if id := related[0].(map[string]any)["id"]; id != "py-001" {
		t.Errorf("related[0] = %v, want py-001", id)
	}
}

// TestHandleRelated tests the tutorial_related handler.
func TestHandleRelated(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	result, err := h.HandleRelated(ctx, makeRequest(map[string]any{"category": "go", "slug": "goroutines-and-channels", "limit": 20}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var out ops.RelatedOutput
	parseInto(t, result, &out)
	if out.Subject != "/tutorials/go/goroutines-and-channels" {
		t.Errorf("subject = %q", out.Subject)
	}
	for _, item := range out.Items {
		if item.ID == "go-002" {
			t.Error("subject should not be related to itself")
		}
	}
	if len(out.Items) == 0 {
		t.Error("expected tutorials sharing the go tag")
	}

	result, _ = h.HandleRelated(ctx, makeRequest(map[string]any{"id": "missing"}))
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandleCategoryList tests the category_list handler.
func TestHandleCategoryList(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	result, err := h.HandleCategoryList(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var out ops.CategoriesOutput
	parseInto(t, result, &out)
	if out.Total != 5 {
		t.Fatalf("total = %d, want 5", out.Total)
	}
	wantSlugs := []string{"python", "javascript", "go", "aws", "docker"}
	for i, c := range out.Items {
		if c.Slug != wantSlugs[i] {
			t.Errorf("items[%d].slug = %q, want %q", i, c.Slug, wantSlugs[i])
		}
	}
}

func TestServerRegistration(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	s := NewServer(database, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"tutorial_list",
		"tutorial_search",
		"tutorial_fetch",
		"tutorial_related",
		"category_list",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"tutorial_search", "tutorial_search", "not_a_tool"}
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 4 {
		t.Errorf("registered tool count = %d, want 4", len(tools))
	}
	if _, ok := tools["tutorial_search"]; ok {
		t.Error("disabled tool tutorial_search should not be registered")
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, cfg, "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"tutorial_list", "category_list"}, 0},
		{"one unknown", []string{"tutorial_list", "tutorial_delete"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 5 {
		t.Errorf("AllToolNames() returned %d names, want 5", len(names))
	}
	if names[0] != "category_list" {
		t.Errorf("AllToolNames()[0] = %q, want sorted order", names[0])
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Fatal("expected INTERNAL errors to hide the cause")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != string(errors.ErrInternal) {
		t.Errorf("code=%v, want INTERNAL", errObj["code"])
	}
}

func TestErrorResult_WrappedErrorKeepsCode(t *testing.T) {
	wrapped := fmt.Errorf("tutorials[2]: %w", errors.NewDuplicateSlug("go", "intro"))

	errObj := errorObject(t, errorResult(wrapped))
	if errObj["code"] != string(errors.ErrDuplicateSlug) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrDuplicateSlug)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("abc")))

	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var output map[string]any
	parseInto(t, result, &output)
	return output
}

// parseInto unmarshals the JSON text content of a successful result into v.
func parseInto(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), v); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	if code, _ := errorObject(t, result)["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
