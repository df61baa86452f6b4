package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/deskd/deskd/internal/agents"
	"github.com/deskd/deskd/internal/faq"
	"github.com/deskd/deskd/internal/pipeline"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *mockProcessor) {
	t.Helper()
	proc := &mockProcessor{
		inquiry: pipeline.Inquiry{
			ID:               "mcp-id",
			Category:         agents.CategoryAccount,
			FinalResponse:    "Dear Customer, please use the reset link.",
			ValidationStatus: pipeline.StatusApproved,
			Logged:           true,
		},
	}
	return MCPDeps{
		Pipeline:  proc,
		Search:    &mockSearcher{},
		Responses: &mockResponses{},
		Stats:     NewStats(),
		Ready:     func() bool { return true },
		TopK:      3,
	}, proc
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// --- tests ---

func TestMCPTool_SearchFAQ(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	deps.Search = &mockSearcher{results: []faq.Result{
		{Category: "account", Question: "How do I reset my password?", Answer: "Use the reset link.", Score: 16},
		{Category: "account", Question: "How do I change my email?", Answer: "Go to settings.", Score: 3},
	}}
	handler := mcpSearchFAQ(deps)

	req := makeCallToolRequest("search_faq", map[string]interface{}{
		"query": "reset password",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var results []faq.Result
	if err := json.Unmarshal([]byte(toolText(t, result)), &results); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Question != "How do I reset my password?" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestMCPTool_SearchFAQ_MissingQuery(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpSearchFAQ(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_faq", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing query")
	}
}

func TestMCPTool_SearchFAQ_EmptyResult(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpSearchFAQ(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_faq", map[string]interface{}{
		"query": "nothing matches",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("text = %q, want []", got)
	}
}

func TestMCPTool_SubmitInquiry(t *testing.T) {
	deps, proc := newTestMCPDeps(t)
	handler := mcpSubmitInquiry(deps)

	req := makeCallToolRequest("submit_inquiry", map[string]interface{}{
		"question":       "How do I reset my password?",
		"customer_email": "jo@example.com",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if proc.calls != 1 {
		t.Fatalf("pipeline calls = %d, want 1", proc.calls)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["inquiry_id"] != "mcp-id" {
		t.Errorf("inquiry_id = %v, want mcp-id", body["inquiry_id"])
	}
	if body["validation_status"] != "approved" {
		t.Errorf("validation_status = %v, want approved", body["validation_status"])
	}

	snap := deps.Stats.Snapshot()
	if snap.TotalInquiries != 1 {
		t.Errorf("TotalInquiries = %d, want 1", snap.TotalInquiries)
	}
}

func TestMCPTool_SubmitInquiry_InvalidInput(t *testing.T) {
	deps, proc := newTestMCPDeps(t)
	handler := mcpSubmitInquiry(deps)

	tests := []struct {
		name     string
		question string
		email    string
	}{
		{"question too short", "hi", "jo@example.com"},
		{"question whitespace only", "          ", "jo@example.com"},
		{"invalid email", "How do I reset my password?", "not-an-email"},
		{"display-name email", "How do I reset my password?", "Jo <jo@example.com>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), makeCallToolRequest("submit_inquiry", map[string]interface{}{
				"question":       tt.question,
				"customer_email": tt.email,
			}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected tool error for invalid input")
			}
		})
	}
	if proc.calls != 0 {
		t.Errorf("pipeline calls = %d, want 0 for rejected input", proc.calls)
	}
}

func TestMCPTool_SubmitInquiry_NotReady(t *testing.T) {
	deps, proc := newTestMCPDeps(t)
	deps.Ready = func() bool { return false }
	handler := mcpSubmitInquiry(deps)

	req := makeCallToolRequest("submit_inquiry", map[string]interface{}{
		"question":       "How do I reset my password?",
		"customer_email": "jo@example.com",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error when backend is not configured")
	}
	if proc.calls != 0 {
		t.Errorf("pipeline calls = %d, want 0", proc.calls)
	}
}

func TestMCPTool_RecentResponses(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	deps.Responses = &mockResponses{entries: []string{"first", "second", "third"}}
	handler := mcpRecentResponses(deps)

	result, err := handler(context.Background(), makeCallToolRequest("recent_responses", map[string]interface{}{
		"count": 2,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var responses []string
	if err := json.Unmarshal([]byte(toolText(t, result)), &responses); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(responses) != 2 || responses[0] != "second" {
		t.Errorf("responses = %v, want [second third]", responses)
	}
}

func TestMCPTool_RecentResponses_Empty(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecentResponses(deps)

	result, err := handler(context.Background(), makeCallToolRequest("recent_responses", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("text = %q, want []", got)
	}
}
