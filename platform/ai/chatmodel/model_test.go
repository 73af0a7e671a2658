package chatmodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestGenerateContentRoundTrip(t *testing.T) {
	var got request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"resolve_property","arguments":"{\"query\":\"APT-001\"}"}}]}}]}`))
	}))
	defer server.Close()

	m := New(Config{APIKey: "secret", BaseURL: server.URL + "/", Model: "test-model"})
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			{Role: "user", Parts: []*genai.Part{{Text: "Find APT-001"}}},
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: "You are a back-office assistant."}}},
			Tools: []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{
				{Name: "resolve_property", Description: "find a property", ParametersJsonSchema: map[string]any{"type": "object"}},
			}}},
		},
	}

	var resp *model.LLMResponse
	for r, err := range m.GenerateContent(context.Background(), req, false) {
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		resp = r
	}

	if got.Model != "test-model" || got.ToolChoice != "auto" || len(got.Tools) != 1 {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Find APT-001" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}

	if resp == nil || len(resp.Content.Parts) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	call := resp.Content.Parts[0].FunctionCall
	if call == nil || call.Name != "resolve_property" || call.Args["query"] != "APT-001" {
		t.Fatalf("unexpected function call %+v", call)
	}
}

func TestConvertMessagesSplitsToolResponses(t *testing.T) {
	req := &model.LLMRequest{Contents: []*genai.Content{
		{Role: genai.RoleModel, Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{ID: "c1", Name: "list_properties", Args: map[string]any{}}}}},
		{Role: "user", Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{ID: "c1", Name: "list_properties", Response: map[string]any{"ok": true}}}}},
	}}

	msgs := convertMessages(req)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "assistant" || len(msgs[0].ToolCalls) != 1 {
		t.Fatalf("unexpected assistant message %+v", msgs[0])
	}
	if msgs[1].Role != "tool" || msgs[1].ToolCallID != "c1" || msgs[1].Content != `{"ok":true}` {
		t.Fatalf("unexpected tool message %+v", msgs[1])
	}
}

func TestAPIErrorsSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer server.Close()

	m := New(Config{APIKey: "x", BaseURL: server.URL})
	for _, err := range m.GenerateContent(context.Background(), &model.LLMRequest{}, false) {
		if err == nil {
			t.Fatal("expected an error")
		}
	}
}
