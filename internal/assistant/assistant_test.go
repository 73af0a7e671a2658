package assistant

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"agency_backoffice/internal/dates"
	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway/gatewaytest"
	"agency_backoffice/internal/resolver"
	"agency_backoffice/internal/tools"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// scriptedModel asks for one tool call, then answers with the tool result.
type scriptedModel struct {
	mu       sync.Mutex
	call     *genai.FunctionCall
	response map[string]any
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) GenerateContent(_ context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, c := range req.Contents {
			for _, p := range c.Parts {
				if p != nil && p.FunctionResponse != nil {
					m.response = p.FunctionResponse.Response
					yield(&model.LLMResponse{Content: genai.NewContentFromText("Found it.", genai.RoleModel)}, nil)
					return
				}
			}
		}
		yield(&model.LLMResponse{Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: []*genai.Part{{FunctionCall: m.call}},
		}}, nil)
	}
}

func newAssistant(t *testing.T, llm model.LLM) (*Assistant, uuid.UUID) {
	t.Helper()
	store := gatewaytest.New()
	agency := uuid.New()
	store.SeedProperty(domain.Property{AgencyID: agency, Reference: "APT-001", Status: domain.PropertyPublished,
		Address: domain.Address{Street: "12 rue de la Paix", City: "Paris"}})

	templates, err := workflow.LoadTemplates(workflow.LanguageFrench)
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	svc := workflow.New(workflow.Deps{
		Gateway:   store,
		Resolver:  resolver.New(store, store, resolver.DefaultOptions(), logger.Nop()),
		Dates:     dates.NewService(time.UTC),
		Templates: templates,
		Log:       logger.Nop(),
	})
	registry, err := tools.New(svc, tools.Config{}, logger.Nop())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	a, err := New(registry, llm, logger.Nop())
	if err != nil {
		t.Fatalf("assistant: %v", err)
	}
	return a, agency
}

func TestAskRunsToolsForTheAgency(t *testing.T) {
	llm := &scriptedModel{}
	a, agency := newAssistant(t, llm)
	llm.call = &genai.FunctionCall{
		ID:   "call_1",
		Name: tools.NameResolveProperty,
		Args: map[string]any{"agencyId": agency.String(), "query": "APT-001"},
	}

	reply, err := a.Ask(context.Background(), agency, "Où en est APT-001 ?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if reply.Text != "Found it." {
		t.Fatalf("unexpected reply %q", reply.Text)
	}
	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0] != tools.NameResolveProperty {
		t.Fatalf("unexpected tool calls %v", reply.ToolCalls)
	}
	if ok, _ := llm.response["ok"].(bool); !ok {
		t.Fatalf("tool should have succeeded, got %v", llm.response)
	}
}

func TestAskRejectsEmptyMessages(t *testing.T) {
	a, agency := newAssistant(t, &scriptedModel{})
	if _, err := a.Ask(context.Background(), agency, "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := a.Ask(context.Background(), uuid.Nil, "hello"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
