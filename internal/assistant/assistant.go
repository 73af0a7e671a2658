// Package assistant runs an LLM agent over the back-office tools so staff can
// ask for work in plain language.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"agency_backoffice/internal/tools"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const appName = "agency_assistant"

const instruction = `You are the back-office assistant of a French real estate agency.
Use the tools to look up contacts and properties, prepare and update contracts, schedule visits, create tasks and draft emails.
Always pass the agencyId given in the request.
When a tool answers with ok=false and suggestions, do not guess: show the suggestions and ask which one is meant.
When a tool answers with warnings, report them.
Never claim an email was sent: drafts are only proposals.
Answer in the user's language, briefly.`

// Reply is the outcome of one request.
type Reply struct {
	Text      string   `json:"text"`
	ToolCalls []string `json:"toolCalls"`
}

// Assistant wraps an ADK runner. Each Ask uses a fresh session.
type Assistant struct {
	runner   *runner.Runner
	sessions session.Service
	log      *logger.Logger
}

// New builds the agent over every tool in the registry.
func New(registry *tools.Registry, llm model.LLM, log *logger.Logger) (*Assistant, error) {
	agentTools, err := registry.ADKTools()
	if err != nil {
		return nil, err
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "BackOfficeAssistant",
		Model:       llm,
		Description: "Real estate back-office assistant working on contacts, properties, contracts, visits and tasks.",
		Instruction: instruction,
		Tools:       agentTools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ADK agent: %w", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ADK runner: %w", err)
	}

	return &Assistant{runner: r, sessions: sessions, log: log}, nil
}

// Ask runs one request for an agency. Tools invoked during the run are bound
// to that agency.
func (a *Assistant) Ask(ctx context.Context, agencyID uuid.UUID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, apperr.Validation("message is required")
	}
	if agencyID == uuid.Nil {
		return Reply{}, apperr.Validation("agencyId is required")
	}
	ctx = tools.WithTenant(ctx, agencyID)

	userID := "agency-" + agencyID.String()
	sessionID := uuid.NewString()
	if _, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return Reply{}, apperr.Wrap(apperr.KindInternal, "could not start assistant session", err)
	}
	defer func() {
		if err := a.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   appName,
			UserID:    userID,
			SessionID: sessionID,
		}); err != nil {
			a.log.WithContext(ctx).Warn("failed to delete assistant session", "sessionId", sessionID, "error", err)
		}
	}()

	message := &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: fmt.Sprintf("agencyId: %s\n\n%s", agencyID, text)}},
	}

	var reply Reply
	var out strings.Builder
	for event, err := range a.runner.Run(ctx, userID, sessionID, message, agent.RunConfig{StreamingMode: agent.StreamingModeNone}) {
		if err != nil {
			return Reply{}, apperr.Wrap(apperr.KindInternal, "assistant run failed", err)
		}
		if event == nil || event.Content == nil || event.Content.Role != genai.RoleModel {
			continue
		}
		for _, part := range event.Content.Parts {
			if part == nil {
				continue
			}
			if part.FunctionCall != nil {
				reply.ToolCalls = append(reply.ToolCalls, part.FunctionCall.Name)
				continue
			}
			if strings.TrimSpace(part.Text) != "" {
				if out.Len() > 0 {
					out.WriteString("\n")
				}
				out.WriteString(part.Text)
			}
		}
	}
	reply.Text = strings.TrimSpace(out.String())

	a.log.WithContext(ctx).Info("assistant replied", "toolCalls", len(reply.ToolCalls))
	return reply, nil
}
