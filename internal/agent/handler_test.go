package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agency_backoffice/internal/assistant"
	"agency_backoffice/internal/dates"
	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway/gatewaytest"
	apphttp "agency_backoffice/internal/http"
	"agency_backoffice/internal/http/router"
	"agency_backoffice/internal/resolver"
	"agency_backoffice/internal/tools"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const secret = "agent-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAsker struct {
	agency uuid.UUID
	text   string
}

func (f *fakeAsker) Ask(_ context.Context, agencyID uuid.UUID, text string) (assistant.Reply, error) {
	f.agency, f.text = agencyID, text
	return assistant.Reply{Text: "Le mandat est prêt.", ToolCalls: []string{tools.NamePrepareContract}}, nil
}

type server struct {
	engine *gin.Engine
	store  *gatewaytest.Memory
	agency uuid.UUID
	token  string
}

func newServer(t *testing.T, asker Asker) *server {
	t.Helper()
	templates, err := workflow.LoadTemplates(workflow.LanguageFrench)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	store := gatewaytest.New()
	svc := workflow.New(workflow.Deps{
		Gateway:   store,
		Resolver:  resolver.New(store, store, resolver.DefaultOptions(), logger.Nop()),
		Dates:     dates.NewService(time.UTC),
		Templates: templates,
	})
	registry, err := tools.New(svc, tools.Config{}, logger.Nop())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	s := &server{store: store, agency: uuid.New()}
	store.SeedProperty(domain.Property{AgencyID: s.agency, Reference: "APT-001", Status: domain.PropertyPublished,
		Address: domain.Address{Street: "12 rue de la Paix", City: "Paris"}})
	store.SeedContact(domain.Contact{AgencyID: s.agency, FirstName: "Jean", LastName: "Dupont"})
	store.SeedContact(domain.Contact{AgencyID: s.agency, FirstName: "Marie", LastName: "Dupont"})

	s.engine = router.New(&apphttp.App{
		Config:  &config.Config{JWTAccessSecret: secret, CORSAllowAll: true},
		Logger:  logger.Nop(),
		Modules: []apphttp.Module{NewModule(registry, asker, logger.Nop())},
	})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       uuid.NewString(),
		"tenant_id": s.agency.String(),
		"type":      "access",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	s.token = token
	return s
}

func (s *server) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) tools.Response {
	t.Helper()
	var resp tools.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestListTools(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/api/v1/agent/tools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body ToolListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Tools) != 9 {
		t.Fatalf("expected 9 tools, got %d", len(body.Tools))
	}
}

func TestInvokeToolUsesTheTokenAgency(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/agent/tools/resolve_property", `{"query":"APT-001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.OK || !strings.Contains(rec.Body.String(), `"reference":"APT-001"`) {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestInvokeToolStatusFollowsErrorKind(t *testing.T) {
	s := newServer(t, nil)
	cases := []struct {
		name string
		path string
		body string
		code int
		kind string
	}{
		{"other agency", "/api/v1/agent/tools/resolve_contact", `{"agencyId":"` + uuid.NewString() + `","query":"jean"}`, http.StatusForbidden, "forbidden"},
		{"unknown tool", "/api/v1/agent/tools/delete_everything", `{}`, http.StatusNotFound, "not_found"},
		{"ambiguous", "/api/v1/agent/tools/resolve_contact", `{"query":"dupont"}`, http.StatusConflict, "ambiguous"},
		{"invalid input", "/api/v1/agent/tools/resolve_contact", ``, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
			if resp := decodeEnvelope(t, rec); resp.OK || resp.Error == nil || resp.Error.Kind != tc.kind {
				t.Fatalf("unexpected envelope %s", rec.Body.String())
			}
		})
	}
	if s.store.Writes() != 0 {
		t.Fatal("rejected calls must not write")
	}
}

func TestInvokeToolRequiresAToken(t *testing.T) {
	s := newServer(t, nil)
	s.token = "garbage"
	if rec := s.do(http.MethodPost, "/api/v1/agent/tools/resolve_contact", `{"query":"jean"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAssistantEndpoint(t *testing.T) {
	disabled := newServer(t, nil)
	if rec := disabled.do(http.MethodPost, "/api/v1/agent/assistant", `{"message":"hello"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a model, got %d", rec.Code)
	}

	asker := &fakeAsker{}
	s := newServer(t, asker)
	if rec := s.do(http.MethodPost, "/api/v1/agent/assistant", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a message, got %d", rec.Code)
	}

	rec := s.do(http.MethodPost, "/api/v1/agent/assistant", `{"message":"Prépare un mandat pour APT-001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var reply assistant.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Text != "Le mandat est prêt." || asker.agency != s.agency || asker.text != "Prépare un mandat pour APT-001" {
		t.Fatalf("unexpected reply %+v (agency %s)", reply, asker.agency)
	}
}
