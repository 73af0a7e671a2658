// Package tools exposes the workflow operations as named agent tools. One
// registry serves every transport: JSON over HTTP, ADK function tools for the
// in-process assistant and MCP over stdio.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/logger"
	"agency_backoffice/platform/validator"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/adk/tool"
)

// DefaultTimeout bounds a single tool call when none is configured.
const DefaultTimeout = 20 * time.Second

// Response is the envelope every tool returns, whatever the transport.
type Response struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the failure half of Response.
type ErrorBody struct {
	Message     string   `json:"message"`
	Kind        string   `json:"kind"`
	Suggestions []string `json:"suggestions,omitempty"`
	Details     any      `json:"details,omitempty"`
}

// Info describes a tool for listings.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ReadOnly    bool   `json:"readOnly"`
}

// Tool is one registered operation. The unexported methods bind it to each
// transport.
type Tool interface {
	Info() Info
	invokeJSON(ctx context.Context, r *Registry, raw json.RawMessage) Response
	adkTool(r *Registry) (tool.Tool, error)
	addToMCP(r *Registry, server *mcp.Server)
}

// Config tunes the boundary.
type Config struct {
	Timeout time.Duration
	// Tenant, when set, binds calls whose context carries no agency, as if
	// WithTenant had been applied. Used by single-agency deployments.
	Tenant uuid.UUID
}

// Registry owns the tool table and the boundary shared by all calls.
type Registry struct {
	svc      *workflow.Service
	validate *validator.Validator
	timeout  time.Duration
	tenant   uuid.UUID
	log      *logger.Logger
	tools    []Tool
	byName   map[string]Tool
}

// New builds the registry over the workflow service.
func New(svc *workflow.Service, cfg Config, log *logger.Logger) (*Registry, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	r := &Registry{svc: svc, validate: v, timeout: cfg.Timeout, tenant: cfg.Tenant, log: log, byName: map[string]Tool{}}
	for _, t := range r.definitions() {
		name := t.Info().Name
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r.byName[name] = t
		r.tools = append(r.tools, t)
	}
	return r, nil
}

func newValidator() (*validator.Validator, error) {
	v := validator.New()
	rules := map[string][]string{
		"contract_type":   names(domain.ContractTypes),
		"contract_status": names(domain.ContractStatuses),
		"property_status": names(domain.PropertyStatuses),
		"contact_type":    names(domain.ContactTypes),
		"email_type":      workflow.EmailTypes,
		"email_tone":      workflow.Tones,
		"email_language":  workflow.Languages,
	}
	for tag, allowed := range rules {
		if err := v.RegisterOneOf(tag, allowed); err != nil {
			return nil, fmt.Errorf("register %s rule: %w", tag, err)
		}
	}
	return v, nil
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// List returns the tool descriptions sorted by name.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke runs a tool from a raw JSON argument object.
func (r *Registry) Invoke(ctx context.Context, name string, raw json.RawMessage) Response {
	t, ok := r.byName[name]
	if !ok {
		return failure(apperr.NotFound(fmt.Sprintf("unknown tool %q", name)).WithSuggestions(r.toolNames()))
	}
	return t.invokeJSON(ctx, r, raw)
}

// ADKTools converts the registry into ADK function tools.
func (r *Registry) ADKTools() ([]tool.Tool, error) {
	out := make([]tool.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		at, err := t.adkTool(r)
		if err != nil {
			return nil, fmt.Errorf("build tool %s: %w", t.Info().Name, err)
		}
		out = append(out, at)
	}
	return out, nil
}

// RegisterMCP adds every tool to an MCP server.
func (r *Registry) RegisterMCP(server *mcp.Server) {
	for _, t := range r.tools {
		t.addToMCP(r, server)
	}
}

func (r *Registry) toolNames() []string {
	out := make([]string, 0, len(r.tools))
	for _, info := range r.List() {
		out = append(out, info.Name)
	}
	return out
}

type tenantKey struct{}

// WithTenant binds the caller's agency to ctx. Tool inputs naming another
// agency are then rejected, and inputs naming none inherit it.
func WithTenant(ctx context.Context, agencyID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, tenantKey{}, agencyID)
	return context.WithValue(ctx, logger.TenantIDKey, agencyID.String())
}

// TenantFromContext returns the agency bound by WithTenant.
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func reconcileAgency(ctx context.Context, declared string) (uuid.UUID, error) {
	caller, bound := TenantFromContext(ctx)
	declared = strings.TrimSpace(declared)
	if declared == "" {
		if bound {
			return caller, nil
		}
		return uuid.Nil, apperr.Validation("agencyId is required")
	}
	id, err := uuid.Parse(declared)
	if err != nil {
		return uuid.Nil, apperr.Validation("agencyId must be a UUID")
	}
	if bound && id != caller {
		return uuid.Nil, apperr.Forbidden("agencyId does not match the caller's agency")
	}
	return id, nil
}

type scoped interface {
	agency() string
}

// run is the boundary around every handler: tenant reconciliation, schema
// validation, timeout, panic recovery, error mapping and the call log.
func (r *Registry) run(ctx context.Context, name string, in scoped, handle func(ctx context.Context, agencyID uuid.UUID) (any, error)) (resp Response) {
	start := time.Now()
	tenant := ""
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithContext(ctx).Error("tool panicked", "tool", name, "panic", rec, "stack", string(debug.Stack()))
			resp = failure(apperr.Internal("the tool failed unexpectedly"))
		}
		outcome := "ok"
		if !resp.OK && resp.Error != nil {
			outcome = resp.Error.Kind
		}
		r.log.ToolCall(name, tenant, float64(time.Since(start).Milliseconds()), outcome)
	}()

	if _, bound := TenantFromContext(ctx); !bound && r.tenant != uuid.Nil {
		ctx = WithTenant(ctx, r.tenant)
	}
	agencyID, err := reconcileAgency(ctx, in.agency())
	if err != nil {
		return failure(err)
	}
	tenant = agencyID.String()

	if err := r.validate.Struct(in); err != nil {
		problems := validator.Describe(err)
		return failure(apperr.Validation("invalid input: " + strings.Join(problems, "; ")).WithDetails(problems))
	}

	ctx = context.WithValue(ctx, logger.ToolKey, name)
	ctx = context.WithValue(ctx, logger.TenantIDKey, tenant)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := handle(ctx, agencyID)
	if err != nil {
		return failure(err)
	}
	return Response{OK: true, Data: data}
}

func failure(err error) Response {
	appErr, ok := apperr.As(err)
	if !ok {
		kind := apperr.GetKind(err)
		if kind == apperr.KindUnknown {
			kind = apperr.KindInternal
		}
		appErr = apperr.Wrap(kind, err.Error(), err)
	}
	body := &ErrorBody{
		Message:     appErr.Message,
		Kind:        appErr.Kind.String(),
		Suggestions: appErr.Suggestions,
		Details:     appErr.Details,
	}
	return Response{OK: false, Error: body}
}
