package agent

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"agency_backoffice/internal/tools"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/httpkit"
	"agency_backoffice/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the agent endpoints.
type Handler struct {
	registry *tools.Registry
	asker    Asker
	log      *logger.Logger
}

func NewHandler(registry *tools.Registry, asker Asker, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{registry: registry, asker: asker, log: log}
}

// ListTools handles GET /api/v1/agent/tools
func (h *Handler) ListTools(c *gin.Context) {
	httpkit.OK(c, ToolListResponse{Tools: h.registry.List()})
}

// InvokeTool handles POST /api/v1/agent/tools/:name
//
// The body is the tool's JSON input. The call is bound to the agency of the
// token; an agencyId naming another agency is refused. The response is the
// tool envelope, with the status code derived from the error kind.
func (h *Handler) InvokeTool(c *gin.Context) {
	id, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxToolBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httpkit.Error(c, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	ctx := tools.WithTenant(c.Request.Context(), id.AgencyID)
	resp := h.registry.Invoke(ctx, c.Param("name"), raw)

	status := http.StatusOK
	if !resp.OK && resp.Error != nil {
		status = apperr.StatusFor(apperr.ParseKind(resp.Error.Kind))
	}
	httpkit.JSON(c, status, resp)
}

// Ask handles POST /api/v1/agent/assistant
func (h *Handler) Ask(c *gin.Context) {
	id, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	if h.asker == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Fail(c, apperr.KindValidation, "message is required (max 4000 chars)")
		return
	}

	reply, err := h.asker.Ask(c.Request.Context(), id.AgencyID, req.Message)
	if httpkit.HandleError(c, err) {
		h.log.WithContext(c.Request.Context()).Warn("assistant request failed", "error", err)
		return
	}
	httpkit.OK(c, reply)
}
