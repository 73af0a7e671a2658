package httpkit

import (
	"net/http"

	"agency_backoffice/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-tool error.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Kind        string   `json:"kind,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Details     any      `json:"details,omitempty"`
}

// JSON sends payload with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error sends a plain error for failures that have no domain kind,
// such as an unreadable body.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// Fail sends message with the status code of kind.
func Fail(c *gin.Context, kind apperr.Kind, message string) {
	c.JSON(apperr.StatusFor(kind), ErrorResponse{Error: message, Kind: kind.String()})
}

// HandleError writes err and reports whether there was one. A typed
// *apperr.Error anywhere in the chain supplies status and suggestions.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := apperr.As(err); ok {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:       domainErr.Message,
			Kind:        domainErr.Kind.String(),
			Suggestions: domainErr.Suggestions,
			Details:     domainErr.Details,
		})
		return true
	}

	Fail(c, apperr.GetKind(err), err.Error())
	return true
}
