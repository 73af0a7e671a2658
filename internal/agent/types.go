package agent

import "agency_backoffice/internal/tools"

// maxToolBody caps a tool invocation payload.
const maxToolBody = 1 << 20

type ToolListResponse struct {
	Tools []tools.Info `json:"tools"`
}

type AskRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}
