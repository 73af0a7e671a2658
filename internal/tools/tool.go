package tools

import (
	"bytes"
	"context"
	"encoding/json"

	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

// input constrains P to be *In carrying an agency id.
type input[In any] interface {
	*In
	scoped
}

// typedTool binds a handler to its input type so every transport can infer
// the same schema.
type typedTool[In any, P input[In]] struct {
	info   Info
	handle func(ctx context.Context, agencyID uuid.UUID, in *In) (any, error)
}

func newTool[In any, P input[In]](name, description string, readOnly bool, handle func(ctx context.Context, agencyID uuid.UUID, in *In) (any, error)) Tool {
	return &typedTool[In, P]{
		info:   Info{Name: name, Description: description, ReadOnly: readOnly},
		handle: handle,
	}
}

func (t *typedTool[In, P]) Info() Info { return t.info }

func (t *typedTool[In, P]) call(ctx context.Context, r *Registry, in In) Response {
	return r.run(ctx, t.info.Name, P(&in), func(ctx context.Context, agencyID uuid.UUID) (any, error) {
		return t.handle(ctx, agencyID, &in)
	})
}

func (t *typedTool[In, P]) invokeJSON(ctx context.Context, r *Registry, raw json.RawMessage) Response {
	var in In
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return failure(apperr.Validation("invalid arguments: " + err.Error()))
		}
	}
	return t.call(ctx, r, in)
}

func (t *typedTool[In, P]) adkTool(r *Registry) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        t.info.Name,
		Description: t.info.Description,
	}, func(ctx tool.Context, in In) (Response, error) {
		return t.call(ctx, r, in), nil
	})
}

func (t *typedTool[In, P]) addToMCP(r *Registry, server *mcp.Server) {
	destructive := false
	openWorld := false
	mcp.AddTool(server, &mcp.Tool{
		Name:        t.info.Name,
		Description: t.info.Description,
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    t.info.ReadOnly,
			DestructiveHint: &destructive,
			OpenWorldHint:   &openWorld,
		},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		resp := t.call(ctx, r, in)
		payload, err := json.Marshal(resp)
		if err != nil {
			return nil, nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
			IsError: !resp.OK,
		}, nil, nil
	})
}
