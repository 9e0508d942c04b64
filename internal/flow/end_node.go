package flow

import (
	"context"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
)

// EndNode is the terminal sink every flow routes into. It does nothing but
// mark the end of the run in the log; with no outgoing edges, the engine
// stops here.
type EndNode struct {
	log logger.ILogger
}

func NewEndNode(log logger.ILogger) *EndNode {
	return &EndNode{log: log}
}

func (n *EndNode) Name() string { return "end" }

func (n *EndNode) Prepare(ctx context.Context, fc *Context) (any, error) {
	return nil, nil
}

func (n *EndNode) Execute(ctx context.Context, fc *Context, _ any) (any, error) {
	return nil, nil
}

func (n *EndNode) Finalize(ctx context.Context, fc *Context, _, _ any) (Action, error) {
	n.log.Debug("flow", "Flow finished", map[string]interface{}{
		"session_id": fc.SessionID,
		"error":      fc.ErrorMessage,
	})
	return ActionDefault, nil
}
