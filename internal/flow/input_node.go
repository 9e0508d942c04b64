package flow

import (
	"context"
	"fmt"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
)

type inputVerdict int

const (
	inputOK inputVerdict = iota
	inputNone
	inputMissing
	inputInvalid
)

// InputNode gatekeeps the ingestion flow. It classifies the request before
// any external work runs: content inputs proceed, the explicit "none" type
// leaves the session contextless, and anything malformed fails the session
// right here.
type InputNode struct {
	sessions session.Store
	log      logger.ILogger
}

func NewInputNode(sessions session.Store, log logger.ILogger) *InputNode {
	return &InputNode{sessions: sessions, log: log}
}

func (n *InputNode) Name() string { return "input" }

func (n *InputNode) Prepare(ctx context.Context, fc *Context) (any, error) {
	return nil, nil
}

func (n *InputNode) Execute(ctx context.Context, fc *Context, _ any) (any, error) {
	switch {
	case fc.InputType == "none":
		return inputNone, nil
	case fc.InputType == "" || fc.InputValue == "":
		return inputMissing, nil
	case fc.InputType != "website" && fc.InputType != "pdf":
		return inputInvalid, nil
	}
	return inputOK, nil
}

func (n *InputNode) Finalize(ctx context.Context, fc *Context, _, exec any) (Action, error) {
	verdict, _ := exec.(inputVerdict)

	switch verdict {
	case inputNone:
		n.log.Info("flow", "No content input, chat stays contextless", map[string]interface{}{
			"session_id": fc.SessionID,
		})
		if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
			rec.ContextIsReady = false
			rec.SetStatus(session.StatusReady, "No content provided, chat without context.")
		}); err != nil {
			return "", err
		}
		return ActionSkip, nil

	case inputMissing:
		return n.fail(ctx, fc, "Input type or value missing for content processing.")

	case inputInvalid:
		return n.fail(ctx, fc, fmt.Sprintf("Invalid input type: %s. Must be 'website' or 'pdf'.", fc.InputType))
	}

	return ActionDefault, nil
}

func (n *InputNode) fail(ctx context.Context, fc *Context, message string) (Action, error) {
	fc.ErrorMessage = message
	n.log.Error("flow", message, map[string]interface{}{"session_id": fc.SessionID})

	if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
		rec.SetStatus(session.StatusError, message)
	}); err != nil {
		return "", err
	}
	return ActionError, nil
}
