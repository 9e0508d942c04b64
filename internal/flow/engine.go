package flow

import (
	"context"
	"fmt"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
)

// Action labels the outcome of one node run and selects the outgoing edge.
type Action string

const (
	// ActionDefault is the happy-path transition. An empty action from
	// Finalize resolves to it.
	ActionDefault Action = "default"

	// ActionError routes to a terminal node after a failure the node
	// handled itself, with the session already marked accordingly.
	ActionError Action = "error"

	// ActionSkip is returned by a node that decided the rest of the flow
	// has nothing left to do.
	ActionSkip Action = "skip"
)

// Node is one unit of work in a flow, run in three phases: Prepare reads
// what the node needs, Execute does the work, Finalize writes results back
// to the flow context and picks the transition. Flow-local state moves
// between phases through the prep and exec return values; anything that must
// outlive the run goes through the context or the session store.
type Node interface {
	Name() string
	Prepare(ctx context.Context, fc *Context) (any, error)
	Execute(ctx context.Context, fc *Context, prep any) (any, error)
	Finalize(ctx context.Context, fc *Context, prep, exec any) (Action, error)
}

type edgeKey struct {
	node   string
	action Action
}

// Flow is a directed graph of nodes with action-keyed edges. A run starts at
// the start node and ends at the first action with no outgoing edge.
type Flow struct {
	start Node
	edges map[edgeKey]Node
}

func NewFlow(start Node) *Flow {
	return &Flow{start: start, edges: make(map[edgeKey]Node)}
}

// On wires a transition: when from finishes with action, the run continues
// at to.
func (f *Flow) On(from Node, action Action, to Node) *Flow {
	f.edges[edgeKey{node: from.Name(), action: action}] = to
	return f
}

// Then wires the default transition between two nodes.
func (f *Flow) Then(from, to Node) *Flow {
	return f.On(from, ActionDefault, to)
}

// Engine executes flows, one node at a time. It holds no per-run state, so
// one engine serves every flow in the process.
type Engine struct {
	log logger.ILogger
}

func NewEngine(log logger.ILogger) *Engine {
	return &Engine{log: log}
}

// Run walks the flow from its start node against the given context. An error
// from any phase aborts the run and propagates; the caller owns marking the
// session as errored in that case.
func (e *Engine) Run(ctx context.Context, f *Flow, fc *Context) error {
	for node := f.start; node != nil; {
		e.log.Debug("flow", "Running node", map[string]interface{}{
			"node":       node.Name(),
			"session_id": fc.SessionID,
		})

		prep, err := node.Prepare(ctx, fc)
		if err != nil {
			return fmt.Errorf("node %s: prepare: %w", node.Name(), err)
		}

		exec, err := node.Execute(ctx, fc, prep)
		if err != nil {
			return fmt.Errorf("node %s: execute: %w", node.Name(), err)
		}

		action, err := node.Finalize(ctx, fc, prep, exec)
		if err != nil {
			return fmt.Errorf("node %s: finalize: %w", node.Name(), err)
		}
		if action == "" {
			action = ActionDefault
		}

		next, ok := f.edges[edgeKey{node: node.Name(), action: action}]
		if !ok {
			e.log.Debug("flow", "No transition registered, run complete", map[string]interface{}{
				"node":       node.Name(),
				"action":     string(action),
				"session_id": fc.SessionID,
			})
			return nil
		}
		node = next
	}
	return nil
}
