package flow

import (
	"context"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/rag"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
)

type faqPrep struct {
	content string
	failed  bool
}

// FaqNode generates the FAQ set for a session's processed content, folds it
// into the session's vector namespace and saves it on the record.
type FaqNode struct {
	sessions  session.Store
	generator *rag.FaqGenerator
	log       logger.ILogger
}

func NewFaqNode(sessions session.Store, generator *rag.FaqGenerator, log logger.ILogger) *FaqNode {
	return &FaqNode{sessions: sessions, generator: generator, log: log}
}

func (n *FaqNode) Name() string { return "faq" }

func (n *FaqNode) Prepare(ctx context.Context, fc *Context) (any, error) {
	if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
		rec.SetStatus(session.StatusFaqProcessing, "FAQ generation in progress.")
	}); err != nil {
		return nil, err
	}

	if fc.ProcessedContent == "" {
		message := "No processed content available for FAQ generation."
		fc.ErrorMessage = message
		n.log.Error("flow", message, map[string]interface{}{"session_id": fc.SessionID})
		if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
			rec.SetStatus(session.StatusError, message)
		}); err != nil {
			return nil, err
		}
		return faqPrep{failed: true}, nil
	}

	return faqPrep{content: fc.ProcessedContent}, nil
}

// Execute lets generation errors propagate. The task runner retries the
// whole flow on them, which a session without content must never trigger;
// that case was already settled in Prepare.
func (n *FaqNode) Execute(ctx context.Context, fc *Context, prep any) (any, error) {
	p, _ := prep.(faqPrep)
	if p.failed {
		return nil, nil
	}

	faqs, err := n.generator.Generate(ctx, p.content)
	if err != nil {
		return nil, err
	}

	n.log.Info("flow", "Generated FAQs", map[string]interface{}{
		"session_id": fc.SessionID,
		"faqs":       len(faqs),
	})
	return faqs, nil
}

func (n *FaqNode) Finalize(ctx context.Context, fc *Context, prep, exec any) (Action, error) {
	p, _ := prep.(faqPrep)
	if p.failed {
		return ActionError, nil
	}

	faqs, _ := exec.([]session.FAQ)
	fc.GeneratedFaqs = faqs

	n.generator.EmbedIntoNamespace(ctx, fc.SessionID, fc.InputType, fc.Source(), faqs)

	if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
		rec.GeneratedFaqs = faqs
		rec.SetStatus(session.StatusReady, "FAQs generated and context updated.")
	}); err != nil {
		return "", err
	}
	return ActionDefault, nil
}
