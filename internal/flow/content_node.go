package flow

import (
	"context"
	"strings"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/rag"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/content"
)

// contentResult carries the acquisition outcome from Execute to Finalize.
// Exactly one of content or failure is set.
type contentResult struct {
	content string
	failure string
}

// ContentNode turns the session's input into a searchable knowledge base:
// acquire the raw text, window and embed it, store the vectors and flip the
// session to ready. Each stage that fails marks the session with a message a
// user can act on.
type ContentNode struct {
	sessions  session.Store
	crawler   content.Crawler
	extractor content.DocumentExtractor
	indexer   *rag.Indexer
	maxPages  int
	log       logger.ILogger
}

func NewContentNode(
	sessions session.Store,
	crawler content.Crawler,
	extractor content.DocumentExtractor,
	indexer *rag.Indexer,
	maxPages int,
	log logger.ILogger,
) *ContentNode {
	return &ContentNode{
		sessions:  sessions,
		crawler:   crawler,
		extractor: extractor,
		indexer:   indexer,
		maxPages:  maxPages,
		log:       log,
	}
}

func (n *ContentNode) Name() string { return "content" }

func (n *ContentNode) Prepare(ctx context.Context, fc *Context) (any, error) {
	n.log.Info("flow", "Processing content input", map[string]interface{}{
		"session_id": fc.SessionID,
		"input_type": fc.InputType,
	})
	return nil, nil
}

// Execute acquires the raw text. Acquisition problems are handled here, not
// propagated: an unreachable site or unparseable document fails this session
// with a clear message rather than aborting the whole run.
func (n *ContentNode) Execute(ctx context.Context, fc *Context, _ any) (any, error) {
	switch fc.InputType {
	case "website":
		text, err := n.crawler.Crawl(ctx, fc.InputValue, n.maxPages)
		if err != nil {
			n.log.Error("flow", "Website crawl failed", map[string]interface{}{
				"session_id": fc.SessionID,
				"url":        fc.InputValue,
				"error":      err.Error(),
			})
			return contentResult{failure: "Failed to crawl website."}, nil
		}
		if strings.TrimSpace(text) == "" {
			return contentResult{failure: "Failed to crawl website."}, nil
		}
		return contentResult{content: text}, nil

	case "pdf":
		text, err := n.extractor.ExtractText(ctx, fc.InputValue)
		if err != nil {
			n.log.Error("flow", "Document extraction failed", map[string]interface{}{
				"session_id": fc.SessionID,
				"file":       fc.Source(),
				"error":      err.Error(),
			})
			return contentResult{failure: "Failed to extract text from PDF."}, nil
		}
		if strings.TrimSpace(text) == "" {
			return contentResult{failure: "Failed to extract text from PDF."}, nil
		}
		return contentResult{content: text}, nil
	}

	return contentResult{}, nil
}

func (n *ContentNode) Finalize(ctx context.Context, fc *Context, _, exec any) (Action, error) {
	res, _ := exec.(contentResult)

	if res.failure != "" {
		return n.fail(ctx, fc, res.failure)
	}

	if res.content == "" {
		if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
			rec.ContextIsReady = false
			rec.SetStatus(session.StatusReady, "No content to process.")
		}); err != nil {
			return "", err
		}
		return ActionDefault, nil
	}

	chunks, err := n.indexer.EmbedContent(ctx, fc.Source(), res.content)
	if err != nil {
		n.log.Error("flow", "Embedding batch came back empty", map[string]interface{}{
			"session_id": fc.SessionID,
			"error":      err.Error(),
		})
		return n.fail(ctx, fc, "Failed to create embeddings.")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	combined := strings.Join(texts, " ")

	if _, err := n.indexer.Store(ctx, fc.SessionID, fc.InputType, fc.Source(), chunks); err != nil {
		n.log.Error("flow", "Vector storage failed", map[string]interface{}{
			"session_id": fc.SessionID,
			"error":      err.Error(),
		})
		return n.fail(ctx, fc, "Failed to store embeddings in vector DB.")
	}

	fc.ProcessedContent = combined
	if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
		rec.ProcessedContent = combined
		rec.ContextIsReady = true
		rec.SetStatus(session.StatusReady, "Content processed and ready for chat.")
	}); err != nil {
		return "", err
	}
	return ActionDefault, nil
}

func (n *ContentNode) fail(ctx context.Context, fc *Context, message string) (Action, error) {
	fc.ErrorMessage = message
	if _, err := n.sessions.Update(ctx, fc.SessionID, func(rec *session.Record) {
		rec.SetStatus(session.StatusError, message)
	}); err != nil {
		return "", err
	}
	return ActionError, nil
}
