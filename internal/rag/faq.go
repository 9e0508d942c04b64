package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/embedding"
	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
)

const faqPrompt = `Generate %d frequently asked questions (FAQs) and their answers based on the following content.
Provide the output as a JSON array of objects, where each object has 'question' and 'answer' keys.

Content:
%s

Example JSON format:
[
  {"question": "What is the capital of France?", "answer": "The capital of France is Paris."}
]`

// FaqGenerator produces FAQs for ingested content in a single completion
// call, then folds them back into the session's vector namespace so chat can
// retrieve them.
type FaqGenerator struct {
	chat     llm.LLMProvider
	embedder embedding.Provider
	indexer  *Indexer
	numFaqs  int
	log      logger.ILogger
}

func NewFaqGenerator(chat llm.LLMProvider, embedder embedding.Provider, indexer *Indexer, numFaqs int, log logger.ILogger) *FaqGenerator {
	if numFaqs <= 0 {
		numFaqs = 5
	}
	return &FaqGenerator{
		chat:     chat,
		embedder: embedder,
		indexer:  indexer,
		numFaqs:  numFaqs,
		log:      log,
	}
}

// Generate asks the model for the whole FAQ set at once. Anything that is
// not a non-empty array of complete question/answer pairs is fatal; there is
// no partial salvage of a half-usable response.
func (g *FaqGenerator) Generate(ctx context.Context, content string) ([]session.FAQ, error) {
	prompt := fmt.Sprintf(faqPrompt, g.numFaqs, content)

	response, err := g.chat.Generate(ctx, prompt, llm.WithJSONResponse())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFaqGeneration, err)
	}

	var faqs []session.FAQ
	if err := json.Unmarshal([]byte(response), &faqs); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON array: %v", ErrFaqGeneration, err)
	}
	if len(faqs) == 0 {
		return nil, fmt.Errorf("%w: model returned no FAQs", ErrFaqGeneration)
	}
	for _, faq := range faqs {
		if faq.Question == "" || faq.Answer == "" {
			return nil, fmt.Errorf("%w: FAQ entry missing question or answer", ErrFaqGeneration)
		}
	}
	return faqs, nil
}

// EmbedIntoNamespace stores the FAQ set as one combined vector in the
// namespace of the content it came from. Failures here only degrade future
// retrieval, so they are logged and swallowed; the FAQs themselves are
// already part of the session.
func (g *FaqGenerator) EmbedIntoNamespace(ctx context.Context, sessionId, inputType, source string, faqs []session.FAQ) {
	if len(faqs) == 0 {
		return
	}

	combined := CombineFaqs(faqs)

	vector, err := g.embedder.Embed(ctx, combined)
	if err != nil {
		g.log.Error("faq", "Failed to embed FAQs for chat context", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}

	chunks := []EmbeddedChunk{{Text: combined, Embedding: vector, Source: source}}
	if _, err := g.indexer.Store(ctx, sessionId, inputType, source, chunks); err != nil {
		g.log.Error("faq", "Failed to upsert FAQs to vector store", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}

	g.log.Info("faq", "FAQs upserted to vector store for context", map[string]interface{}{
		"session_id": sessionId,
		"faqs":       len(faqs),
	})
}

// CombineFaqs renders the FAQ set as one block of text, one pair per
// paragraph.
func CombineFaqs(faqs []session.FAQ) string {
	parts := make([]string, 0, len(faqs))
	for _, faq := range faqs {
		parts = append(parts, fmt.Sprintf("Question: %s\nAnswer: %s", faq.Question, faq.Answer))
	}
	return strings.Join(parts, "\n\n")
}
