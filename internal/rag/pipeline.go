package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/embedding"
	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
	"github.com/Ntrakiyski/rag-chat-api/pkg/websearch"
)

const (
	ragPrompt = "Based on the following context, answer the question:\n\nContext:\n%s\n\nQuestion: %s\nAnswer:"

	webSearchPrefix = "(Web Search Result) "

	// Source recorded on resources produced by the web fallback.
	WebSearchSource = "web_search"
)

// Answer is the outcome of one chat question.
type Answer struct {
	Text      string
	Resources []session.Resource
}

// Pipeline answers questions with a three-stage fallback: indexed content
// first, then web search, then a plain completion over the chat transcript.
type Pipeline struct {
	index    vectorindex.Index
	embedder embedding.Provider
	chat     llm.LLMProvider
	search   websearch.Provider
	topK     int
	log      logger.ILogger
}

func NewPipeline(index vectorindex.Index, embedder embedding.Provider, chat llm.LLMProvider, search websearch.Provider, topK int, log logger.ILogger) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		index:    index,
		embedder: embedder,
		chat:     chat,
		search:   search,
		topK:     topK,
		log:      log,
	}
}

// Answer resolves one question for a session. The record must already carry
// the user's question as the last history entry, since the contextless and
// fallback paths complete over the whole transcript.
//
// An llm.ErrInvalidModel from a model override propagates unchanged so the
// caller can turn it into a hint instead of a failure.
func (p *Pipeline) Answer(ctx context.Context, rec *session.Record, question, model string) (*Answer, error) {
	var opts []llm.Option
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}

	// Sessions without a knowledge base chat directly with the model.
	if !rec.ContextIsReady {
		text, err := p.chat.Chat(ctx, transcript(rec), opts...)
		if err != nil {
			return nil, err
		}
		return &Answer{Text: text, Resources: []session.Resource{}}, nil
	}

	text, resources, err := p.queryIndexed(ctx, rec, question, opts)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidModel) {
			return nil, err
		}
		// Retrieval failures degrade to the fallback chain rather than
		// failing the chat turn.
		p.log.Warn("rag", "Vector retrieval failed, escalating to fallback", map[string]interface{}{
			"session_id": rec.UserSessionId,
			"error":      err.Error(),
		})
		text, resources = "", []session.Resource{}
	}

	if sufficient(text) {
		return &Answer{Text: text, Resources: resources}, nil
	}

	p.log.Info("rag", "No direct answer in indexed content, attempting web search", map[string]interface{}{
		"session_id": rec.UserSessionId,
	})

	webResults, err := p.search.Search(ctx, question)
	if err != nil {
		p.log.Error("rag", "Web search failed", map[string]interface{}{
			"session_id": rec.UserSessionId,
			"error":      err.Error(),
		})
		webResults = ""
	}

	if webResults != "" {
		resources = append(resources, session.Resource{Source: WebSearchSource, TextSnippet: webResults})
		return &Answer{Text: webSearchPrefix + webResults, Resources: resources}, nil
	}

	// Last resort: a plain completion over the transcript.
	text, err = p.chat.Chat(ctx, transcript(rec), opts...)
	if err != nil {
		return nil, err
	}
	return &Answer{Text: text, Resources: resources}, nil
}

// queryIndexed searches every active namespace, merges the hits best-first
// and asks the model to answer from that context. Missing namespaces are
// skipped; zero hits overall returns an empty answer so the caller escalates.
func (p *Pipeline) queryIndexed(ctx context.Context, rec *session.Record, question string, opts []llm.Option) (string, []session.Resource, error) {
	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("embed question: %w", err)
	}

	var all []vectorindex.Match
	for _, name := range rec.ActiveNamespaces {
		matches, err := p.index.Search(ctx, name, vector, p.topK)
		if err != nil {
			if errors.Is(err, vectorindex.ErrCollectionNotFound) {
				p.log.Warn("rag", "Namespace not found, skipping", map[string]interface{}{
					"session_id": rec.UserSessionId,
					"namespace":  name,
				})
				continue
			}
			return "", nil, err
		}
		all = append(all, matches...)
	}

	vectorindex.SortByScore(all)

	if len(all) == 0 {
		return "", []session.Resource{}, nil
	}

	contextParts := make([]string, 0, len(all))
	resources := make([]session.Resource, 0, len(all))
	for _, match := range all {
		contextParts = append(contextParts, match.Payload.Text)
		resources = append(resources, session.Resource{
			Source:      match.Payload.Source,
			TextSnippet: match.Payload.Text,
		})
	}

	prompt := fmt.Sprintf(ragPrompt, strings.Join(contextParts, "\n"), question)
	text, err := p.chat.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", nil, err
	}
	return text, resources, nil
}

// sufficient reports whether a retrieval answer actually answers. Empty
// answers and the model's own "cannot answer" / "no relevant context"
// hedges all count as misses.
func sufficient(answer string) bool {
	if answer == "" {
		return false
	}
	lower := strings.ToLower(answer)
	return !strings.Contains(lower, "cannot answer") && !strings.Contains(lower, "no relevant context")
}

func transcript(rec *session.Record) []llm.Message {
	messages := make([]llm.Message, 0, len(rec.ChatHistory))
	for _, turn := range rec.ChatHistory {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}
