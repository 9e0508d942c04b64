package websearch

import (
	"context"
	"fmt"

	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
)

// Provider answers a search query with a text summary of web results. An
// empty string with nil error means the search found nothing useful.
type Provider interface {
	Search(ctx context.Context, query string) (string, error)
}

const searchPrompt = "Perform a web search for the following query and summarize the key findings:\n\nQuery: %s\n"

// LLMSearcher runs web searches through a search-capable model (such as the
// perplexity/sonar family). The wrapped provider must already default to that
// model; this type only owns the prompt contract.
type LLMSearcher struct {
	provider llm.LLMProvider
}

var _ Provider = &LLMSearcher{}

func NewLLMSearcher(provider llm.LLMProvider) *LLMSearcher {
	return &LLMSearcher{provider: provider}
}

func (s *LLMSearcher) Search(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(searchPrompt, query)

	result, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("web search for %q: %w", query, err)
	}
	return result, nil
}
