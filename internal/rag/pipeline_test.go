package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
)

type fakeIndex struct {
	matches   map[string][]vectorindex.Match
	err       error
	upsertErr error
	searched  []string
	ensured   []string
	upserts   map[string][]vectorindex.Point
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	f.ensured = append(f.ensured, name)
	return nil
}

func (f *fakeIndex) Upsert(ctx context.Context, name string, points []vectorindex.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.upserts == nil {
		f.upserts = make(map[string][]vectorindex.Point)
	}
	f.upserts[name] = append(f.upserts[name], points...)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, name string, vector []float32, limit int) ([]vectorindex.Match, error) {
	f.searched = append(f.searched, name)
	if f.err != nil {
		return nil, f.err
	}
	matches, ok := f.matches[name]
	if !ok {
		return nil, vectorindex.ErrCollectionNotFound
	}
	return matches, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeChat struct {
	chatReply     string
	chatErr       error
	generateReply string
	generateErr   error
	chatCalls     [][]llm.Message
	generateCalls []string
}

func (f *fakeChat) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.chatCalls = append(f.chatCalls, history)
	return f.chatReply, f.chatErr
}

func (f *fakeChat) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.generateCalls = append(f.generateCalls, prompt)
	return f.generateReply, f.generateErr
}

type fakeSearch struct {
	result string
	err    error
	calls  int
}

func (f *fakeSearch) Search(ctx context.Context, query string) (string, error) {
	f.calls++
	return f.result, f.err
}

func readyRecord(namespaces ...string) *session.Record {
	rec := session.NewRecord("website", "https://example.com")
	rec.ContextIsReady = true
	rec.ActiveNamespaces = namespaces
	rec.AppendTurn(session.RoleUser, "What is Go?", nil)
	return rec
}

func TestAnswerWithoutContextChatsDirectly(t *testing.T) {
	chat := &fakeChat{chatReply: "Go is a programming language."}
	search := &fakeSearch{}
	index := &fakeIndex{}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	rec := session.NewRecord("", "")
	rec.AppendTurn(session.RoleUser, "What is Go?", nil)

	answer, err := p.Answer(context.Background(), rec, "What is Go?", "")
	require.NoError(t, err)

	assert.Equal(t, "Go is a programming language.", answer.Text)
	assert.Empty(t, answer.Resources)
	assert.Len(t, chat.chatCalls, 1)
	assert.Equal(t, "What is Go?", chat.chatCalls[0][0].Content)
	assert.Empty(t, index.searched, "contextless sessions must not hit the vector store")
	assert.Zero(t, search.calls)
}

func TestAnswerUsesIndexedContent(t *testing.T) {
	index := &fakeIndex{matches: map[string][]vectorindex.Match{
		"ns-a": {
			{Score: 0.91, Payload: vectorindex.Payload{Text: "Go was created at Google.", Source: "https://example.com"}},
		},
		"ns-b": {
			{Score: 0.97, Payload: vectorindex.Payload{Text: "Go has goroutines.", Source: "guide.pdf"}},
		},
	}}
	chat := &fakeChat{generateReply: "Go is a language from Google with goroutines."}
	search := &fakeSearch{}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-a", "ns-b"), "What is Go?", "")
	require.NoError(t, err)

	assert.Equal(t, "Go is a language from Google with goroutines.", answer.Text)
	require.Len(t, answer.Resources, 2)
	assert.Equal(t, "guide.pdf", answer.Resources[0].Source, "resources must be ordered best score first")
	assert.Equal(t, "https://example.com", answer.Resources[1].Source)
	assert.Equal(t, []string{"ns-a", "ns-b"}, index.searched)
	assert.Zero(t, search.calls, "a sufficient answer must not trigger web search")
}

func TestAnswerSkipsMissingNamespaces(t *testing.T) {
	index := &fakeIndex{matches: map[string][]vectorindex.Match{
		"ns-live": {
			{Score: 0.8, Payload: vectorindex.Payload{Text: "chunk", Source: "guide.pdf"}},
		},
	}}
	chat := &fakeChat{generateReply: "Answered from the surviving namespace."}
	p := NewPipeline(index, &fakeEmbedder{}, chat, &fakeSearch{}, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-gone", "ns-live"), "question", "")
	require.NoError(t, err)

	assert.Equal(t, "Answered from the surviving namespace.", answer.Text)
	assert.Len(t, answer.Resources, 1)
}

func TestAnswerFallsBackToWebSearch(t *testing.T) {
	// Every namespace is missing, so retrieval yields nothing and the web
	// stage answers.
	index := &fakeIndex{}
	chat := &fakeChat{}
	search := &fakeSearch{result: "Go 1.24 added generics improvements."}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-gone"), "What changed in Go 1.24?", "")
	require.NoError(t, err)

	assert.Equal(t, "(Web Search Result) Go 1.24 added generics improvements.", answer.Text)
	require.Len(t, answer.Resources, 1)
	assert.Equal(t, WebSearchSource, answer.Resources[0].Source)
	assert.Equal(t, "Go 1.24 added generics improvements.", answer.Resources[0].TextSnippet)
	assert.Empty(t, chat.generateCalls, "no context means no retrieval completion")
	assert.Empty(t, chat.chatCalls)
}

func TestAnswerInsufficientRetrievalKeepsResourcesAndAddsWeb(t *testing.T) {
	index := &fakeIndex{matches: map[string][]vectorindex.Match{
		"ns-a": {
			{Score: 0.5, Payload: vectorindex.Payload{Text: "unrelated chunk", Source: "guide.pdf"}},
		},
	}}
	chat := &fakeChat{generateReply: "I cannot answer this question based on the provided context."}
	search := &fakeSearch{result: "found on the web"}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-a"), "question", "")
	require.NoError(t, err)

	assert.Equal(t, "(Web Search Result) found on the web", answer.Text)
	require.Len(t, answer.Resources, 2)
	assert.Equal(t, "guide.pdf", answer.Resources[0].Source)
	assert.Equal(t, WebSearchSource, answer.Resources[1].Source)
}

func TestAnswerWebEmptyFallsBackToTranscript(t *testing.T) {
	index := &fakeIndex{}
	chat := &fakeChat{chatReply: "best effort answer"}
	search := &fakeSearch{result: ""}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-gone"), "question", "")
	require.NoError(t, err)

	assert.Equal(t, "best effort answer", answer.Text)
	assert.Empty(t, answer.Resources)
	assert.Len(t, chat.chatCalls, 1)
}

func TestAnswerVectorFailureDegradesToFallback(t *testing.T) {
	index := &fakeIndex{err: errors.New("connection refused")}
	chat := &fakeChat{}
	search := &fakeSearch{result: "rescued by the web"}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-a"), "question", "")
	require.NoError(t, err)

	assert.Equal(t, "(Web Search Result) rescued by the web", answer.Text)
	require.Len(t, answer.Resources, 1)
	assert.Equal(t, WebSearchSource, answer.Resources[0].Source)
}

func TestAnswerWebFailureFallsBackToTranscript(t *testing.T) {
	index := &fakeIndex{}
	chat := &fakeChat{chatReply: "still answered"}
	search := &fakeSearch{err: errors.New("search provider down")}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	answer, err := p.Answer(context.Background(), readyRecord("ns-gone"), "question", "")
	require.NoError(t, err)

	assert.Equal(t, "still answered", answer.Text)
	assert.Empty(t, answer.Resources)
}

func TestAnswerInvalidModelPropagates(t *testing.T) {
	index := &fakeIndex{matches: map[string][]vectorindex.Match{
		"ns-a": {
			{Score: 0.9, Payload: vectorindex.Payload{Text: "chunk", Source: "guide.pdf"}},
		},
	}}
	chat := &fakeChat{generateErr: llm.ErrInvalidModel}
	search := &fakeSearch{}
	p := NewPipeline(index, &fakeEmbedder{}, chat, search, 3, logger.NewNopLogger())

	_, err := p.Answer(context.Background(), readyRecord("ns-a"), "question", "bogus/model")
	require.Error(t, err)

	assert.ErrorIs(t, err, llm.ErrInvalidModel)
	assert.Zero(t, search.calls, "an invalid model must not be masked by the fallback chain")
}

func TestSufficient(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"", false},
		{"I cannot answer this question based on the provided context.", false},
		{"Sorry, there is NO RELEVANT CONTEXT for that.", false},
		{"I CANNOT ANSWER that.", false},
		{"Go is a programming language.", true},
	}
	for _, tt := range tests {
		if got := sufficient(tt.answer); got != tt.want {
			t.Errorf("sufficient(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}
