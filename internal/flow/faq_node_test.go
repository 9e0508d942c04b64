package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/rag"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
)

type stubChat struct {
	reply string
	err   error
	calls int
}

func (s *stubChat) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubChat) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

type faqFixture struct {
	store *session.MemoryStore
	index *stubIndex
	chat  *stubChat
	flow  *Flow
}

func newFaqFixture(t *testing.T, chat *stubChat) *faqFixture {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	index := &stubIndex{}
	indexer := rag.NewIndexer(store, index, &stubEmbedder{}, rag.NewChunker(600, 128), 3, logger.NewNopLogger())
	generator := rag.NewFaqGenerator(chat, &stubEmbedder{}, indexer, 2, logger.NewNopLogger())
	node := NewFaqNode(store, generator, logger.NewNopLogger())
	end := NewEndNode(logger.NewNopLogger())
	return &faqFixture{store: store, index: index, chat: chat, flow: NewFaqFlow(node, end)}
}

func TestFaqFlowGeneratesAndSavesFaqs(t *testing.T) {
	chat := &stubChat{reply: `[
		{"question": "What is this site about?", "answer": "Examples."},
		{"question": "Who runs it?", "answer": "Nobody knows."}
	]`}
	fx := newFaqFixture(t, chat)

	rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	fc := &Context{
		SessionID:        rec.UserSessionId,
		InputType:        "website",
		InputValue:       "https://example.com",
		ProcessedContent: "The processed site content.",
	}
	err = NewEngine(logger.NewNopLogger()).Run(context.Background(), fx.flow, fc)
	require.NoError(t, err)

	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, stored.Status)
	assert.Equal(t, "FAQs generated and context updated.", stored.Message)
	require.Len(t, stored.GeneratedFaqs, 2)
	assert.Equal(t, "What is this site about?", stored.GeneratedFaqs[0].Question)
	assert.Len(t, fc.GeneratedFaqs, 2)

	namespace := rag.Namespace("website", "https://example.com", rec.UserSessionId)
	points := fx.index.upserts[namespace]
	require.Len(t, points, 1, "the FAQ set lands as one vector in the content namespace")
	assert.Contains(t, points[0].Payload.Text, "Question: What is this site about?")
}

func TestFaqFlowWithoutProcessedContent(t *testing.T) {
	chat := &stubChat{reply: `[]`}
	fx := newFaqFixture(t, chat)

	rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com"}
	err = NewEngine(logger.NewNopLogger()).Run(context.Background(), fx.flow, fc)
	require.NoError(t, err, "a missing-content session fails gracefully, not loudly")

	assert.Zero(t, fx.chat.calls, "no completion call without content")
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusError, stored.Status)
	assert.Equal(t, "No processed content available for FAQ generation.", stored.Message)
}

func TestFaqFlowGenerationFailurePropagates(t *testing.T) {
	chat := &stubChat{err: errors.New("rate limited")}
	fx := newFaqFixture(t, chat)

	rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	fc := &Context{
		SessionID:        rec.UserSessionId,
		InputType:        "website",
		InputValue:       "https://example.com",
		ProcessedContent: "content",
	}
	err = NewEngine(logger.NewNopLogger()).Run(context.Background(), fx.flow, fc)
	require.Error(t, err)
	assert.ErrorIs(t, err, rag.ErrFaqGeneration)

	// The run aborted before any terminal status write; the task runner
	// decides between retry and error.
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusFaqProcessing, stored.Status)
}
