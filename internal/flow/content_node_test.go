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
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
)

type stubIndex struct {
	upsertErr error
	upserts   map[string][]vectorindex.Point
}

func (s *stubIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	return nil
}

func (s *stubIndex) Upsert(ctx context.Context, name string, points []vectorindex.Point) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if s.upserts == nil {
		s.upserts = make(map[string][]vectorindex.Point)
	}
	s.upserts[name] = append(s.upserts[name], points...)
	return nil
}

func (s *stubIndex) Search(ctx context.Context, name string, vector []float32, limit int) ([]vectorindex.Match, error) {
	return nil, vectorindex.ErrCollectionNotFound
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

type stubCrawler struct {
	text  string
	err   error
	urls  []string
	pages int
}

func (s *stubCrawler) Crawl(ctx context.Context, url string, maxPages int) (string, error) {
	s.urls = append(s.urls, url)
	s.pages = maxPages
	return s.text, s.err
}

type stubExtractor struct {
	text  string
	err   error
	paths []string
}

func (s *stubExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	s.paths = append(s.paths, filePath)
	return s.text, s.err
}

type contentFixture struct {
	store     *session.MemoryStore
	index     *stubIndex
	crawler   *stubCrawler
	extractor *stubExtractor
	node      *ContentNode
}

func newContentFixture(t *testing.T, embedder *stubEmbedder) *contentFixture {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	index := &stubIndex{}
	crawler := &stubCrawler{}
	extractor := &stubExtractor{}
	indexer := rag.NewIndexer(store, index, embedder, rag.NewChunker(600, 128), 3, logger.NewNopLogger())
	node := NewContentNode(store, crawler, extractor, indexer, 1, logger.NewNopLogger())
	return &contentFixture{store: store, index: index, crawler: crawler, extractor: extractor, node: node}
}

func runContentNode(t *testing.T, node *ContentNode, fc *Context) Action {
	t.Helper()
	exec, err := node.Execute(context.Background(), fc, nil)
	require.NoError(t, err)
	action, err := node.Finalize(context.Background(), fc, nil, exec)
	require.NoError(t, err)
	return action
}

func TestContentNodeIngestsWebsite(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{})
	fx.crawler.text = "Once upon a time there was a website."
	rec, err := fx.store.Create(context.Background(), "website", "https://example.com/docs")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com/docs"}
	action := runContentNode(t, fx.node, fc)

	assert.Equal(t, ActionDefault, action)
	assert.Equal(t, []string{"https://example.com/docs"}, fx.crawler.urls)
	assert.Equal(t, 1, fx.crawler.pages)

	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, stored.Status)
	assert.True(t, stored.ContextIsReady)
	assert.Equal(t, "Content processed and ready for chat.", stored.Message)
	assert.Equal(t, "Once upon a time there was a website.", stored.ProcessedContent)

	namespace := rag.Namespace("website", "https://example.com/docs", rec.UserSessionId)
	assert.Equal(t, []string{namespace}, stored.ActiveNamespaces)
	assert.Len(t, fx.index.upserts[namespace], 1)
	assert.Equal(t, "Once upon a time there was a website.", fc.ProcessedContent)
}

func TestContentNodeUsesOriginalFilenameForPdfNamespace(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{})
	fx.extractor.text = "Chapter one. The report begins."
	rec, err := fx.store.Create(context.Background(), "pdf", "Report Final v2.pdf")
	require.NoError(t, err)

	fc := &Context{
		SessionID:        rec.UserSessionId,
		InputType:        "pdf",
		InputValue:       "/tmp/ingest-12345.pdf",
		OriginalFilename: "Report Final v2.pdf",
	}
	action := runContentNode(t, fx.node, fc)

	assert.Equal(t, ActionDefault, action)
	assert.Equal(t, []string{"/tmp/ingest-12345.pdf"}, fx.extractor.paths, "extraction reads the scratch file")

	namespace := rag.Namespace("pdf", "Report Final v2.pdf", rec.UserSessionId)
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, []string{namespace}, stored.ActiveNamespaces, "namespace comes from the uploaded name, not the scratch path")
}

func TestContentNodeCrawlFailure(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{"crawler error", "", errors.New("firecrawl timeout")},
		{"empty crawl", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newContentFixture(t, &stubEmbedder{})
			fx.crawler.text = tt.text
			fx.crawler.err = tt.err
			rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
			require.NoError(t, err)

			fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com"}
			action := runContentNode(t, fx.node, fc)

			assert.Equal(t, ActionError, action)
			stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
			require.NoError(t, err)
			assert.Equal(t, session.StatusError, stored.Status)
			assert.Equal(t, "Failed to crawl website.", stored.Message)
			assert.False(t, stored.ContextIsReady)
		})
	}
}

func TestContentNodeExtractionFailure(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{})
	fx.extractor.err = errors.New("parse job failed")
	rec, err := fx.store.Create(context.Background(), "pdf", "broken.pdf")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "pdf", InputValue: "/tmp/broken.pdf", OriginalFilename: "broken.pdf"}
	action := runContentNode(t, fx.node, fc)

	assert.Equal(t, ActionError, action)
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, "Failed to extract text from PDF.", stored.Message)
}

func TestContentNodeEmbeddingFailure(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{err: errors.New("embedding service down")})
	fx.crawler.text = "Some perfectly fine content."
	rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com"}
	action := runContentNode(t, fx.node, fc)

	assert.Equal(t, ActionError, action)
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusError, stored.Status)
	assert.Equal(t, "Failed to create embeddings.", stored.Message)
}

func TestContentNodeStorageFailure(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{})
	fx.index.upsertErr = errors.New("qdrant unavailable")
	fx.crawler.text = "Some perfectly fine content."
	rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com"}
	action := runContentNode(t, fx.node, fc)

	assert.Equal(t, ActionError, action)
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, "Failed to store embeddings in vector DB.", stored.Message)
	assert.False(t, stored.ContextIsReady)
	assert.Empty(t, stored.ActiveNamespaces)
}

func TestIngestionFlowEndToEnd(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{})
	fx.crawler.text = "A short site."
	rec, err := fx.store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	input := NewInputNode(fx.store, logger.NewNopLogger())
	end := NewEndNode(logger.NewNopLogger())
	f := NewIngestionFlow(input, fx.node, end)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com"}
	err = NewEngine(logger.NewNopLogger()).Run(context.Background(), f, fc)
	require.NoError(t, err)

	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, stored.Status)
	assert.True(t, stored.ContextIsReady)
}

func TestIngestionFlowNoneInputSkipsContentProcessing(t *testing.T) {
	fx := newContentFixture(t, &stubEmbedder{})
	rec, err := fx.store.Create(context.Background(), "none", "")
	require.NoError(t, err)

	input := NewInputNode(fx.store, logger.NewNopLogger())
	end := NewEndNode(logger.NewNopLogger())
	f := NewIngestionFlow(input, fx.node, end)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "none"}
	err = NewEngine(logger.NewNopLogger()).Run(context.Background(), f, fc)
	require.NoError(t, err)

	assert.Empty(t, fx.crawler.urls, "the none path must never reach acquisition")
	stored, err := fx.store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, stored.Status)
	assert.False(t, stored.ContextIsReady)
	assert.Equal(t, "No content provided, chat without context.", stored.Message)
}
