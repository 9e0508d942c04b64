package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/embedding"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
)

type EmbeddedChunk struct {
	Text      string
	Embedding []float32
	Source    string
}

// Indexer turns raw content into stored vectors: chunk, embed, upsert into
// the session's namespace, then register the namespace on the session.
type Indexer struct {
	sessions  session.Store
	index     vectorindex.Index
	embedder  embedding.Provider
	chunker   Chunker
	dimension int
	log       logger.ILogger
}

func NewIndexer(sessions session.Store, index vectorindex.Index, embedder embedding.Provider, chunker Chunker, dimension int, log logger.ILogger) *Indexer {
	return &Indexer{
		sessions:  sessions,
		index:     index,
		embedder:  embedder,
		chunker:   chunker,
		dimension: dimension,
		log:       log,
	}
}

// EmbedContent splits content into windows and embeds each one. A window
// whose embedding fails is dropped with a warning; only a fully empty batch
// is an error.
func (ix *Indexer) EmbedContent(ctx context.Context, source, content string) ([]EmbeddedChunk, error) {
	windows := ix.chunker.Split(content)

	chunks := make([]EmbeddedChunk, 0, len(windows))
	for i, window := range windows {
		vector, err := ix.embedder.Embed(ctx, window)
		if err != nil {
			ix.log.Warn("indexer", "Dropping chunk after embedding failure", map[string]interface{}{
				"source": source,
				"chunk":  i,
				"error":  err.Error(),
			})
			continue
		}
		chunks = append(chunks, EmbeddedChunk{Text: window, Embedding: vector, Source: source})
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyBatch
	}
	return chunks, nil
}

// Store upserts embedded chunks into the namespace derived from this input
// and adds that namespace to the session. Every attempt writes fresh point
// ids, so a retried task may leave duplicate vectors behind; retrieval
// tolerates those. Failing to update the session record is logged but not
// fatal, the vectors are already durable.
func (ix *Indexer) Store(ctx context.Context, sessionId, inputType, source string, chunks []EmbeddedChunk) (string, error) {
	if len(chunks) == 0 {
		return "", ErrEmptyBatch
	}

	namespace := Namespace(inputType, source, sessionId)

	if err := ix.index.EnsureCollection(ctx, namespace, ix.dimension); err != nil {
		return "", fmt.Errorf("ensure namespace %s: %w", namespace, err)
	}

	points := make([]vectorindex.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorindex.Point{
			Id:     uuid.NewString(),
			Vector: chunk.Embedding,
			Payload: vectorindex.Payload{
				Text:       chunk.Text,
				Source:     chunk.Source,
				Type:       inputType,
				SessionId:  sessionId,
				ChunkIndex: i,
			},
		}
	}

	if err := ix.index.Upsert(ctx, namespace, points); err != nil {
		return "", fmt.Errorf("store embeddings in %s: %w", namespace, err)
	}

	if _, err := ix.sessions.Update(ctx, sessionId, func(rec *session.Record) {
		rec.AddNamespace(namespace)
	}); err != nil {
		ix.log.Error("indexer", "Failed to register namespace on session", map[string]interface{}{
			"session_id": sessionId,
			"namespace":  namespace,
			"error":      err.Error(),
		})
	}

	ix.log.Info("indexer", "Stored embedded chunks", map[string]interface{}{
		"session_id": sessionId,
		"namespace":  namespace,
		"chunks":     len(chunks),
	})
	return namespace, nil
}
