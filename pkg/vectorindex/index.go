package vectorindex

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned by Search when the named collection does
// not exist. Callers searching several session namespaces skip these rather
// than failing the whole query.
var ErrCollectionNotFound = errors.New("collection not found")

// Payload is the metadata stored next to every vector. It is what a search
// hit gives back to build answers and resource citations from.
type Payload struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	Type       string `json:"type"`
	SessionId  string `json:"session_id"`
	ChunkIndex int    `json:"chunk_index"`
}

type Point struct {
	Id      string
	Vector  []float32
	Payload Payload
}

type Match struct {
	Score   float64
	Payload Payload
}

// Index is the contract for a vector store backend. Collections are cheap
// named partitions; one session may own several.
type Index interface {
	// EnsureCollection creates the collection if it does not exist yet.
	// Calling it for an existing collection is a no-op.
	EnsureCollection(ctx context.Context, name string, dimension int) error

	// Upsert writes points durably; it returns once the write is applied.
	Upsert(ctx context.Context, name string, points []Point) error

	// Search returns the closest matches by cosine similarity, best first.
	Search(ctx context.Context, name string, vector []float32, limit int) ([]Match, error)
}
