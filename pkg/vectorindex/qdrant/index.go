package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
)

// QdrantIndex talks to Qdrant over its REST API. One collection per
// namespace, cosine distance, payloads stored verbatim.
type QdrantIndex struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ vectorindex.Index = &QdrantIndex{}

func NewQdrantIndex(baseURL, apiKey string, timeout time.Duration) *QdrantIndex {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &QdrantIndex{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// --- Request/Response structs (Internal to this package) ---

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type upsertRequest struct {
	Points []pointStruct `json:"points"`
}

type pointStruct struct {
	Id      string              `json:"id"`
	Vector  []float32           `json:"vector"`
	Payload vectorindex.Payload `json:"payload"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64             `json:"score"`
		Payload vectorindex.Payload `json:"payload"`
	} `json:"result"`
}

// --- Interface Implementation ---

func (q *QdrantIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := q.collectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := createCollectionRequest{
		Vectors: vectorParams{Size: dimension, Distance: "Cosine"},
	}
	status, respBody, err := q.do(ctx, http.MethodPut, "/collections/"+name, body)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("create collection %s: status %d, body: %s", name, status, respBody)
	}
	return nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, name string, points []vectorindex.Point) error {
	if len(points) == 0 {
		return nil
	}

	body := upsertRequest{Points: make([]pointStruct, len(points))}
	for i, p := range points {
		body.Points[i] = pointStruct{Id: p.Id, Vector: p.Vector, Payload: p.Payload}
	}

	// wait=true blocks until the write is durable on the server.
	status, respBody, err := q.do(ctx, http.MethodPut, "/collections/"+name+"/points?wait=true", body)
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", name, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("upsert into %s: status %d, body: %s", name, status, respBody)
	}
	return nil
}

func (q *QdrantIndex) Search(ctx context.Context, name string, vector []float32, limit int) ([]vectorindex.Match, error) {
	body := searchRequest{
		Vector:      vector,
		Limit:       limit,
		WithPayload: true,
	}
	status, respBody, err := q.do(ctx, http.MethodPost, "/collections/"+name+"/points/search", body)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", name, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("search collection %s: %w", name, vectorindex.ErrCollectionNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search collection %s: status %d, body: %s", name, status, respBody)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	matches := make([]vectorindex.Match, 0, len(searchResp.Result))
	for _, hit := range searchResp.Result {
		matches = append(matches, vectorindex.Match{Score: hit.Score, Payload: hit.Payload})
	}
	return matches, nil
}

func (q *QdrantIndex) collectionExists(ctx context.Context, name string) (bool, error) {
	status, respBody, err := q.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return false, fmt.Errorf("get collection %s: %w", name, err)
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("get collection %s: status %d, body: %s", name, status, respBody)
	}
}

func (q *QdrantIndex) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call qdrant: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
