package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/Ntrakiyski/rag-chat-api/pkg/database"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex/postgres"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 1536 // must match the migrated vector column

func testVector(seed float32) []float32 {
	v := make([]float32, testDimension)
	v[0] = seed
	v[1] = 1 - seed
	return v
}

func TestPgVectorIndex(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("VECTOR_DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: VECTOR_DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to Postgres")

	index, err := postgres.NewPgIndex(gormDB)
	require.NoError(t, err, "Failed to initialize pgvector index")

	ctx := context.Background()
	collection := fmt.Sprintf("it-%s", uuid.NewString()[:8])
	t.Cleanup(func() {
		gormDB.Exec("DELETE FROM vector_points WHERE collection = ?", collection)
		gormDB.Exec("DELETE FROM vector_collections WHERE name = ?", collection)
	})

	require.NoError(t, index.EnsureCollection(ctx, collection, testDimension))
	// Second call must be a no-op.
	require.NoError(t, index.EnsureCollection(ctx, collection, testDimension))

	points := []vectorindex.Point{
		{
			Id:     uuid.NewString(),
			Vector: testVector(1.0),
			Payload: vectorindex.Payload{
				Text: "alpha chunk", Source: "https://example.com", Type: "website", SessionId: "it", ChunkIndex: 0,
			},
		},
		{
			Id:     uuid.NewString(),
			Vector: testVector(0.0),
			Payload: vectorindex.Payload{
				Text: "beta chunk", Source: "https://example.com", Type: "website", SessionId: "it", ChunkIndex: 1,
			},
		},
	}
	require.NoError(t, index.Upsert(ctx, collection, points))

	t.Run("Search ranks the closest vector first", func(t *testing.T) {
		matches, err := index.Search(ctx, collection, testVector(1.0), 2)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "alpha chunk", matches[0].Payload.Text)
		assert.Greater(t, matches[0].Score, matches[1].Score)
	})

	t.Run("Missing collection reports ErrCollectionNotFound", func(t *testing.T) {
		_, err := index.Search(ctx, "it-missing-collection", testVector(0.5), 1)
		assert.ErrorIs(t, err, vectorindex.ErrCollectionNotFound)
	})

	t.Run("Upsert overwrites points by id", func(t *testing.T) {
		points[0].Payload.Text = "alpha chunk v2"
		require.NoError(t, index.Upsert(ctx, collection, points[:1]))

		matches, err := index.Search(ctx, collection, testVector(1.0), 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "alpha chunk v2", matches[0].Payload.Text)
	})
}
