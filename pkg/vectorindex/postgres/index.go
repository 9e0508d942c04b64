package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
)

// PgIndex stores vectors in Postgres with the pgvector extension. All
// collections share two tables: a registry of collection names and one point
// table partitioned by collection column.
type PgIndex struct {
	db *gorm.DB
}

var _ vectorindex.Index = &PgIndex{}

type vectorCollection struct {
	Name      string    `gorm:"primaryKey;type:varchar(255)"`
	Dimension int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (vectorCollection) TableName() string {
	return "vector_collections"
}

type vectorPoint struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Collection string          `gorm:"type:varchar(255);not null;index"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)"` // dimension fixed at migration time
	Payload    datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (vectorPoint) TableName() string {
	return "vector_points"
}

func NewPgIndex(db *gorm.DB) (*PgIndex, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&vectorCollection{}, &vectorPoint{}); err != nil {
		return nil, fmt.Errorf("migrate vector tables: %w", err)
	}
	return &PgIndex{db: db}, nil
}

func (ix *PgIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	row := vectorCollection{Name: name, Dimension: dimension}
	err := ix.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("ensure collection %s: %w", name, err)
	}
	return nil
}

func (ix *PgIndex) Upsert(ctx context.Context, name string, points []vectorindex.Point) error {
	if len(points) == 0 {
		return nil
	}

	rows := make([]vectorPoint, 0, len(points))
	for _, p := range points {
		id, err := uuid.Parse(p.Id)
		if err != nil {
			return fmt.Errorf("point id %q: %w", p.Id, err)
		}
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		rows = append(rows, vectorPoint{
			Id:         id,
			Collection: name,
			Embedding:  pgvector.NewVector(p.Vector),
			Payload:    datatypes.JSON(payload),
		})
	}

	err := ix.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", name, err)
	}
	return nil
}

func (ix *PgIndex) Search(ctx context.Context, name string, vector []float32, limit int) ([]vectorindex.Match, error) {
	if limit <= 0 {
		limit = 3
	}

	var reg vectorCollection
	err := ix.db.WithContext(ctx).First(&reg, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("search collection %s: %w", name, vectorindex.ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup collection %s: %w", name, err)
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so the score is
	// 1 - (embedding <=> query_vector).
	type result struct {
		Payload datatypes.JSON
		Score   float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err = ix.db.WithContext(ctx).
		Table("vector_points").
		Select("payload, 1 - (embedding <=> ?) as score", queryVector).
		Where("collection = ?", name).
		Order("score DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", name, err)
	}

	matches := make([]vectorindex.Match, 0, len(results))
	for _, r := range results {
		var payload vectorindex.Payload
		if err := json.Unmarshal(r.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		matches = append(matches, vectorindex.Match{Score: r.Score, Payload: payload})
	}
	return matches, nil
}
