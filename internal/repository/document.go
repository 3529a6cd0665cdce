package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/rag"
	"github.com/pgvector/pgvector-go"
)

var _ rag.VectorStore = (*DocumentRepository)(nil)

// DocumentRepository is the pgvector-backed vector store. Rows are keyed by
// the deterministic document ID so re-indexing an item overwrites its chunks.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Upsert(ctx context.Context, docs []domain.EmbeddedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, d := range docs {
			m := d.Metadata
			_, err := tx.Exec(ctx,
				`INSERT INTO documents (id, collection_id, item_id, item_type, title, source_url, chunk_index, content, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				 ON CONFLICT (id) DO UPDATE
				 SET collection_id = EXCLUDED.collection_id,
				     item_id = EXCLUDED.item_id,
				     item_type = EXCLUDED.item_type,
				     title = EXCLUDED.title,
				     source_url = EXCLUDED.source_url,
				     chunk_index = EXCLUDED.chunk_index,
				     content = EXCLUDED.content,
				     embedding = EXCLUDED.embedding,
				     updated_at = now()`,
				d.ID, m.CollectionID, m.ItemID, m.ItemType, m.Title, m.SourceURL, m.ChunkIndex, d.Content,
				pgvector.NewVector(d.Vector),
			)
			if err != nil {
				return fmt.Errorf("upsert document %s: %w", d.ID, err)
			}
		}
		return nil
	})
}

// Search returns the k nearest documents of one collection. Score is
// 1/(1+cosine distance) so higher is more similar.
//
// The HNSW index is shared by every collection and the collection filter is
// applied to its candidates, so the scan runs iteratively until k rows of
// this collection are found (pgvector >= 0.8).
func (r *DocumentRepository) Search(ctx context.Context, collectionID string, vector []float32, k int) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SET LOCAL hnsw.iterative_scan = strict_order`); err != nil {
			return fmt.Errorf("enable iterative scan: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT content, collection_id, item_id, item_type, title, source_url, chunk_index,
			        1.0 / (1.0 + (embedding <=> $1)) AS score
			 FROM documents
			 WHERE collection_id = $2
			 ORDER BY embedding <=> $1
			 LIMIT $3`,
			pgvector.NewVector(vector), collectionID, k,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var res domain.SearchResult
			var score float64
			m := &res.Metadata
			if err := rows.Scan(&res.Content, &m.CollectionID, &m.ItemID, &m.ItemType, &m.Title, &m.SourceURL, &m.ChunkIndex, &score); err != nil {
				return err
			}
			res.Score = float32(score)
			results = append(results, res)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *DocumentRepository) DeleteByItem(ctx context.Context, itemID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE item_id = $1`, itemID)
	return err
}

func (r *DocumentRepository) DeleteByCollection(ctx context.Context, collectionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE collection_id = $1`, collectionID)
	return err
}

// CountByCollection is used by maintenance commands and tests.
func (r *DocumentRepository) CountByCollection(ctx context.Context, collectionID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM documents WHERE collection_id = $1`, collectionID).Scan(&n)
	return n, err
}
