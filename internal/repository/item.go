package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/pagination"
	"github.com/novanote/novanote/internal/service"
)

const itemColumns = `id, collection_id, user_id, type, title, url, content, storage_key,
	index_status, chunk_count, index_error, created_at, updated_at`

type ItemRepository struct {
	db dbtx
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: pool}
}

func NewItemRepositoryWithTx(tx pgx.Tx) *ItemRepository {
	return &ItemRepository{db: tx}
}

func (r *ItemRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_items (`+itemColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		k.ID, k.CollectionID, k.UserID, k.Type, k.Title, k.URL, k.Content, nullableString(k.StorageKey),
		k.IndexStatus, k.ChunkCount, nullableString(k.IndexError), k.CreatedAt, k.UpdatedAt,
	)
	return err
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM knowledge_items WHERE id = $1`, id)
	k, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return k, nil
}

func (r *ItemRepository) ListByCollectionWithCursor(ctx context.Context, collectionID string, cursor *pagination.Cursor, limit int) (*service.ItemPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+itemColumns+`
			 FROM knowledge_items
			 WHERE collection_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			collectionID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+itemColumns+`
			 FROM knowledge_items
			 WHERE collection_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			collectionID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.KnowledgeItem
	for rows.Next() {
		k, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.ItemPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListByCollection returns every item of a collection, oldest first.
func (r *ItemRepository) ListByCollection(ctx context.Context, collectionID string) ([]*domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM knowledge_items WHERE collection_id = $1 ORDER BY created_at ASC, id ASC`,
		collectionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.KnowledgeItem
	for rows.Next() {
		k, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	return items, rows.Err()
}

func (r *ItemRepository) UpdateIndexStatus(ctx context.Context, id string, status domain.IndexStatus, chunkCount int, indexErr string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_items
		 SET index_status = $1, chunk_count = $2, index_error = $3, updated_at = $4
		 WHERE id = $5`,
		status, chunkCount, nullableString(indexErr), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM knowledge_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// CountByUser returns the number of items the user owns, per type.
func (r *ItemRepository) CountByUser(ctx context.Context, userID string) (map[domain.ItemType]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT type, count(*) FROM knowledge_items WHERE user_id = $1 GROUP BY type`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ItemType]int)
	for rows.Next() {
		var t domain.ItemType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// ListStorageKeysByCollection returns the object keys of every uploaded
// PDF in the collection so they can be purged with it.
func (r *ItemRepository) ListStorageKeysByCollection(ctx context.Context, collectionID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT storage_key FROM knowledge_items WHERE collection_id = $1 AND storage_key IS NOT NULL`,
		collectionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func scanItem(row pgx.Row) (*domain.KnowledgeItem, error) {
	var k domain.KnowledgeItem
	var storageKey, indexErr *string
	err := row.Scan(&k.ID, &k.CollectionID, &k.UserID, &k.Type, &k.Title, &k.URL, &k.Content, &storageKey,
		&k.IndexStatus, &k.ChunkCount, &indexErr, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return nil, err
	}
	k.StorageKey = derefString(storageKey)
	k.IndexError = derefString(indexErr)
	return &k, nil
}
