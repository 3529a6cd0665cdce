package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novanote/novanote/internal/domain"
)

const collectionColumns = `id, user_id, name, description, is_shared, created_at`

type CollectionRepository struct {
	db dbtx
}

func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{db: pool}
}

func NewCollectionRepositoryWithTx(tx pgx.Tx) *CollectionRepository {
	return &CollectionRepository{db: tx}
}

func (r *CollectionRepository) Create(ctx context.Context, c *domain.Collection) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO collections (`+collectionColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.Name, c.Description, c.IsShared, c.CreatedAt,
	)
	return err
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	var c domain.Collection
	err := r.db.QueryRow(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.IsShared, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListVisible returns the collections owned by userID followed by the
// shared collections of other users.
func (r *CollectionRepository) ListVisible(ctx context.Context, userID string) ([]*domain.Collection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+collectionColumns+`
		 FROM collections
		 WHERE user_id = $1 OR is_shared
		 ORDER BY (user_id = $1) DESC, created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.IsShared, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ListIDs returns every collection ID. Used by the reindex command.
func (r *CollectionRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM collections ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CollectionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM collections WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *CollectionRepository) Update(ctx context.Context, c *domain.Collection) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE collections SET name = $2, description = $3 WHERE id = $1`,
		c.ID, c.Name, c.Description,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}

// Delete removes the collection. Items and their index jobs go with it
// through ON DELETE CASCADE.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}
