//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/testutil"
	"github.com/stretchr/testify/require"
)

func newTestPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(context.Background()) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)
	return pool
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func seedUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, username string) *domain.User {
	t.Helper()
	u := domain.NewUser(uuid.NewString(), username, false, now())
	require.NoError(t, NewUserRepository(pool).Create(ctx, u))
	return u
}

func seedCollection(ctx context.Context, t *testing.T, pool *pgxpool.Pool, userID string, shared bool) *domain.Collection {
	t.Helper()
	c := domain.NewCollection(uuid.NewString(), userID, "notes", "", shared, now())
	require.NoError(t, NewCollectionRepository(pool).Create(ctx, c))
	return c
}

func seedItem(ctx context.Context, t *testing.T, pool *pgxpool.Pool, c *domain.Collection, itemType domain.ItemType) *domain.KnowledgeItem {
	t.Helper()
	item := domain.NewKnowledgeItem(uuid.NewString(), c.ID, c.UserID, itemType, "title", nil, "some content", now())
	require.NoError(t, NewItemRepository(pool).Create(ctx, item))
	return item
}
