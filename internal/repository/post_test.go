package repository

import (
	"context"
	"testing"
	"time"

	"microblog/internal/models"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPostRepository_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	testutil.Follow(t, db, alice, bob)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a1 := testutil.CreatePost(t, db, alice, "a1", base)
	b1 := testutil.CreatePost(t, db, bob, "b1", base.Add(time.Minute))
	b2 := testutil.CreatePost(t, db, bob, "b2", base.Add(time.Minute)) // same instant as b1
	c1 := testutil.CreatePost(t, db, carol, "c1", base.Add(2*time.Minute))

	t.Run("create stamps time", func(t *testing.T) {
		p := &models.Post{Body: "now", UserID: carol.ID}
		require.NoError(t, repo.Create(ctx, p))
		assert.False(t, p.Timestamp.IsZero())
		require.NoError(t, db.Delete(p).Error)
	})

	t.Run("followed authors via edge join", func(t *testing.T) {
		posts, err := repo.ListFollowedAuthorsPosts(ctx, alice.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint{b2.ID, b1.ID}, postIDs(posts))
		require.NotNil(t, posts[0].Author)
		assert.Equal(t, "bob", posts[0].Author.Username)
	})

	t.Run("by authors with limit", func(t *testing.T) {
		posts, err := repo.ListByAuthors(ctx, []uint{alice.ID, bob.ID}, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint{b2.ID, b1.ID}, postIDs(posts))

		posts, err = repo.ListByAuthors(ctx, nil, 2)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("all newest first with offset", func(t *testing.T) {
		posts, err := repo.ListAll(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint{b2.ID, b1.ID}, postIDs(posts))

		posts, err = repo.ListAll(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint{c1.ID, b2.ID, b1.ID, a1.ID}, postIDs(posts))
	})

	t.Run("by user and counts", func(t *testing.T) {
		posts, err := repo.ListByUser(ctx, alice.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint{a1.ID}, postIDs(posts))

		n, err := repo.CountByUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.CountAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}
