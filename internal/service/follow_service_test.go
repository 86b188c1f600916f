package service

import (
	"context"
	"testing"

	"microblog/internal/repository"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFollowService(db *gorm.DB) *FollowService {
	return NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db))
}

func TestFollowService_Idempotence(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newFollowService(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	following, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	following, err = svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, followingCount, err := svc.Counts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers, "a repeated follow adds no second edge")
	assert.Equal(t, int64(0), followingCount)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))

	following, err = svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowService_ByUsername(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newFollowService(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	t.Run("follows the named account", func(t *testing.T) {
		target, err := svc.FollowByUsername(ctx, alice.ID, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, target.ID)

		ids, err := svc.FollowerIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{alice.ID}, ids)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.FollowByUsername(ctx, alice.ID, "nobody")
		assertNotFoundError(t, err)
		assert.Equal(t, "User nobody not found", err.Error())

		_, err = svc.UnfollowByUsername(ctx, alice.ID, "nobody")
		assertNotFoundError(t, err)
	})

	t.Run("self", func(t *testing.T) {
		_, err := svc.FollowByUsername(ctx, alice.ID, "alice")
		assertValidationError(t, err)
		assert.Equal(t, "You cannot follow yourself!", err.Error())

		_, err = svc.UnfollowByUsername(ctx, alice.ID, "alice")
		assertValidationError(t, err)
		assert.Equal(t, "You cannot unfollow yourself!", err.Error())

		following, err := svc.IsFollowing(ctx, alice.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("unfollow by username", func(t *testing.T) {
		_, err := svc.UnfollowByUsername(ctx, alice.ID, "bob")
		require.NoError(t, err)

		following, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, following)
	})
}
