package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	t.Parallel()

	t.Run("username required", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), nil)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: " "})
		assertValidationError(t, err)
	})

	t.Run("about me too long", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), nil)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID:   1,
			Username: "alice",
			AboutMe:  strings.Repeat("x", 141),
		})
		assertValidationError(t, err)
	})

	t.Run("username taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		}
		repo.getByUsernameFn = func(_ context.Context, name string) (*models.User, error) {
			return &models.User{ID: 2, Username: name}, nil
		}
		repo.updateFn = func(_ context.Context, _ *models.User) error {
			t.Fatal("Update must not be called")
			return nil
		}
		_, err := NewUserService(repo, nil).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: "bob"})
		assertValidationError(t, err)
		assert.Equal(t, "Please use a different username.", err.Error())
	})
}

func TestUserService_UpdateProfile_KeepsOwnUsername(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", AboutMe: "old"}, nil
	}
	repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
		t.Fatal("an unchanged username needs no lookup")
		return nil, nil
	}
	var saved *models.User
	repo.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	user, err := NewUserService(repo, nil).UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:   1,
		Username: "alice",
		AboutMe:  "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", user.AboutMe)
	require.NotNil(t, saved)
	assert.Equal(t, "new", saved.AboutMe)
}

func TestUserService_UpdateProfile_RepoError(t *testing.T) {
	t.Parallel()
	repoErr := errors.New("update failed")
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice"}, nil
	}
	repo.updateFn = func(_ context.Context, _ *models.User) error {
		return repoErr
	}
	_, err := NewUserService(repo, nil).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: "alice"})
	assert.ErrorIs(t, err, repoErr)
}

func TestUserService_Profile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	follows := newFollowService(db)
	svc := NewUserService(users, follows)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	require.NoError(t, follows.Follow(ctx, alice.ID, bob.ID))

	p, err := svc.Profile(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, p.User.ID)
	assert.True(t, p.IsFollowing)
	assert.False(t, p.IsSelf)
	assert.Equal(t, int64(1), p.FollowerCount)

	p, err = svc.Profile(ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.True(t, p.IsSelf)
	assert.False(t, p.IsFollowing)
	assert.Equal(t, int64(1), p.FollowingCount)

	_, err = svc.Profile(ctx, alice.ID, "nobody")
	assertNotFoundError(t, err)

	require.NoError(t, svc.TouchLastSeen(ctx, bob.ID))
}
