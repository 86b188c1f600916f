package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"microblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	touchFn         func(context.Context, uint, time.Time) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) TouchLastSeen(ctx context.Context, id uint, at time.Time) error {
	return s.touchFn(ctx, id, at)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		touchFn:         func(_ context.Context, _ uint, _ time.Time) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	listByAuthorsFn func(context.Context, []uint, int) ([]*models.Post, error)
	listFollowedFn  func(context.Context, uint, int) ([]*models.Post, error)
	listByUserFn    func(context.Context, uint, int, int) ([]*models.Post, error)
	listAllFn       func(context.Context, int, int) ([]*models.Post, error)
	countByUserFn   func(context.Context, uint) (int64, error)
	countAllFn      func(context.Context) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]*models.Post, error) {
	return s.listByAuthorsFn(ctx, authorIDs, limit)
}
func (s *postRepoStub) ListFollowedAuthorsPosts(ctx context.Context, followerID uint, limit int) ([]*models.Post, error) {
	return s.listFollowedFn(ctx, followerID, limit)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listAllFn(ctx, limit, offset)
}
func (s *postRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *postRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		listByAuthorsFn: func(_ context.Context, _ []uint, _ int) ([]*models.Post, error) { return nil, nil },
		listFollowedFn:  func(_ context.Context, _ uint, _ int) ([]*models.Post, error) { return nil, nil },
		listByUserFn:    func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listAllFn:       func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByUserFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countAllFn:      func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "expected NOT_FOUND, got %v", err)
}
