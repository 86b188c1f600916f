package repository

import (
	"context"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
)

// newestFirst is the deterministic listing order for posts.
const newestFirst = "posts.timestamp DESC, posts.id DESC"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]*models.Post, error)
	ListFollowedAuthorsPosts(ctx context.Context, followerID uint, limit int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Timestamp.IsZero() {
		post.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).Preload("Author")
}

// ListByAuthors returns the newest limit posts written by any of authorIDs.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(authorIDs) == 0 {
		return posts, nil
	}
	if err := r.withAuthor(ctx).
		Where("posts.user_id IN ?", authorIDs).
		Order(newestFirst).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListFollowedAuthorsPosts returns the newest limit posts whose author followerID follows,
// resolved by joining the follow edge table.
func (r *postRepository) ListFollowedAuthorsPosts(ctx context.Context, followerID uint, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.withAuthor(ctx).
		Select("posts.*").
		Joins("JOIN followers ON followers.followed_id = posts.user_id").
		Where("followers.follower_id = ?", followerID).
		Order(newestFirst).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.withAuthor(ctx).
		Where("posts.user_id = ?", userID).
		Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.withAuthor(ctx).
		Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
