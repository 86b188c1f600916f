package service

import (
	"context"
	"fmt"
	"strings"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/observability"
	"microblog/internal/repository"
)

// PostPublisher delivers a freshly created post to the author's followers.
type PostPublisher interface {
	PublishPost(ctx context.Context, post *models.Post, followerIDs []uint) error
}

// PostService publishes posts.
type PostService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  PostPublisher
}

// NewPostService returns a new PostService. publisher may be nil.
func NewPostService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher PostPublisher,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// CreatePost stores a post by userID and notifies the author's followers.
func (s *PostService) CreatePost(ctx context.Context, userID uint, body string) (*models.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Say something is required")
	}
	if len([]rune(body)) > models.MaxPostLength {
		return nil, models.NewValidationError(fmt.Sprintf("Post too long (max %d characters)", models.MaxPostLength))
	}

	post := &models.Post{Body: body, UserID: userID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsCreated.Inc()

	if author, err := s.userRepo.GetByID(ctx, userID); err == nil {
		post.Author = author
	}
	s.notifyFollowers(ctx, post)
	return post, nil
}

// notifyFollowers is best effort; a post is never rolled back because delivery failed.
func (s *PostService) notifyFollowers(ctx context.Context, post *models.Post) {
	if s.publisher == nil {
		return
	}
	followerIDs, err := s.followRepo.FollowerIDs(ctx, post.UserID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "listing followers for notification failed",
			"post_id", post.ID, "error", err)
		return
	}
	if len(followerIDs) == 0 {
		return
	}
	if err := s.publisher.PublishPost(ctx, post, followerIDs); err != nil {
		middleware.Logger.WarnContext(ctx, "publishing post notification failed",
			"post_id", post.ID, "error", err)
	}
}
