package service

import (
	"context"

	"microblog/internal/models"
	"microblog/internal/observability"
	"microblog/internal/repository"
)

// FollowService mutates and queries the follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// IsFollowing reports whether followerID follows followedID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followedID)
}

// Follow adds the edge requesterID -> targetID. Following someone twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, requesterID, targetID uint) error {
	if requesterID == targetID {
		return models.NewValidationError("You cannot follow yourself!")
	}
	following, err := s.IsFollowing(ctx, requesterID, targetID)
	if err != nil || following {
		return err
	}
	created, err := s.followRepo.Create(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if created {
		observability.FollowEdgeChanges.WithLabelValues("follow").Inc()
	}
	return nil
}

// Unfollow removes the edge requesterID -> targetID. Removing a missing edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, requesterID, targetID uint) error {
	if requesterID == targetID {
		return models.NewValidationError("You cannot unfollow yourself!")
	}
	following, err := s.IsFollowing(ctx, requesterID, targetID)
	if err != nil || !following {
		return err
	}
	removed, err := s.followRepo.Delete(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if removed {
		observability.FollowEdgeChanges.WithLabelValues("unfollow").Inc()
	}
	return nil
}

// FollowByUsername resolves username and follows that account on behalf of requesterID.
func (s *FollowService) FollowByUsername(ctx context.Context, requesterID uint, username string) (*models.User, error) {
	target, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.Follow(ctx, requesterID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// UnfollowByUsername resolves username and unfollows that account on behalf of requesterID.
func (s *FollowService) UnfollowByUsername(ctx context.Context, requesterID uint, username string) (*models.User, error) {
	target, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.Unfollow(ctx, requesterID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// Counts returns how many accounts follow userID and how many userID follows.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if followers, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	if following, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// FollowerIDs lists the accounts following userID.
func (s *FollowService) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followRepo.FollowerIDs(ctx, userID)
}

func (s *FollowService) resolve(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}
