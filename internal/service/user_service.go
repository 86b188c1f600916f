package service

import (
	"context"
	"strings"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/validation"
)

// UpdateProfileInput is the edit-profile form.
type UpdateProfileInput struct {
	UserID   uint   `json:"-" form:"-"`
	Username string `json:"username" form:"username"`
	AboutMe  string `json:"about_me" form:"about_me"`
}

// UserService serves account profiles.
type UserService struct {
	userRepo      repository.UserRepository
	followService *FollowService
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followService *FollowService) *UserService {
	return &UserService{userRepo: userRepo, followService: followService}
}

// GetUserByID returns the account with id.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername returns the account named username or a not-found error.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// Profile describes username as seen by viewerID.
func (s *UserService) Profile(ctx context.Context, viewerID uint, username string) (*models.Profile, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	followers, following, err := s.followService.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		User:           user,
		FollowerCount:  followers,
		FollowingCount: following,
		IsSelf:         viewerID == user.ID,
	}
	if !profile.IsSelf {
		if profile.IsFollowing, err = s.followService.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// UpdateProfile changes the username and about-me text of an account.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len([]rune(in.AboutMe)) > models.MaxAboutMeLength {
		return nil, models.NewValidationError("About me is too long (max 140 characters)")
	}

	if username != user.Username {
		taken, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, models.NewValidationError("Please use a different username.")
		}
	}

	user.Username = username
	user.AboutMe = in.AboutMe
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TouchLastSeen records that userID was active just now.
func (s *UserService) TouchLastSeen(ctx context.Context, userID uint) error {
	return s.userRepo.TouchLastSeen(ctx, userID, time.Now())
}
