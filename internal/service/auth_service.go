package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username  string `json:"username" form:"username" validate:"required,max=64"`
	Email     string `json:"email" form:"email" validate:"required,email,max=120"`
	Password  string `json:"password" form:"password" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password"`
}

// AuthService handles registration and credential checks.
type AuthService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo, now: time.Now}
}

// Register creates an account. Usernames and email addresses must be unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.Struct(&in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Please use a different username.")
	}
	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Please use a different email address.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		LastSeen:     s.now().UTC(),
	}
	// Create maps a unique violation from a concurrent sign-up to the same messages.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials returns the account for username when password matches.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	invalid := models.NewUnauthorizedError("Invalid username or password")

	if username == "" || password == "" {
		return nil, invalid
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
			return nil, invalid
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}
