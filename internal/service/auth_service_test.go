package service

import (
	"context"
	"strings"
	"testing"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Password2: "password123",
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "  " }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"bad email", func(in *RegisterInput) { in.Email = "alice.example.com" }},
		{"missing password", func(in *RegisterInput) { in.Password, in.Password2 = "", "" }},
		{"passwords differ", func(in *RegisterInput) { in.Password2 = "password124" }},
		{"username too long", func(in *RegisterInput) { in.Username = strings.Repeat("a", 65) }},
		{"username with slash", func(in *RegisterInput) { in.Username = "a/b" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := noopUserRepo()
			repo.createFn = func(_ context.Context, _ *models.User) error {
				t.Fatal("Create must not be called for invalid input")
				return nil
			}
			in := validRegistration()
			tt.mutate(&in)

			_, err := NewAuthService(repo).Register(context.Background(), in)
			assertValidationError(t, err)
		})
	}
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	var saved *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	user, err := NewAuthService(repo).Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.Same(t, saved, user)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	assert.False(t, user.LastSeen.IsZero())
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("same username", func(t *testing.T) {
		in := validRegistration()
		in.Email = "other@example.com"
		_, err := svc.Register(ctx, in)
		assertValidationError(t, err)
		assert.Equal(t, "Please use a different username.", err.Error())
	})

	t.Run("same email", func(t *testing.T) {
		in := validRegistration()
		in.Username = "alice2"
		_, err := svc.Register(ctx, in)
		assertValidationError(t, err)
		assert.Equal(t, "Please use a different email address.", err.Error())
	})

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_VerifyCredentials(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, err := svc.VerifyCredentials(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	for _, tc := range []struct{ username, password string }{
		{"alice", "wrong"},
		{"nobody", "password123"},
		{"", ""},
	} {
		_, err := svc.VerifyCredentials(ctx, tc.username, tc.password)
		require.Error(t, err)
		assert.True(t, models.IsCode(err, models.CodeUnauthorized))
		assert.Equal(t, "Invalid username or password", err.Error())
	}
}
