package server

import (
	"time"

	"microblog/internal/models"
	"microblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// profileView is a user as shown on a profile page. The email address is only
// included on the viewer's own profile.
type profileView struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	AboutMe        string    `json:"about_me"`
	LastSeen       time.Time `json:"last_seen"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
	IsSelf         bool      `json:"is_self"`
}

func newProfileView(p *models.Profile) profileView {
	v := profileView{
		ID:             p.User.ID,
		Username:       p.User.Username,
		AboutMe:        p.User.AboutMe,
		LastSeen:       p.User.LastSeen,
		CreatedAt:      p.User.CreatedAt,
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		IsFollowing:    p.IsFollowing,
		IsSelf:         p.IsSelf,
	}
	if p.IsSelf {
		v.Email = p.User.Email
	}
	return v
}

// UserProfile handles GET /user/:username
// @Summary User profile
// @Description Profile, follow counts and the user's posts, newest first
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} object{user=profileView,posts=models.Page[models.Post]}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/{username} [get]
func (s *Server) UserProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := c.Params("username")

	profile, err := s.userService.Profile(ctx, currentUserID(c), username)
	if err != nil {
		return respondError(c, err)
	}
	page, err := s.feedService.UserPosts(ctx, profile.User.ID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}

	out := pageLinks("/user/"+profile.User.Username, page)
	out["user"] = newProfileView(profile)
	out["posts"] = page
	return c.JSON(out)
}

// EditProfileForm handles GET /edit_profile
// @Summary Current profile values
// @Tags users
// @Produce json
// @Success 200 {object} object{username=string,about_me=string}
// @Security BearerAuth
// @Router /edit_profile [get]
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"title":    "Edit Profile",
		"form":     "edit_profile",
		"username": user.Username,
		"about_me": user.AboutMe,
	})
}

// EditProfile handles POST /edit_profile
// @Summary Update profile
// @Tags users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body service.UpdateProfileInput true "New username and about-me text"
// @Success 200 {object} object{flash=string,redirect=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /edit_profile [post]
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var in service.UpdateProfileInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	in.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"flash":    "Your changes have been saved.",
		"redirect": "/edit_profile",
		"user":     user,
	})
}

// Follow handles POST /follow/:username
// @Summary Follow a user
// @Description Idempotent. Following yourself is rejected.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{flash=string,redirect=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /follow/{username} [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	target, err := s.followService.FollowByUsername(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"flash":    "You are following " + target.Username + "!",
		"redirect": "/user/" + target.Username,
	})
}

// Unfollow handles POST /unfollow/:username
// @Summary Unfollow a user
// @Description Idempotent. Unfollowing yourself is rejected.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{flash=string,redirect=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /unfollow/{username} [post]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	target, err := s.followService.UnfollowByUsername(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"flash":    "You are not following " + target.Username + ".",
		"redirect": "/user/" + target.Username,
	})
}
