package server

import (
	"strings"
	"time"

	"microblog/internal/cache"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionTTL  = 24 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
)

type loginRequest struct {
	Username   string   `json:"username" form:"username"`
	Password   string   `json:"password" form:"password"`
	RememberMe checkbox `json:"remember_me" form:"remember_me"`
	Next       string   `json:"next" form:"next"`
}

// LoginForm handles GET /login
// @Summary Login form
// @Description Describes the login form, or redirects when a session is already active
// @Tags auth
// @Produce json
// @Param next query string false "Local path to continue to after login"
// @Success 200 {object} object{form=string,fields=[]string,next=string}
// @Router /login [get]
func (s *Server) LoginForm(c *fiber.Ctx) error {
	if _, ok := s.sessionUserID(c); ok {
		return c.JSON(fiber.Map{"redirect": "/index"})
	}
	return c.JSON(fiber.Map{
		"title":  "Sign In",
		"form":   "login",
		"fields": []string{"username", "password", "remember_me"},
		"next":   safeNext(c.Query("next")),
	})
}

// Login handles POST /login
// @Summary User login
// @Description Authenticate and start a session. The token is returned and set as the session cookie.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body object{username=string,password=string,remember_me=bool,next=string} true "Login credentials"
// @Success 200 {object} object{token=string,expires_at=string,user=models.User,redirect=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	if _, ok := s.sessionUserID(c); ok {
		return c.JSON(fiber.Map{"redirect": "/index"})
	}

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	next := req.Next
	if next == "" {
		next = c.Query("next")
	}

	user, err := s.authService.VerifyCredentials(c.UserContext(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return respondError(c, err)
	}

	ttl := sessionTTL
	if req.RememberMe {
		ttl = rememberTTL
	}
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, ttl)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": claims.ExpiresAt,
		"user":       user,
		"redirect":   safeNext(next),
	})
}

// Logout handles GET /logout
// @Summary Logout
// @Description Revoke the current session token, if any, and clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{flash=string,redirect=string}
// @Router /logout [get]
func (s *Server) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if tokenString := middleware.TokenFromRequest(c); tokenString != "" {
		if claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString); err == nil {
			if err := cache.RevokeToken(ctx, claims.JTI, claims.ExpiresAt); err != nil {
				middleware.Logger.WarnContext(ctx, "revoking session token failed", "error", err)
			}
		}
	}
	c.ClearCookie(middleware.SessionCookie)

	return c.JSON(fiber.Map{
		"flash":    "You have been logged out.",
		"redirect": "/index",
	})
}

// RegisterForm handles GET /register
// @Summary Registration form
// @Tags auth
// @Produce json
// @Success 200 {object} object{form=string,fields=[]string}
// @Router /register [get]
func (s *Server) RegisterForm(c *fiber.Ctx) error {
	if _, ok := s.sessionUserID(c); ok {
		return c.JSON(fiber.Map{"redirect": "/index"})
	}
	return c.JSON(fiber.Map{
		"title":  "Register",
		"form":   "register",
		"fields": []string{"username", "email", "password", "password2"},
	})
}

// Register handles POST /register
// @Summary User signup
// @Description Register a new account. Usernames and email addresses must be unused.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body service.RegisterInput true "Signup request"
// @Success 201 {object} object{flash=string,redirect=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	if _, ok := s.sessionUserID(c); ok {
		return c.JSON(fiber.Map{"redirect": "/index"})
	}

	var in service.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"flash":    "Congratulations, you are now a registered user!",
		"redirect": "/login",
		"user":     user,
	})
}
