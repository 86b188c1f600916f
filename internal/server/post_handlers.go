package server

import (
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET / and GET /index
// @Summary Home feed
// @Description Own posts and posts of followed users, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} object{posts=models.Page[models.Post]}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /index [get]
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.Feed(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listing("Home", "/index", page))
}

// CreatePost handles POST / and POST /index
// @Summary Publish a post
// @Tags posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body object{post=string} true "Post body, 1 to 140 characters"
// @Success 201 {object} object{flash=string,redirect=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /index [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Post string `json:"post" form:"post"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), currentUserID(c), req.Post)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"flash":    "Your post is now live!",
		"redirect": "/index",
		"post":     post,
	})
}

// Explore handles GET /explore
// @Summary Explore
// @Description Every post, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} object{posts=models.Page[models.Post]}
// @Security BearerAuth
// @Router /explore [get]
func (s *Server) Explore(c *fiber.Ctx) error {
	page, err := s.feedService.Explore(c.UserContext(), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listing("Explore", "/explore", page))
}

func listing(title, path string, page *models.Page[*models.Post]) fiber.Map {
	out := pageLinks(path, page)
	out["title"] = title
	out["posts"] = page
	return out
}
