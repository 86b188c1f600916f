package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondError writes err with the status its AppError code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads the 1-based ?page= parameter. Missing or invalid values mean page 1.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return 1
	}
	return page
}

// pageLinks returns the URLs of the neighbouring pages of a listing at path.
func pageLinks[T any](path string, p *models.Page[T]) fiber.Map {
	links := fiber.Map{}
	if p.NextPage != nil {
		links["next_url"] = fmt.Sprintf("%s?page=%d", path, *p.NextPage)
	}
	if p.PrevPage != nil {
		links["prev_url"] = fmt.Sprintf("%s?page=%d", path, *p.PrevPage)
	}
	return links
}

// currentUserID returns the user resolved by AuthRequired. It is only called on
// authenticated routes.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := middleware.CurrentUserID(c)
	return uid
}

// safeNext returns next when it is a local path and /index otherwise, so a login
// link cannot bounce the user to another site.
func safeNext(next string) string {
	const fallback = "/index"
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// checkbox decodes HTML checkbox values ("on", "y", "1", "true") as well as JSON booleans.
type checkbox bool

func (b *checkbox) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "1", "on", "y", "yes", "true":
		*b = true
	default:
		*b = false
	}
	return nil
}

func (b *checkbox) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = checkbox(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("checkbox must be a boolean or string: %w", err)
	}
	return b.UnmarshalText([]byte(s))
}
