package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"microblog/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"
	// TokenIssuer and TokenAudience are stamped on every session token.
	TokenIssuer   = "microblog-api"
	TokenAudience = "microblog-client"
)

var cfg *config.Config

// InitMiddleware initializes middleware that depends on configuration.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SessionClaims is the validated content of a session token.
type SessionClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs a session token for userID valid for ttl.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, *SessionClaims, error) {
	now := time.Now()
	sc := &SessionClaims{
		UserID:    userID,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(ttl),
	}
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        sc.JTI,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sc.ExpiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, sc, nil
}

// ParseToken validates signature, expiry, issuer and audience and returns the session claims.
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, errors.New("invalid subject claim")
	}

	return &SessionClaims{
		UserID:    uint(userID),
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TokenFromRequest returns the session token from the Authorization header or the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(SessionCookie)
}

// CurrentUserID returns the user resolved by the auth middleware for this request.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}
