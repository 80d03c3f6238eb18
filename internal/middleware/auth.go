// Package middleware provides logging, identity, tracing and metrics middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "quill-api"
	TokenAudience = "quill-client"
	SessionCookie = "session"
	TokenTTL      = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that fails signature, claim or subject checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims is the JWT payload issued at login.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker func(ctx context.Context, jti string) bool

// AccountChecker reports whether the user a token names still exists.
type AccountChecker func(ctx context.Context, userID uint) bool

// IssueToken signs a session token for the given user.
func IssueToken(secret string, userID uint, username string, now time.Time) (string, *SessionClaims, error) {
	if secret == "" {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken validates signature, issuer, audience and expiry of a session token.
func ParseToken(secret, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExtractToken reads the token from a Bearer Authorization header, falling back to the session cookie.
func ExtractToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Cookies(SessionCookie)
}

// Actor resolves the requesting user when a valid token is present.
// It never rejects a request; anonymous callers simply have no userID local.
// Tokens for deleted accounts resolve as anonymous.
func Actor(secret string, revoked RevocationChecker, exists AccountChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := ExtractToken(c)
		if raw == "" {
			return c.Next()
		}

		claims, err := ParseToken(secret, raw)
		if err != nil {
			return c.Next()
		}
		if revoked != nil && claims.ID != "" && revoked(c.UserContext(), claims.ID) {
			return c.Next()
		}

		userID, _ := claims.UserID()
		if exists != nil && !exists(c.UserContext(), userID) {
			return c.Next()
		}
		c.Locals("userID", userID)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// CurrentUserID returns the resolved actor, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// LoginRequired redirects anonymous callers to loginURL with the original path as next.
func LoginRequired(loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); ok {
			return c.Next()
		}
		return c.Redirect(LoginRedirectURL(loginURL, c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL appends the return path to the login URL.
func LoginRedirectURL(loginURL, next string) string {
	return loginURL + "?next=" + url.QueryEscape(next)
}

// SafeNext accepts only same-site relative paths as a post-login destination.
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "", false
	}
	return next, true
}
