package server

import (
	"log/slog"
	"time"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupRequest is the account registration form.
type SignupRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest is the credential form. Next is the optional return path.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// SessionResponse is returned when a session is issued without a redirect.
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup godoc
// @Summary Register a new account
// @Description Creates a user and opens a session for it
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body SignupRequest true "Signup form"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.openSession(c, user)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(SessionResponse{Token: token, User: user})
}

// LoginForm godoc
// @Summary Login form context
// @Tags auth
// @Produce json
// @Param next query string false "Return path after login"
// @Success 200 {object} map[string]interface{}
// @Router /auth/login [get]
func (s *Server) LoginForm(c *fiber.Ctx) error {
	next, _ := middleware.SafeNext(c.Query("next"))
	return c.JSON(fiber.Map{
		"form": fiber.Map{"username": ""},
		"next": next,
	})
}

// Login godoc
// @Summary Log in
// @Description Sets the session cookie and redirects to a safe next path when one is given
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Param next query string false "Return path after login"
// @Success 200 {object} SessionResponse
// @Success 302
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.openSession(c, user)
	if err != nil {
		return s.respondError(c, err)
	}

	next := req.Next
	if next == "" {
		next = c.Query("next")
	}
	if dest, ok := middleware.SafeNext(next); ok {
		return c.Redirect(dest, fiber.StatusFound)
	}
	return c.JSON(SessionResponse{Token: token, User: user})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current token and clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims, ok := c.Locals("claims").(*middleware.SessionClaims); ok && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.blacklist.Revoke(c.UserContext(), claims.ID, ttl); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", slog.String("error", err.Error()))
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) openSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, time.Now())
	if err != nil {
		return "", models.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	middleware.Logger.InfoContext(c.UserContext(), "session opened", slog.Uint64("user_id", uint64(user.ID)))
	return token, nil
}
