package server

import (
	"quill/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// loginRequired redirects anonymous callers to the login page with the
// requested path as the return target. It never mutates state.
func (s *Server) loginRequired() fiber.Handler {
	return middleware.LoginRequired(s.config.LoginURL)
}

// actorID returns the authenticated user. Routes behind loginRequired always have one.
func actorID(c *fiber.Ctx) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}
