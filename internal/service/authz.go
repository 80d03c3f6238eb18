// Package service holds the application operations behind the HTTP handlers and CLIs.
package service

import "quill/internal/models"

// CanEditPost reports whether actorID may modify post. Only the author can.
func CanEditPost(actorID uint, post *models.Post) bool {
	return post != nil && actorID != 0 && post.AuthorID == actorID
}
