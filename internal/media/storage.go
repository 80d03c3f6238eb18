// Package media stores uploaded post images on local disk.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"quill/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// PostsDir is the subdirectory of the media root holding post images.
const PostsDir = "posts"

// Upload is a file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Storage persists uploads and returns the reference recorded on a post.
type Storage interface {
	Save(ctx context.Context, in Upload) (string, error)
	Remove(ctx context.Context, ref string) error
}

// DiskStorage writes images to <root>/posts/<uuid><ext>.
type DiskStorage struct {
	root     string
	maxBytes int64
}

// NewDiskStorage creates a disk store rooted at root accepting files up to maxBytes.
func NewDiskStorage(root string, maxBytes int64) *DiskStorage {
	return &DiskStorage{root: root, maxBytes: maxBytes}
}

// Save validates the upload as an image and writes it under a random name.
// The returned reference is relative to the media root, e.g. posts/<uuid>.png.
func (s *DiskStorage) Save(_ context.Context, in Upload) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewFieldValidationError("image", "The submitted file is empty")
	}
	if s.maxBytes > 0 && int64(len(in.Content)) > s.maxBytes {
		return "", models.NewFieldValidationError("image", fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return "", models.NewFieldValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewFieldValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}

	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, decodedFormatToMime(format)) {
		return "", models.NewFieldValidationError("image", "Image content type mismatch")
	}

	name := uuid.NewString() + extensionFor(format)
	ref := path.Join(PostsDir, name)
	if err := writeBytesToFile(filepath.Join(s.root, PostsDir, name), in.Content); err != nil {
		return "", models.NewInternalError(err)
	}
	return ref, nil
}

// Remove deletes a stored image. Missing files and empty references are ignored.
func (s *DiskStorage) Remove(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	clean := path.Clean("/" + ref)
	if !strings.HasPrefix(clean, "/"+PostsDir+"/") {
		return models.NewValidationError("invalid media reference")
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	if err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp":
		return "." + format
	default:
		return ""
	}
}

func writeBytesToFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}
