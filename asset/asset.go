// Package asset defines the durable media store used for generated images,
// clips and the assembled final output.
package asset

import (
	"context"
	"errors"
	"io"
	"path/filepath"
)

// ErrNotFound indicates the requested object does not exist in the store.
var ErrNotFound = errors.New("asset not found")

// Store persists generated media and returns retrievable URLs. Size may be -1
// when unknown.
type Store interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}

// ContentTypeFor guesses a content type from the object name extension.
func ContentTypeFor(objectName string) string {
	switch filepath.Ext(objectName) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
