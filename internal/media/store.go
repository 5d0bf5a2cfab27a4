// Package media stores uploaded files and hands back retrieval URLs.
// The rest of the service only keeps the URL, type and metadata.
package media

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned by Open when the key is unknown.
var ErrNotFound = errors.New("media not found")

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	Type        string
	ContentType string
	Size        int64
}

// Store is implemented by the local disk and GridFS backends.
type Store interface {
	Put(ctx context.Context, originalName, contentType string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// Opener is implemented by stores whose objects are streamed by the API
// rather than served as static files.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// KindOf maps a MIME type to image, video or other.
func KindOf(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return "image"
	case strings.HasPrefix(ct, "video/"):
		return "video"
	default:
		return "other"
	}
}
