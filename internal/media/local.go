package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes files under dir and serves them from prefix.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, prefix: strings.TrimRight(prefix, "/")}, nil
}

// Dir is the directory the router serves statically.
func (s *LocalStore) Dir() string { return s.dir }

// extensionFor 由 Content-Type 决定扩展名，客户端文件名的扩展名只在与类型一致时采用。
// 无法识别的类型不带扩展名，静态服务按 octet-stream 返回。
func extensionFor(originalName, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	exts, _ := mime.ExtensionsByType(mediaType)
	preferred, ok := preferredExt[mediaType]
	if ok {
		exts = append(exts, preferred)
	}
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		for _, e := range exts {
			if e == ext {
				return ext
			}
		}
	}
	if ok {
		return preferred
	}
	if len(exts) > 0 {
		return exts[0]
	}
	return ""
}

var preferredExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

func (s *LocalStore) Put(ctx context.Context, originalName, contentType string, r io.Reader) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := uuid.New().String() + extensionFor(originalName, contentType)
	full := filepath.Join(s.dir, key)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", key, err)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil {
		copyErr = ctx.Err()
	}
	if copyErr != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("write %s: %w", key, copyErr)
	}

	return &Object{
		Key:         key,
		URL:         path.Join(s.prefix, key),
		Type:        KindOf(contentType),
		ContentType: contentType,
		Size:        n,
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if key == "" || key != filepath.Base(key) {
		return fmt.Errorf("invalid media key %q", key)
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
