package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps media in a MongoDB GridFS bucket. Objects are streamed
// back through the API under prefix/<objectId>.
type GridFSStore struct {
	bucket *gridfs.Bucket
	prefix string
}

func NewGridFSStore(db *mongo.Database, bucketName, prefix string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %s: %w", bucketName, err)
	}
	return &GridFSStore{bucket: bucket, prefix: strings.TrimRight(prefix, "/")}, nil
}

// countingReader 统计写入字节数
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *GridFSStore) Put(ctx context.Context, originalName, contentType string, r io.Reader) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cr := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "originalName", Value: originalName},
	})
	id, err := s.bucket.UploadFromStream(originalName, cr, opts)
	if err != nil {
		return nil, fmt.Errorf("gridfs upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = s.bucket.Delete(id)
		return nil, err
	}
	key := id.Hex()
	return &Object{
		Key:         key,
		URL:         path.Join(s.prefix, key),
		Type:        KindOf(contentType),
		ContentType: contentType,
		Size:        cr.n,
	}, nil
}

func (s *GridFSStore) Delete(_ context.Context, key string) error {
	id, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return fmt.Errorf("invalid media key %q: %w", key, err)
	}
	if err := s.bucket.Delete(id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}

func (s *GridFSStore) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	id, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return nil, "", ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	contentType := "application/octet-stream"
	if meta := stream.GetFile().Metadata; meta != nil {
		if v, ok := meta.Lookup("contentType").StringValueOK(); ok && v != "" {
			contentType = v
		}
	}
	return stream, contentType, nil
}
