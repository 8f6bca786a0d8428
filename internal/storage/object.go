package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Bucket is the chunked object service behind ObjectStore.
// Implementations return ErrNotFound for missing ids and wrap connectivity
// failures with ErrUnavailable.
type Bucket interface {
	Name() string
	Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string, meta map[string]string) (string, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *FileInfo, error)
	Stat(ctx context.Context, id string) (*FileInfo, error)
	Remove(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// ObjectStore streams payloads into a Bucket. Handles are bucket-assigned ids.
type ObjectStore struct {
	bucket  Bucket
	maxSize int64
}

func NewObjectStore(bucket Bucket, maxSize int64) *ObjectStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &ObjectStore{bucket: bucket, maxSize: maxSize}
}

func (s *ObjectStore) Backend() Backend { return BackendObject }

func (s *ObjectStore) Bucket() Bucket { return s.bucket }

func (s *ObjectStore) Store(ctx context.Context, r io.Reader, size int64, contentType string, meta Metadata) (Handle, error) {
	if err := checkSize(size, s.maxSize); err != nil {
		return Handle{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Keys stay slash-free so they fit in a single URL segment.
	name := fmt.Sprintf("%s-%s%s", meta.Kind, uuid.NewString(), extensionFor(meta.Filename, contentType))
	body := newLimitedReader(ctxReader{ctx: ctx, r: r}, s.maxSize)

	id, err := s.bucket.Upload(ctx, name, body, size, contentType, meta.asMap(contentType))
	if err != nil {
		var sizeErr *SizeLimitError
		if errors.As(err, &sizeErr) {
			return Handle{}, sizeErr
		}
		return Handle{}, fmt.Errorf("upload to %s: %w", s.bucket.Name(), err)
	}
	return Handle{Backend: BackendObject, Ref: id}, nil
}

func (s *ObjectStore) Open(ctx context.Context, h Handle) (*Object, error) {
	if err := checkBackend(h, BackendObject); err != nil {
		return nil, err
	}
	rc, info, err := s.bucket.Download(ctx, h.Ref)
	if err != nil {
		return nil, err
	}
	info.Handle = h
	return &Object{Body: withContext(ctx, rc), Info: *info}, nil
}

func (s *ObjectStore) Stat(ctx context.Context, h Handle) (*FileInfo, error) {
	if err := checkBackend(h, BackendObject); err != nil {
		return nil, err
	}
	info, err := s.bucket.Stat(ctx, h.Ref)
	if err != nil {
		return nil, err
	}
	info.Handle = h
	return info, nil
}

// Delete removes the object and all its chunks. A missing object is not an error.
func (s *ObjectStore) Delete(ctx context.Context, h Handle) (bool, error) {
	if err := checkBackend(h, BackendObject); err != nil {
		return false, err
	}
	if err := s.bucket.Remove(ctx, h.Ref); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *ObjectStore) Close(ctx context.Context) error {
	return s.bucket.Close(ctx)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
