package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Backend names the strategy that owns a blob.
type Backend string

const (
	BackendInline     Backend = "inline"
	BackendFilesystem Backend = "filesystem"
	BackendObject     Backend = "object"
)

// Kind is the slot an asset is uploaded into.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindCV    Kind = "cv"
)

// Category returns the subdirectory / key prefix used for the kind.
func (k Kind) Category() string {
	switch k {
	case KindPhoto:
		return "photos"
	case KindVideo:
		return "videos"
	case KindCV:
		return "cvs"
	default:
		return "misc"
	}
}

const (
	DefaultInlineMaxSize int64 = 10 << 20
	DefaultMaxSize       int64 = 50 << 20
)

var (
	ErrNotFound      = errors.New("storage: blob not found")
	ErrUnavailable   = errors.New("storage: backend unavailable")
	ErrInvalidHandle = errors.New("storage: invalid handle")
	ErrTooLarge      = errors.New("storage: payload too large")
)

// SizeLimitError is returned before any write when a payload exceeds the backend ceiling.
type SizeLimitError struct {
	Limit int64
	Size  int64
}

func (e *SizeLimitError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("storage: payload exceeds the %d byte limit", e.Limit)
	}
	return fmt.Sprintf("storage: payload of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

func (e *SizeLimitError) Unwrap() error { return ErrTooLarge }

// Handle is the opaque locator returned by Store.
type Handle struct {
	Backend Backend
	Ref     string
}

func (h Handle) IsZero() bool { return h.Ref == "" }

func (h Handle) String() string {
	ref := h.Ref
	if len(ref) > 64 {
		ref = ref[:64] + "..."
	}
	return string(h.Backend) + ":" + ref
}

// LogValue keeps inline payloads out of log records.
func (h Handle) LogValue() slog.Value {
	return slog.StringValue(h.String())
}

// Metadata travels with a payload into backends that can keep it.
type Metadata struct {
	OwnerID  string
	Kind     Kind
	Filename string
}

func (m Metadata) asMap(contentType string) map[string]string {
	out := map[string]string{
		"owner_id":     m.OwnerID,
		"kind":         string(m.Kind),
		"content_type": contentType,
	}
	if m.Filename != "" {
		out["original_name"] = m.Filename
	}
	return out
}

// FileInfo describes a stored blob. Size is -1 when unknown.
type FileInfo struct {
	Handle      Handle
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Metadata    map[string]string
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Body io.ReadCloser
	Info FileInfo
}

// BlobStore is implemented by every storage strategy.
type BlobStore interface {
	Backend() Backend

	// Store persists the payload. size may be -1 when unknown; the ceiling is still enforced.
	Store(ctx context.Context, r io.Reader, size int64, contentType string, meta Metadata) (Handle, error)

	// Open returns a reader over the payload.
	Open(ctx context.Context, h Handle) (*Object, error)

	// Stat returns ErrNotFound when the blob is absent.
	Stat(ctx context.Context, h Handle) (*FileInfo, error)

	// Delete reports whether a blob was removed. An absent blob is (false, nil).
	Delete(ctx context.Context, h Handle) (bool, error)

	Close(ctx context.Context) error
}

// ReadAll opens the handle and materialises the payload.
func ReadAll(ctx context.Context, s BlobStore, h Handle) ([]byte, *FileInfo, error) {
	obj, err := s.Open(ctx, h)
	if err != nil {
		return nil, nil, err
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, nil, err
	}
	info := obj.Info
	if info.Size < 0 {
		info.Size = int64(len(data))
	}
	return data, &info, nil
}

func checkSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return &SizeLimitError{Limit: limit, Size: size}
	}
	return nil
}

func checkBackend(h Handle, want Backend) error {
	if h.Backend != want || h.Ref == "" {
		return fmt.Errorf("%w: %s handle given to %s store", ErrInvalidHandle, h.Backend, want)
	}
	return nil
}

// limitedReader fails with a SizeLimitError once more than limit bytes were read,
// so a lying declared size cannot push a backend past its ceiling.
type limitedReader struct {
	r     io.Reader
	limit int64
	n     int64
}

func newLimitedReader(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	return &limitedReader{r: r, limit: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.limit {
		return n, &SizeLimitError{Limit: l.limit, Size: -1}
	}
	return n, err
}

// ctxReader aborts a transfer once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

type ctxReadCloser struct {
	ctxReader
	io.Closer
}

func withContext(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	return ctxReadCloser{ctxReader: ctxReader{ctx: ctx, r: rc}, Closer: rc}
}
