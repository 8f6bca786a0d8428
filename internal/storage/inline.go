package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const dataURIPrefix = "data:"

// InlineStore encodes payloads as base64 data URIs that live inside the owning record.
// The handle is the data URI itself.
type InlineStore struct {
	maxSize int64
}

func NewInlineStore(maxSize int64) *InlineStore {
	if maxSize <= 0 {
		maxSize = DefaultInlineMaxSize
	}
	return &InlineStore{maxSize: maxSize}
}

func (s *InlineStore) Backend() Backend { return BackendInline }

func (s *InlineStore) Store(ctx context.Context, r io.Reader, size int64, contentType string, meta Metadata) (Handle, error) {
	if err := checkSize(size, s.maxSize); err != nil {
		return Handle{}, err
	}

	data, err := io.ReadAll(newLimitedReader(ctxReader{ctx: ctx, r: r}, s.maxSize))
	if err != nil {
		return Handle{}, err
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}
	// Parameters such as charset would break the data URI layout.
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	return Handle{Backend: BackendInline, Ref: EncodeDataURI(contentType, data)}, nil
}

func (s *InlineStore) Open(ctx context.Context, h Handle) (*Object, error) {
	info, data, err := s.decode(h)
	if err != nil {
		return nil, err
	}
	return &Object{Body: io.NopCloser(bytes.NewReader(data)), Info: *info}, nil
}

func (s *InlineStore) Stat(ctx context.Context, h Handle) (*FileInfo, error) {
	info, _, err := s.decode(h)
	return info, err
}

// Delete has nothing to remove: the payload disappears with the record that holds it.
func (s *InlineStore) Delete(ctx context.Context, h Handle) (bool, error) {
	if err := checkBackend(h, BackendInline); err != nil {
		return false, err
	}
	return true, nil
}

func (s *InlineStore) Close(ctx context.Context) error { return nil }

func (s *InlineStore) decode(h Handle) (*FileInfo, []byte, error) {
	if err := checkBackend(h, BackendInline); err != nil {
		return nil, nil, err
	}
	contentType, data, err := DecodeDataURI(h.Ref)
	if err != nil {
		return nil, nil, err
	}
	return &FileInfo{
		Handle:      h,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, data, nil
}

// EncodeDataURI renders data as "data:<type>;base64,<payload>".
func EncodeDataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	var b strings.Builder
	b.Grow(len(dataURIPrefix) + len(contentType) + 8 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(dataURIPrefix)
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DecodeDataURI parses a base64 data URI.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", nil, fmt.Errorf("%w: not a data URI", ErrInvalidHandle)
	}
	header, payload, ok := strings.Cut(uri[len(dataURIPrefix):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URI has no payload", ErrInvalidHandle)
	}
	contentType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: data URI is not base64 encoded", ErrInvalidHandle)
	}
	if contentType == "" {
		contentType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	return contentType, data, nil
}
