package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBucket is an in-memory Bucket.
type memBucket struct {
	mu      sync.Mutex
	objects map[string]memObject
	seq     int
	down    bool
}

type memObject struct {
	data        []byte
	contentType string
	meta        map[string]string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string]memObject{}}
}

func (b *memBucket) Name() string { return "mem" }

func (b *memBucket) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string, meta map[string]string) (string, error) {
	if b.down {
		return "", unavailable("mem upload", io.ErrClosedPipe)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := fmt.Sprintf("%024x", b.seq)
	b.objects[id] = memObject{data: data, contentType: contentType, meta: meta}
	return id, nil
}

func (b *memBucket) Download(ctx context.Context, id string) (io.ReadCloser, *FileInfo, error) {
	info, err := b.Stat(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return io.NopCloser(bytes.NewReader(b.objects[id].data)), info, nil
}

func (b *memBucket) Stat(ctx context.Context, id string) (*FileInfo, error) {
	if b.down {
		return nil, unavailable("mem stat", io.ErrClosedPipe)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[id]
	if !ok {
		return nil, fmt.Errorf("mem stat: %w", ErrNotFound)
	}
	return &FileInfo{Name: id, ContentType: obj.contentType, Size: int64(len(obj.data)), ModTime: time.Now(), Metadata: obj.meta}, nil
}

func (b *memBucket) Remove(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[id]; !ok {
		return fmt.Errorf("mem remove: %w", ErrNotFound)
	}
	delete(b.objects, id)
	return nil
}

func (b *memBucket) Close(ctx context.Context) error { return nil }

func TestObjectStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket := newMemBucket()
	s := NewObjectStore(bucket, 0)

	video := bytes.Repeat([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, 4096)
	h, err := s.Store(ctx, bytes.NewReader(video), int64(len(video)), "video/mp4",
		Metadata{OwnerID: "t1", Kind: KindVideo, Filename: "reel.mp4"})
	require.NoError(t, err)
	assert.Equal(t, BackendObject, h.Backend)

	stored := bucket.objects[h.Ref]
	assert.Equal(t, "t1", stored.meta["owner_id"])
	assert.Equal(t, "video", stored.meta["kind"])
	assert.Equal(t, "reel.mp4", stored.meta["original_name"])

	data, info, err := ReadAll(ctx, s, h)
	require.NoError(t, err)
	assert.Equal(t, video, data)
	assert.Equal(t, "video/mp4", info.ContentType)
	assert.Equal(t, h, info.Handle)

	removed, err := s.Delete(ctx, h)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.Stat(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err = s.Delete(ctx, h)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestObjectStore_SizeLimit(t *testing.T) {
	bucket := newMemBucket()
	s := NewObjectStore(bucket, 10)

	_, err := s.Store(context.Background(), strings.NewReader("x"), 11, "application/pdf", Metadata{Kind: KindCV})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Store(context.Background(), strings.NewReader(strings.Repeat("x", 20)), -1, "application/pdf", Metadata{Kind: KindCV})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, bucket.objects)
}

func TestObjectStore_Unavailable(t *testing.T) {
	bucket := newMemBucket()
	bucket.down = true
	s := NewObjectStore(bucket, 0)

	_, err := s.Store(context.Background(), strings.NewReader("x"), 1, "application/pdf", Metadata{Kind: KindCV})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestObjectStore_CancelledReadAborts(t *testing.T) {
	bucket := newMemBucket()
	s := NewObjectStore(bucket, 0)
	h, err := s.Store(context.Background(), strings.NewReader("payload"), 7, "text/plain", Metadata{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	obj, err := s.Open(ctx, h)
	require.NoError(t, err)
	defer obj.Body.Close()

	cancel()
	_, err = io.ReadAll(obj.Body)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_RoutesByBackend(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystemStore(t.TempDir(), 0)
	require.NoError(t, err)
	inline := NewInlineStore(0)
	reg := NewRegistry(NewObjectStore(newMemBucket(), 0), fs, inline)

	legacy, err := inline.Store(ctx, bytes.NewReader(pngHeader), -1, "image/png", Metadata{})
	require.NoError(t, err)

	current, err := reg.Store(ctx, bytes.NewReader(pngHeader), -1, "image/png", Metadata{Kind: KindPhoto})
	require.NoError(t, err)
	assert.Equal(t, BackendObject, current.Backend)

	for _, h := range []Handle{legacy, current} {
		obj, err := reg.Open(ctx, h)
		require.NoError(t, err)
		data, _ := io.ReadAll(obj.Body)
		obj.Body.Close()
		assert.Equal(t, pngHeader, data)
	}

	require.NoError(t, reg.Close(ctx))
}

func TestRegistry_UnknownBackend(t *testing.T) {
	reg := NewRegistry(NewInlineStore(0))

	_, err := reg.Open(context.Background(), Handle{Backend: BackendObject, Ref: "abc"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpen_FilesystemWithLegacyInline(t *testing.T) {
	ctx := context.Background()
	reg, err := Open(ctx, Config{Backend: "filesystem", BasePath: t.TempDir(), LegacyRead: true})
	require.NoError(t, err)
	defer reg.Close(ctx)

	assert.Equal(t, BackendFilesystem, reg.Primary().Backend())
	_, err = reg.For(Handle{Backend: BackendInline, Ref: "data:x;base64,"})
	assert.NoError(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "tape"})
	assert.Error(t, err)
}

func TestGridFSBucket_Integration(t *testing.T) {
	uri := os.Getenv("GOCAST_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("GOCAST_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	bucket, err := NewGridFSBucket(ctx, MongoConfig{URI: uri, Database: "gocast_test"})
	require.NoError(t, err)
	exerciseBucket(t, NewObjectStore(bucket, 0))
}

func TestMinioBucket_Integration(t *testing.T) {
	endpoint := os.Getenv("GOCAST_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("GOCAST_TEST_S3_ENDPOINT not set")
	}
	ctx := context.Background()
	bucket, err := NewMinioBucket(ctx, S3Config{
		Endpoint:  endpoint,
		Bucket:    "gocast-test",
		AccessKey: os.Getenv("GOCAST_TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("GOCAST_TEST_S3_SECRET_KEY"),
	})
	require.NoError(t, err)
	exerciseBucket(t, NewObjectStore(bucket, 0))
}

func exerciseBucket(t *testing.T, s *ObjectStore) {
	t.Helper()
	ctx := context.Background()
	defer s.Close(ctx)

	payload := bytes.Repeat([]byte("chunk"), 100_000)
	h, err := s.Store(ctx, bytes.NewReader(payload), int64(len(payload)), "video/webm", Metadata{OwnerID: "it", Kind: KindVideo, Filename: "it.webm"})
	require.NoError(t, err)

	data, info, err := ReadAll(ctx, s, h)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "video/webm", info.ContentType)

	removed, err := s.Delete(ctx, h)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.Stat(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)
}
