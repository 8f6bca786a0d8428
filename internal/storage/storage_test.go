package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestInlineStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewInlineStore(0)

	h, err := s.Store(ctx, bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png", Metadata{Kind: KindPhoto})
	require.NoError(t, err)
	assert.Equal(t, BackendInline, h.Backend)
	assert.True(t, strings.HasPrefix(h.Ref, "data:image/png;base64,"))

	data, info, err := ReadAll(ctx, s, h)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(len(pngHeader)), info.Size)
}

func TestInlineStore_SniffsMissingContentType(t *testing.T) {
	s := NewInlineStore(0)

	h, err := s.Store(context.Background(), bytes.NewReader(pngHeader), -1, "", Metadata{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h.Ref, "data:image/png;base64,"), h.String())
}

func TestInlineStore_RejectsOversizedDeclaredSize(t *testing.T) {
	s := NewInlineStore(0)
	r := &countingReader{}

	_, err := s.Store(context.Background(), r, 11<<20, "image/jpeg", Metadata{Kind: KindPhoto})

	var sizeErr *SizeLimitError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, DefaultInlineMaxSize, sizeErr.Limit)
	assert.True(t, errors.Is(err, ErrTooLarge))
	assert.Zero(t, r.reads, "payload must not be read once the declared size is over the limit")
}

func TestInlineStore_RejectsOversizedStream(t *testing.T) {
	s := NewInlineStore(16)

	_, err := s.Store(context.Background(), bytes.NewReader(make([]byte, 32)), -1, "image/jpeg", Metadata{})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestInlineStore_InvalidHandle(t *testing.T) {
	s := NewInlineStore(0)

	_, err := s.Open(context.Background(), Handle{Backend: BackendInline, Ref: "not-a-data-uri"})
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = s.Open(context.Background(), Handle{Backend: BackendFilesystem, Ref: "photos/a.png"})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestDataURI(t *testing.T) {
	uri := EncodeDataURI("application/pdf", []byte("%PDF-1.4"))
	assert.Equal(t, "data:application/pdf;base64,JVBERi0xLjQ=", uri)

	ct, data, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, _, err = DecodeDataURI("data:text/plain,hello")
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestFilesystemStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewFilesystemStore(base, 0)
	require.NoError(t, err)

	for _, dir := range []string{"photos", "videos", "cvs"} {
		assert.DirExists(t, filepath.Join(base, dir))
	}

	h, err := s.Store(ctx, bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png",
		Metadata{OwnerID: "t1", Kind: KindPhoto, Filename: "Portrait.PNG"})
	require.NoError(t, err)
	assert.Equal(t, BackendFilesystem, h.Backend)
	assert.True(t, strings.HasPrefix(h.Ref, "photos/photo-"), h.Ref)
	assert.True(t, strings.HasSuffix(h.Ref, ".png"), h.Ref)

	data, info, err := ReadAll(ctx, s, h)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(len(pngHeader)), info.Size)

	removed, err := s.Delete(ctx, h)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.Open(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err = s.Delete(ctx, h)
	require.NoError(t, err)
	assert.False(t, removed, "deleting a missing blob is a no-op")
}

func TestFilesystemStore_KeepsDeclaredContentType(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystemStore(t.TempDir(), 0)
	require.NoError(t, err)

	tests := []struct {
		contentType string
		kind        Kind
		filename    string
		payload     []byte
	}{
		{"image/jpg", KindPhoto, "face.jpg", []byte("\xff\xd8\xff\xe0 jpeg body")},
		{"image/webp", KindPhoto, "face.webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")},
		{"video/ogg", KindVideo, "demo.ogg", []byte("OggS\x00\x02 video")},
		{"video/quicktime", KindVideo, "demo.mov", []byte("\x00\x00\x00\x14ftypqt  ")},
		{"video/mp4", KindVideo, "", []byte("\x00\x00\x00\x18ftypmp42")},
		{"application/pdf", KindCV, "cv.pdf", []byte("%PDF-1.4 body")},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			meta := Metadata{OwnerID: "t1", Kind: tt.kind, Filename: tt.filename}
			h, err := s.Store(ctx, bytes.NewReader(tt.payload), int64(len(tt.payload)), tt.contentType, meta)
			require.NoError(t, err)

			data, info, err := ReadAll(ctx, s, h)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, data)
			assert.Equal(t, tt.contentType, info.ContentType)
			assert.Equal(t, "t1", info.Metadata["owner_id"])
			assert.Equal(t, string(tt.kind), info.Metadata["kind"])
			if tt.filename != "" {
				assert.Equal(t, tt.filename, info.Name)
			}

			stat, err := s.Stat(ctx, h)
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, stat.ContentType)
		})
	}
}

func TestFilesystemStore_DeleteRemovesMetadata(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewFilesystemStore(base, 0)
	require.NoError(t, err)

	h, err := s.Store(ctx, strings.NewReader("%PDF-1.4"), 8, "application/pdf", Metadata{Kind: KindCV})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(base, filepath.FromSlash(h.Ref)+sidecarSuffix))

	_, err = s.Open(ctx, Handle{Backend: BackendFilesystem, Ref: h.Ref + sidecarSuffix})
	assert.ErrorIs(t, err, ErrInvalidHandle)

	removed, err := s.Delete(ctx, h)
	require.NoError(t, err)
	assert.True(t, removed)

	entries, err := os.ReadDir(filepath.Join(base, "cvs"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilesystemStore_SniffsFilesWithoutMetadata(t *testing.T) {
	base := t.TempDir()
	s, err := NewFilesystemStore(base, 0)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(base, "photos", "legacy"), pngHeader, 0644))

	info, err := s.Stat(context.Background(), Handle{Backend: BackendFilesystem, Ref: "photos/legacy"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, "legacy", info.Name)
	assert.Nil(t, info.Metadata)
}

func TestFilesystemStore_OversizedLeavesNoFile(t *testing.T) {
	base := t.TempDir()
	s, err := NewFilesystemStore(base, 8)
	require.NoError(t, err)

	_, err = s.Store(context.Background(), bytes.NewReader(make([]byte, 64)), -1, "video/mp4", Metadata{Kind: KindVideo})
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(base, "videos"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilesystemStore_RejectsEscapingPaths(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), Handle{Backend: BackendFilesystem, Ref: "../../etc/passwd"})
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = s.Delete(context.Background(), Handle{Backend: BackendFilesystem, Ref: "/etc/passwd"})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestFilesystemStore_HonoursCancelledContext(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Store(ctx, bytes.NewReader(pngHeader), -1, "image/png", Metadata{Kind: KindPhoto})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".pdf", extensionFor("CV.PDF", "application/pdf"))
	assert.Equal(t, ".mp4", extensionFor("", "video/mp4"))
	assert.Equal(t, ".png", extensionFor("weird.p g", "image/png"))
	assert.Equal(t, "", extensionFor("", ""))
}

func TestHandleString_TruncatesInlinePayload(t *testing.T) {
	h := Handle{Backend: BackendInline, Ref: EncodeDataURI("image/png", make([]byte, 1024))}
	assert.Less(t, len(h.String()), 100)
}

type countingReader struct{ reads int }

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return 0, errors.New("unexpected read")
}
