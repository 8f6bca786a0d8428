package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sidecarSuffix names the file next to each blob that keeps its declared
// content type and metadata.
const sidecarSuffix = ".meta.json"

// FilesystemStore keeps blobs as files below a base directory.
// Handles are slash-separated paths relative to that directory.
type FilesystemStore struct {
	basePath string
	maxSize  int64
}

// NewFilesystemStore creates the base directory and one subdirectory per asset category.
func NewFilesystemStore(basePath string, maxSize int64) (*FilesystemStore, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	for _, kind := range []Kind{KindPhoto, KindVideo, KindCV} {
		dir := filepath.Join(basePath, kind.Category())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &FilesystemStore{basePath: basePath, maxSize: maxSize}, nil
}

func (s *FilesystemStore) Backend() Backend { return BackendFilesystem }

func (s *FilesystemStore) BasePath() string { return s.basePath }

// Store writes into a temp file and renames it, so a failed write leaves nothing behind.
func (s *FilesystemStore) Store(ctx context.Context, r io.Reader, size int64, contentType string, meta Metadata) (Handle, error) {
	if err := checkSize(size, s.maxSize); err != nil {
		return Handle{}, err
	}

	name := fmt.Sprintf("%s-%s%s", meta.Kind, uuid.NewString(), extensionFor(meta.Filename, contentType))
	rel := filepath.Join(meta.Kind.Category(), name)
	fullPath := filepath.Join(s.basePath, rel)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Handle{}, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return Handle{}, fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, newLimitedReader(ctxReader{ctx: ctx, r: r}, s.maxSize))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		var sizeErr *SizeLimitError
		if errors.As(err, &sizeErr) {
			return Handle{}, err
		}
		return Handle{}, fmt.Errorf("failed to write file: %w", err)
	}

	if err := writeSidecar(fullPath, meta.asMap(contentType)); err != nil {
		os.Remove(tmpName)
		return Handle{}, err
	}

	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		os.Remove(fullPath + sidecarSuffix)
		return Handle{}, fmt.Errorf("failed to finalize file: %w", err)
	}

	return Handle{Backend: BackendFilesystem, Ref: filepath.ToSlash(rel)}, nil
}

func (s *FilesystemStore) Open(ctx context.Context, h Handle) (*Object, error) {
	fullPath, err := s.resolve(h)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, h.Ref)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := s.statFile(h, fullPath, file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Object{Body: file, Info: *info}, nil
}

func (s *FilesystemStore) Stat(ctx context.Context, h Handle) (*FileInfo, error) {
	fullPath, err := s.resolve(h)
	if err != nil {
		return nil, err
	}
	return s.statFile(h, fullPath, nil)
}

// Delete removes the file. A missing file is not an error.
func (s *FilesystemStore) Delete(ctx context.Context, h Handle) (bool, error) {
	fullPath, err := s.resolve(h)
	if err != nil {
		return false, err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			_ = os.Remove(fullPath + sidecarSuffix)
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(fullPath + sidecarSuffix); err != nil && !os.IsNotExist(err) {
		return true, fmt.Errorf("failed to delete metadata file: %w", err)
	}
	return true, nil
}

func (s *FilesystemStore) Close(ctx context.Context) error { return nil }

// resolve rejects refs that would escape the base directory.
func (s *FilesystemStore) resolve(h Handle) (string, error) {
	if err := checkBackend(h, BackendFilesystem); err != nil {
		return "", err
	}
	rel := filepath.FromSlash(h.Ref)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: path %q escapes storage root", ErrInvalidHandle, h.Ref)
	}
	if strings.HasSuffix(rel, sidecarSuffix) {
		return "", fmt.Errorf("%w: %q is a metadata file", ErrInvalidHandle, h.Ref)
	}
	return filepath.Join(s.basePath, rel), nil
}

func (s *FilesystemStore) statFile(h Handle, fullPath string, open *os.File) (*FileInfo, error) {
	var (
		fi  os.FileInfo
		err error
	)
	if open != nil {
		fi, err = open.Stat()
	} else {
		fi, err = os.Stat(fullPath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, h.Ref)
		}
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidHandle, h.Ref)
	}

	info := &FileInfo{
		Handle:   h,
		Name:     fi.Name(),
		Size:     fi.Size(),
		ModTime:  fi.ModTime(),
		Metadata: readSidecar(fullPath),
	}
	if info.Metadata != nil {
		info.ContentType = info.Metadata["content_type"]
		if name := info.Metadata["original_name"]; name != "" {
			info.Name = name
		}
	}

	// Files written before sidecars existed are sniffed.
	if info.ContentType == "" {
		if mt, err := mimetype.DetectFile(fullPath); err == nil {
			info.ContentType = mt.String()
		} else {
			info.ContentType = "application/octet-stream"
		}
	}
	return info, nil
}

func writeSidecar(fullPath string, meta map[string]string) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(fullPath+sidecarSuffix, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// readSidecar returns nil when the metadata file is missing or unreadable.
func readSidecar(fullPath string) map[string]string {
	data, err := os.ReadFile(fullPath + sidecarSuffix)
	if err != nil {
		return nil
	}
	var meta map[string]string
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return meta
}

// extensionFor prefers the client's extension and falls back to the declared type.
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); len(ext) > 1 && strings.Trim(ext[1:], "abcdefghijklmnopqrstuvwxyz0123456789") == "" {
		return ext
	}
	if contentType != "" {
		if mt := mimetype.Lookup(contentType); mt != nil {
			return mt.Extension()
		}
	}
	return ""
}
