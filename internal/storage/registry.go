package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Config selects the primary backend and its connection settings.
type Config struct {
	Backend       string
	BasePath      string
	LegacyRead    bool
	InlineMaxSize int64
	MaxSize       int64
	Mongo         MongoConfig
	S3            S3Config
}

type MongoConfig struct {
	URI      string
	Database string
	Bucket   string
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Registry routes each handle to the store that owns its backend.
// New blobs always go to the primary; the others only serve and delete
// what was written before a backend switch.
type Registry struct {
	primary BlobStore
	stores  map[Backend]BlobStore
}

func NewRegistry(primary BlobStore, legacy ...BlobStore) *Registry {
	r := &Registry{
		primary: primary,
		stores:  map[Backend]BlobStore{primary.Backend(): primary},
	}
	for _, s := range legacy {
		if _, taken := r.stores[s.Backend()]; !taken {
			r.stores[s.Backend()] = s
		}
	}
	return r
}

// Open builds the primary store named by cfg.Backend and, with LegacyRead,
// every other store the configuration is able to reach.
func Open(ctx context.Context, cfg Config) (*Registry, error) {
	primary, err := openBackend(ctx, cfg, cfg.Backend)
	if err != nil {
		return nil, err
	}

	var legacy []BlobStore
	if cfg.LegacyRead {
		for _, name := range []string{"inline", "filesystem", "gridfs", "s3"} {
			if name == cfg.Backend || !configured(cfg, name) {
				continue
			}
			s, err := openBackend(ctx, cfg, name)
			if err != nil {
				for _, opened := range append(legacy, primary) {
					_ = opened.Close(ctx)
				}
				return nil, fmt.Errorf("legacy %s store: %w", name, err)
			}
			legacy = append(legacy, s)
		}
	}

	return NewRegistry(primary, legacy...), nil
}

func configured(cfg Config, name string) bool {
	switch name {
	case "inline":
		return true
	case "filesystem":
		return cfg.BasePath != ""
	case "gridfs":
		// gridfs and s3 share the object backend; only one can be registered.
		return cfg.Mongo.URI != "" && cfg.Backend != "s3"
	case "s3":
		return cfg.S3.Endpoint != "" && cfg.Backend != "gridfs" && cfg.Mongo.URI == ""
	}
	return false
}

func openBackend(ctx context.Context, cfg Config, name string) (BlobStore, error) {
	switch name {
	case "inline":
		return NewInlineStore(cfg.InlineMaxSize), nil
	case "", "filesystem", "local":
		return NewFilesystemStore(cfg.BasePath, cfg.MaxSize)
	case "gridfs":
		b, err := NewGridFSBucket(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return NewObjectStore(b, cfg.MaxSize), nil
	case "s3", "minio":
		b, err := NewMinioBucket(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewObjectStore(b, cfg.MaxSize), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", name)
	}
}

// Primary is the store new uploads are written to.
func (r *Registry) Primary() BlobStore { return r.primary }

// For returns the store owning h. An unregistered backend is reported as unavailable.
func (r *Registry) For(h Handle) (BlobStore, error) {
	s, ok := r.stores[h.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: no %q store registered", ErrUnavailable, h.Backend)
	}
	return s, nil
}

func (r *Registry) Store(ctx context.Context, body io.Reader, size int64, contentType string, meta Metadata) (Handle, error) {
	return r.primary.Store(ctx, body, size, contentType, meta)
}

func (r *Registry) Open(ctx context.Context, h Handle) (*Object, error) {
	s, err := r.For(h)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, h)
}

func (r *Registry) Stat(ctx context.Context, h Handle) (*FileInfo, error) {
	s, err := r.For(h)
	if err != nil {
		return nil, err
	}
	return s.Stat(ctx, h)
}

func (r *Registry) Delete(ctx context.Context, h Handle) (bool, error) {
	s, err := r.For(h)
	if err != nil {
		return false, err
	}
	return s.Delete(ctx, h)
}

// Close releases every registered store.
func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	for _, s := range r.stores {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s store: %w", s.Backend(), err))
		}
	}
	return errors.Join(errs...)
}
