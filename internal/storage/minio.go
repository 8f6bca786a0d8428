package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioBucket stores objects in an S3-compatible bucket. Ids are object keys.
type MinioBucket struct {
	client *minio.Client
	bucket string
}

func NewMinioBucket(ctx context.Context, cfg S3Config) (*MinioBucket, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, mapMinioErr("s3 bucket check", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, mapMinioErr("s3 make bucket", err)
		}
	}

	return &MinioBucket{client: client, bucket: cfg.Bucket}, nil
}

func (b *MinioBucket) Name() string { return "s3:" + b.bucket }

func (b *MinioBucket) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string, meta map[string]string) (string, error) {
	info, err := b.client.PutObject(ctx, b.bucket, name, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
	})
	if err != nil {
		return "", mapMinioErr("s3 upload", err)
	}
	return info.Key, nil
}

func (b *MinioBucket) Download(ctx context.Context, id string) (io.ReadCloser, *FileInfo, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, mapMinioErr("s3 download", err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, nil, mapMinioErr("s3 download", err)
	}
	return obj, fileInfoFromMinio(st), nil
}

func (b *MinioBucket) Stat(ctx context.Context, id string) (*FileInfo, error) {
	st, err := b.client.StatObject(ctx, b.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapMinioErr("s3 stat", err)
	}
	return fileInfoFromMinio(st), nil
}

// Remove stats first because S3 deletes of missing keys succeed silently.
func (b *MinioBucket) Remove(ctx context.Context, id string) error {
	if _, err := b.Stat(ctx, id); err != nil {
		return err
	}
	if err := b.client.RemoveObject(ctx, b.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioErr("s3 delete", err)
	}
	return nil
}

func (b *MinioBucket) Close(ctx context.Context) error { return nil }

func mapMinioErr(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return unavailable(op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func fileInfoFromMinio(st minio.ObjectInfo) *FileInfo {
	contentType := st.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &FileInfo{
		Name:        st.Key,
		ContentType: contentType,
		Size:        st.Size,
		ModTime:     st.LastModified,
		Metadata:    st.UserMetadata,
	}
}
