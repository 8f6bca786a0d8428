package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultGridFSBucket = "uploads"

// GridFSBucket stores objects as GridFS files. Ids are ObjectID hex strings.
type GridFSBucket struct {
	client *mongo.Client
	bucket *gridfs.Bucket
	name   string
}

type gridfsMetadata struct {
	OwnerID      string `bson:"owner_id,omitempty"`
	Kind         string `bson:"kind,omitempty"`
	ContentType  string `bson:"content_type,omitempty"`
	OriginalName string `bson:"original_name,omitempty"`
}

func NewGridFSBucket(ctx context.Context, cfg MongoConfig) (*GridFSBucket, error) {
	if cfg.URI == "" {
		return nil, errors.New("gridfs: mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "gocast"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = defaultGridFSBucket
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, unavailable("gridfs connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable("gridfs ping", err)
	}

	bucket, err := gridfs.NewBucket(client.Database(cfg.Database), options.GridFSBucket().SetName(cfg.Bucket))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}

	return &GridFSBucket{client: client, bucket: bucket, name: cfg.Bucket}, nil
}

func (b *GridFSBucket) Name() string { return "gridfs:" + b.name }

// Upload streams r in chunks. The driver drops already written chunks when r fails.
func (b *GridFSBucket) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string, meta map[string]string) (string, error) {
	md := gridfsMetadata{
		OwnerID:      meta["owner_id"],
		Kind:         meta["kind"],
		ContentType:  contentType,
		OriginalName: meta["original_name"],
	}
	id, err := b.bucket.UploadFromStream(name, r, options.GridFSUpload().SetMetadata(md))
	if err != nil {
		return "", b.mapErr("gridfs upload", err)
	}
	return id.Hex(), nil
}

func (b *GridFSBucket) Download(ctx context.Context, id string) (io.ReadCloser, *FileInfo, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := b.bucket.OpenDownloadStream(oid)
	if err != nil {
		return nil, nil, b.mapErr("gridfs download", err)
	}
	return stream, fileInfoFromGridFS(stream.GetFile()), nil
}

func (b *GridFSBucket) Stat(ctx context.Context, id string) (*FileInfo, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	cursor, err := b.bucket.Find(bson.M{"_id": oid})
	if err != nil {
		return nil, b.mapErr("gridfs stat", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, b.mapErr("gridfs stat", err)
		}
		return nil, fmt.Errorf("%w: gridfs file %s", ErrNotFound, id)
	}

	var file gridfs.File
	if err := cursor.Decode(&file); err != nil {
		return nil, fmt.Errorf("gridfs stat: %w", err)
	}
	return fileInfoFromGridFS(&file), nil
}

// Remove deletes the files document and its chunks.
func (b *GridFSBucket) Remove(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if err := b.bucket.Delete(oid); err != nil {
		return b.mapErr("gridfs delete", err)
	}
	return nil
}

func (b *GridFSBucket) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

func (b *GridFSBucket) mapErr(op string, err error) error {
	switch {
	case errors.Is(err, gridfs.ErrFileNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return unavailable(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not an object id", ErrInvalidHandle, id)
	}
	return oid, nil
}

func fileInfoFromGridFS(file *gridfs.File) *FileInfo {
	info := &FileInfo{
		Name:        file.Name,
		Size:        file.Length,
		ModTime:     file.UploadDate,
		ContentType: "application/octet-stream",
	}

	var md gridfsMetadata
	if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &md) == nil {
		if md.ContentType != "" {
			info.ContentType = md.ContentType
		}
		info.Metadata = map[string]string{
			"owner_id":      md.OwnerID,
			"kind":          md.Kind,
			"original_name": md.OriginalName,
		}
	}
	return info
}
