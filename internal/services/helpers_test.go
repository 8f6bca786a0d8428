package services

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocast_backend/database"
	"gocast_backend/internal/models"
	"gocast_backend/internal/repositories"
	"gocast_backend/internal/services/dto"
	"gocast_backend/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"), "test")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestFilesystem(t *testing.T) *storage.FilesystemStore {
	t.Helper()
	fs, err := storage.NewFilesystemStore(t.TempDir(), storage.DefaultMaxSize)
	require.NoError(t, err)
	return fs
}

func newTestAssetService(blobs BlobStore) *AssetServiceImpl {
	return NewAssetService(blobs, repositories.NewTalentRepository(), repositories.NewPhotoRepository()).(*AssetServiceImpl)
}

func createTalent(t *testing.T, db *gorm.DB) *models.Talent {
	t.Helper()
	talent := &models.Talent{
		Nom:           "Dupont",
		Prenom:        "Claire",
		DateNaissance: time.Date(1990, time.May, 4, 0, 0, 0, 0, time.UTC),
		Specialite:    models.SpecialiteActeur,
		TrancheAge:    models.AgeBracketAdulte,
		Statut:        models.TalentStatusActif,
	}
	require.NoError(t, repositories.NewTalentRepository().Create(db, talent))
	return talent
}

func upload(body []byte, contentType, filename string) *dto.AssetUpload {
	return &dto.AssetUpload{
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		ContentType: contentType,
		Filename:    filename,
	}
}

func readStream(t *testing.T, stream *dto.FileStream) []byte {
	t.Helper()
	defer stream.Body.Close()
	data, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	return data
}

// countFiles counts stored blobs under the store's base path, skipping
// metadata sidecars and temp files.
func countFiles(t *testing.T, store *storage.FilesystemStore) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(store.BasePath(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.Type().IsRegular() && !strings.HasSuffix(name, ".meta.json") && !strings.HasPrefix(name, ".upload-") {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

// faultyStore wraps a BlobStore and fails selected operations.
type faultyStore struct {
	BlobStore
	failDelete error
	stores     int
}

func (f *faultyStore) Store(ctx context.Context, r io.Reader, size int64, contentType string, meta storage.Metadata) (storage.Handle, error) {
	f.stores++
	return f.BlobStore.Store(ctx, r, size, contentType, meta)
}

func (f *faultyStore) Delete(ctx context.Context, h storage.Handle) (bool, error) {
	if f.failDelete != nil {
		return false, f.failDelete
	}
	return f.BlobStore.Delete(ctx, h)
}
