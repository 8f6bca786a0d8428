package database

import (
	"path/filepath"
	"testing"

	"gocast_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"), "test")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, model := range []interface{}{&models.Admin{}, &models.Talent{}, &models.Photo{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasColumn(&models.Talent{}, "cv_object_id"))
	assert.True(t, db.Migrator().HasColumn(&models.Photo{}, "blob_path"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", "test")
	assert.Error(t, err)
}
