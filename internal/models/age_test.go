package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocast_backend/internal/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeBracketFor(t *testing.T) {
	now := date(2024, time.June, 15)

	tests := []struct {
		name  string
		birth time.Time
		want  AgeBracket
	}{
		{"eleven", date(2013, time.January, 1), AgeBracketEnfant},
		{"twelve tomorrow", date(2012, time.June, 16), AgeBracketEnfant},
		{"twelve today", date(2012, time.June, 15), AgeBracketAdo},
		{"seventeen", date(2006, time.December, 31), AgeBracketAdo},
		{"eighteen", date(2006, time.June, 1), AgeBracketAdulte},
		{"sixty four", date(1959, time.July, 1), AgeBracketAdulte},
		{"sixty five", date(1959, time.June, 15), AgeBracketSenior},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeBracketFor(tt.birth, now))
		})
	}
}

func TestAssetLocator(t *testing.T) {
	h := storage.Handle{Backend: storage.BackendFilesystem, Ref: "cvs/cv-1.pdf"}
	loc := LocatorFor(h)
	require.NotNil(t, loc.Path)
	assert.Nil(t, loc.Inline)
	assert.Nil(t, loc.ObjectID)

	got, err := loc.Handle()
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = AssetLocator{}.Handle()
	assert.ErrorIs(t, err, ErrCorruptLocator)

	a, b := "x", "y"
	_, err = AssetLocator{Path: &a, ObjectID: &b}.Handle()
	assert.ErrorIs(t, err, ErrCorruptLocator)
}
