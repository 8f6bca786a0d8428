package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gocast_backend/internal/storage"
	"gocast_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
)

// slotRule lists what a slot accepts. Both the media type and the extension must match.
type slotRule struct {
	label      string
	mimeTypes  map[string]bool
	extensions map[string]bool
}

var slotRules = map[storage.Kind]slotRule{
	storage.KindPhoto: {
		label:      "image (jpeg, jpg, png, gif, webp)",
		mimeTypes:  set("image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"),
		extensions: set(".jpeg", ".jpg", ".png", ".gif", ".webp"),
	},
	storage.KindVideo: {
		label:      "video (mp4, webm, ogg, mov)",
		mimeTypes:  set("video/mp4", "video/webm", "video/ogg", "video/quicktime"),
		extensions: set(".mp4", ".webm", ".ogg", ".mov"),
	},
	storage.KindCV: {
		label:      "PDF",
		mimeTypes:  set("application/pdf"),
		extensions: set(".pdf"),
	},
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// ValidateUpload checks the declared media type and the filename extension against the slot.
func ValidateUpload(kind storage.Kind, filename, contentType string) error {
	rule, ok := slotRules[kind]
	if !ok {
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown asset kind: %s", kind))
	}

	mediaType := normalizeMediaType(contentType)
	ext := strings.ToLower(filepath.Ext(filename))

	if !rule.mimeTypes[mediaType] || !rule.extensions[ext] {
		return apperrors.ErrInvalidFileType(fmt.Sprintf(
			"Only %s files are allowed for %s (got type %q, extension %q)",
			rule.label, kind, mediaType, ext,
		))
	}
	return nil
}

// ResolveContentType sniffs the payload when the client sent no useful type,
// then rewinds r.
func ResolveContentType(declared string, r io.ReadSeeker) (string, error) {
	if mediaType := normalizeMediaType(declared); mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType, nil
	}

	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return normalizeMediaType(mt.String()), nil
}

func normalizeMediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
