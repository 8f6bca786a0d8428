package models

import (
	"errors"

	"gocast_backend/internal/storage"
)

var ErrCorruptLocator = errors.New("asset record has no resolvable storage locator")

// AssetLocator points at a blob. Exactly one field is set on a healthy record.
type AssetLocator struct {
	Inline   *string `json:"-"`
	Path     *string `gorm:"size:512" json:"path,omitempty"`
	ObjectID *string `gorm:"size:255" json:"objectId,omitempty"`
}

func LocatorFor(h storage.Handle) AssetLocator {
	ref := h.Ref
	switch h.Backend {
	case storage.BackendInline:
		return AssetLocator{Inline: &ref}
	case storage.BackendFilesystem:
		return AssetLocator{Path: &ref}
	case storage.BackendObject:
		return AssetLocator{ObjectID: &ref}
	}
	return AssetLocator{}
}

// Equal reports whether both locators point at the same blob.
func (l AssetLocator) Equal(o AssetLocator) bool {
	return sameRef(l.Inline, o.Inline) && sameRef(l.Path, o.Path) && sameRef(l.ObjectID, o.ObjectID)
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (l AssetLocator) IsEmpty() bool {
	return l.Inline == nil && l.Path == nil && l.ObjectID == nil
}

// Handle resolves the locator, failing with ErrCorruptLocator unless exactly one field is set.
func (l AssetLocator) Handle() (storage.Handle, error) {
	var (
		h   storage.Handle
		set int
	)
	if l.Inline != nil && *l.Inline != "" {
		h, set = storage.Handle{Backend: storage.BackendInline, Ref: *l.Inline}, set+1
	}
	if l.Path != nil && *l.Path != "" {
		h, set = storage.Handle{Backend: storage.BackendFilesystem, Ref: *l.Path}, set+1
	}
	if l.ObjectID != nil && *l.ObjectID != "" {
		h, set = storage.Handle{Backend: storage.BackendObject, Ref: *l.ObjectID}, set+1
	}
	if set != 1 {
		return storage.Handle{}, ErrCorruptLocator
	}
	return h, nil
}

// SingletonAsset is a one-per-talent asset (CV or video) stored on the talent row.
type SingletonAsset struct {
	AssetLocator
	MimeType     string `gorm:"size:128" json:"mimeType,omitempty"`
	OriginalName string `gorm:"size:255" json:"originalName,omitempty"`
}
