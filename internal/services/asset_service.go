package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocast_backend/internal/logger"
	"gocast_backend/internal/models"
	"gocast_backend/internal/repositories"
	"gocast_backend/internal/services/dto"
	"gocast_backend/internal/storage"
	"gocast_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BlobStore is the part of storage the coordinator needs. *storage.Registry and
// every storage.BlobStore satisfy it.
type BlobStore interface {
	Store(ctx context.Context, r io.Reader, size int64, contentType string, meta storage.Metadata) (storage.Handle, error)
	Open(ctx context.Context, h storage.Handle) (*storage.Object, error)
	Delete(ctx context.Context, h storage.Handle) (bool, error)
}

// maxSwapAttempts bounds retries when concurrent replacements race on the same talent.
const maxSwapAttempts = 3

// AssetService keeps blobs and the records pointing at them consistent.
type AssetService interface {
	AttachPhoto(ctx context.Context, db *gorm.DB, talentID string, expression models.Expression, upload *dto.AssetUpload) (*models.Photo, error)
	ReplaceSingletonAsset(ctx context.Context, db *gorm.DB, talentID string, kind storage.Kind, upload *dto.AssetUpload) (*dto.SingletonAssetResponse, error)
	DeletePhoto(ctx context.Context, db *gorm.DB, photoID string) error
	DeleteAllAssetsForProfile(ctx context.Context, db *gorm.DB, talentID string) error

	OpenPhoto(ctx context.Context, db *gorm.DB, photoID string) (*dto.FileStream, error)
	OpenTalentAsset(ctx context.Context, db *gorm.DB, talentID string, kind storage.Kind) (*dto.FileStream, error)
	OpenFile(ctx context.Context, db *gorm.DB, fileID string) (*dto.FileStream, error)
}

type AssetServiceImpl struct {
	blobs      BlobStore
	talentRepo repositories.TalentRepository
	photoRepo  repositories.PhotoRepository
}

func NewAssetService(blobs BlobStore, talentRepo repositories.TalentRepository, photoRepo repositories.PhotoRepository) AssetService {
	return &AssetServiceImpl{
		blobs:      blobs,
		talentRepo: talentRepo,
		photoRepo:  photoRepo,
	}
}

func (s *AssetServiceImpl) AttachPhoto(ctx context.Context, db *gorm.DB, talentID string, expression models.Expression, upload *dto.AssetUpload) (*models.Photo, error) {
	if err := ValidateUpload(storage.KindPhoto, upload.Filename, upload.ContentType); err != nil {
		return nil, err
	}
	if !expression.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"expression": "Must be one of: Joie, Tristesse, Colère, Surprise, Neutre"})
	}

	if _, err := s.talentRepo.FindByID(db, talentID); err != nil {
		return nil, handleTalentError(err)
	}

	handle, err := s.blobs.Store(ctx, upload.Body, upload.Size, upload.ContentType, storage.Metadata{
		OwnerID:  talentID,
		Kind:     storage.KindPhoto,
		Filename: upload.Filename,
	})
	if err != nil {
		return nil, mapStorageError(err)
	}

	photo := &models.Photo{
		TalentID:     talentID,
		Expression:   expression,
		MimeType:     upload.ContentType,
		Size:         upload.Size,
		OriginalName: upload.Filename,
		Blob:         models.LocatorFor(handle),
		Meta:         datatypes.JSONMap{"backend": string(handle.Backend)},
	}
	if err := s.photoRepo.Create(db, photo); err != nil {
		s.rollbackBlob(ctx, handle, "photo record could not be created", err)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "photo attached", "talent_id", talentID, "photo_id", photo.ID, "backend", handle.Backend)
	return photo, nil
}

// ReplaceSingletonAsset stores the new blob, moves the talent's pointer to it with a
// compare-and-swap, then deletes the blob the pointer used to reference.
// Two concurrent replacements both succeed in order; each deletes its predecessor.
func (s *AssetServiceImpl) ReplaceSingletonAsset(ctx context.Context, db *gorm.DB, talentID string, kind storage.Kind, upload *dto.AssetUpload) (*dto.SingletonAssetResponse, error) {
	if kind != storage.KindCV && kind != storage.KindVideo {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s is not a singleton asset", kind))
	}
	if err := ValidateUpload(kind, upload.Filename, upload.ContentType); err != nil {
		return nil, err
	}

	talent, err := s.talentRepo.FindByID(db, talentID)
	if err != nil {
		return nil, handleTalentError(err)
	}

	handle, err := s.blobs.Store(ctx, upload.Body, upload.Size, upload.ContentType, storage.Metadata{
		OwnerID:  talentID,
		Kind:     kind,
		Filename: upload.Filename,
	})
	if err != nil {
		return nil, mapStorageError(err)
	}

	next := models.SingletonAsset{
		AssetLocator: models.LocatorFor(handle),
		MimeType:     upload.ContentType,
		OriginalName: upload.Filename,
	}

	prev := talent.Asset(kind).AssetLocator
	swapped := false
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		swapped, err = s.talentRepo.SwapAsset(db, talentID, kind, prev, next)
		if err != nil {
			s.rollbackBlob(ctx, handle, fmt.Sprintf("%s pointer update failed", kind), err)
			return nil, apperrors.InternalError(err)
		}
		if swapped {
			break
		}

		current, err := s.talentRepo.FindByID(db, talentID)
		if err != nil {
			s.rollbackBlob(ctx, handle, fmt.Sprintf("talent vanished before %s pointer update", kind), err)
			return nil, handleTalentError(err)
		}
		logger.CtxWarn(ctx, "concurrent asset replacement detected, retrying",
			"talent_id", talentID, "kind", kind, "attempt", attempt+1)
		prev = current.Asset(kind).AssetLocator
	}
	if !swapped {
		err := errors.New("pointer kept changing under concurrent replacements")
		s.rollbackBlob(ctx, handle, fmt.Sprintf("%s pointer update lost every race", kind), err)
		return nil, apperrors.ErrConflict(err, "asset", "The asset was replaced concurrently, please retry")
	}

	s.deleteReplaced(ctx, talentID, kind, prev)

	logger.CtxInfo(ctx, "singleton asset replaced", "talent_id", talentID, "kind", kind, "backend", handle.Backend)
	return &dto.SingletonAssetResponse{
		TalentID:     talentID,
		Kind:         string(kind),
		MimeType:     next.MimeType,
		OriginalName: next.OriginalName,
		Size:         upload.Size,
		URL:          fmt.Sprintf("/files/talent/%s/%s", talentID, kind),
	}, nil
}

// DeletePhoto removes the record first, then the blob. A blob that cannot be
// removed is logged; the photo is already gone for callers.
func (s *AssetServiceImpl) DeletePhoto(ctx context.Context, db *gorm.DB, photoID string) error {
	photo, err := s.photoRepo.FindByID(db, photoID)
	if err != nil {
		return handlePhotoError(err)
	}

	if err := s.photoRepo.Delete(db, photoID); err != nil {
		return handlePhotoError(err)
	}

	handle, err := photo.Blob.Handle()
	if err != nil {
		logger.CtxWarn(ctx, "deleted photo had no resolvable locator", "photo_id", photoID)
		return nil
	}
	s.deleteBlob(ctx, handle)
	return nil
}

// DeleteAllAssetsForProfile deletes every blob the talent owns, then its photo
// records and the talent itself. Blob failures are logged and do not block the
// metadata removal.
func (s *AssetServiceImpl) DeleteAllAssetsForProfile(ctx context.Context, db *gorm.DB, talentID string) error {
	talent, err := s.talentRepo.FindByID(db, talentID)
	if err != nil {
		return handleTalentError(err)
	}
	photos, err := s.photoRepo.FindByTalent(db, talentID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	listed := make(map[string]bool, len(photos))
	locators := make([]models.AssetLocator, 0, len(photos)+2)
	for _, p := range photos {
		listed[p.ID] = true
		locators = append(locators, p.Blob)
	}
	locators = append(locators, talent.CV.AssetLocator, talent.Video.AssetLocator)
	s.deleteLocators(ctx, talentID, locators)

	// Blobs attached or swapped in since the listing above are collected under
	// the row lock and deleted once the records are gone.
	var late []models.AssetLocator
	err = db.Transaction(func(tx *gorm.DB) error {
		current, err := s.talentRepo.LockByID(tx, talentID)
		if err != nil {
			return err
		}
		remaining, err := s.photoRepo.FindByTalent(tx, talentID)
		if err != nil {
			return err
		}
		for _, p := range remaining {
			if !listed[p.ID] {
				late = append(late, p.Blob)
			}
		}
		if !current.CV.AssetLocator.Equal(talent.CV.AssetLocator) {
			late = append(late, current.CV.AssetLocator)
		}
		if !current.Video.AssetLocator.Equal(talent.Video.AssetLocator) {
			late = append(late, current.Video.AssetLocator)
		}

		if _, err := s.photoRepo.DeleteByTalent(tx, talentID); err != nil {
			return err
		}
		return s.talentRepo.Delete(tx, talentID)
	})
	if err != nil {
		return handleTalentError(err)
	}

	if len(late) > 0 {
		logger.CtxWarn(ctx, "assets changed during talent deletion", "talent_id", talentID, "late_assets", len(late))
		s.deleteLocators(ctx, talentID, late)
	}

	logger.CtxInfo(ctx, "talent and assets deleted", "talent_id", talentID, "photos", len(photos))
	return nil
}

func (s *AssetServiceImpl) deleteLocators(ctx context.Context, talentID string, locators []models.AssetLocator) {
	for _, loc := range locators {
		if loc.IsEmpty() {
			continue
		}
		handle, err := loc.Handle()
		if err != nil {
			logger.CtxWarn(ctx, "skipping corrupt asset locator", "talent_id", talentID)
			continue
		}
		s.deleteBlob(ctx, handle)
	}
}

func (s *AssetServiceImpl) OpenPhoto(ctx context.Context, db *gorm.DB, photoID string) (*dto.FileStream, error) {
	photo, err := s.photoRepo.FindByID(db, photoID)
	if err != nil {
		return nil, handlePhotoError(err)
	}
	stream, err := s.open(ctx, photo.Blob, photo.MimeType, photo.OriginalName)
	if err != nil {
		return nil, err
	}
	stream.ETag = photo.ID
	stream.Immutable = true
	return stream, nil
}

func (s *AssetServiceImpl) OpenTalentAsset(ctx context.Context, db *gorm.DB, talentID string, kind storage.Kind) (*dto.FileStream, error) {
	talent, err := s.talentRepo.FindByID(db, talentID)
	if err != nil {
		return nil, handleTalentError(err)
	}
	asset := talent.Asset(kind)
	if asset == nil {
		return nil, apperrors.ErrAssetNotFound(fmt.Errorf("talent has no %s slot", kind))
	}
	return s.open(ctx, asset.AssetLocator, asset.MimeType, asset.OriginalName)
}

// OpenFile serves a file addressed by photo id or by object store id.
func (s *AssetServiceImpl) OpenFile(ctx context.Context, db *gorm.DB, fileID string) (*dto.FileStream, error) {
	var photo models.Photo
	err := db.Where("id = ? OR blob_object_id = ?", fileID, fileID).First(&photo).Error
	if err == nil {
		stream, err := s.open(ctx, photo.Blob, photo.MimeType, photo.OriginalName)
		if err != nil {
			return nil, err
		}
		stream.ETag, stream.Immutable = fileID, true
		return stream, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InternalError(err)
	}

	var talent models.Talent
	err = db.Where("cv_object_id = ? OR video_object_id = ?", fileID, fileID).First(&talent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	asset := &talent.Video
	if talent.CV.ObjectID != nil && *talent.CV.ObjectID == fileID {
		asset = &talent.CV
	}
	stream, err := s.open(ctx, asset.AssetLocator, asset.MimeType, asset.OriginalName)
	if err != nil {
		return nil, err
	}
	stream.ETag, stream.Immutable = fileID, true
	return stream, nil
}

func (s *AssetServiceImpl) open(ctx context.Context, loc models.AssetLocator, mimeType, filename string) (*dto.FileStream, error) {
	handle, err := loc.Handle()
	if err != nil {
		return nil, apperrors.ErrAssetNotFound(err)
	}

	obj, err := s.blobs.Open(ctx, handle)
	if err != nil {
		return nil, mapStorageError(err)
	}

	contentType := mimeType
	if contentType == "" {
		contentType = obj.Info.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if filename == "" {
		filename = obj.Info.Name
	}

	return &dto.FileStream{
		Body:        obj.Body,
		ContentType: contentType,
		Size:        obj.Info.Size,
		Filename:    filename,
		ModTime:     obj.Info.ModTime,
	}, nil
}

// rollbackBlob undoes a store whose record write failed. If that fails too the
// blob is orphaned and reported for manual cleanup.
func (s *AssetServiceImpl) rollbackBlob(ctx context.Context, handle storage.Handle, reason string, cause error) {
	// The request may already be cancelled; the cleanup must still run.
	cleanupCtx := context.WithoutCancel(ctx)
	if _, err := s.blobs.Delete(cleanupCtx, handle); err != nil {
		logger.Orphan(ctx, string(handle.Backend), handle.String(), reason, errors.Join(cause, err))
		return
	}
	logger.CtxWarn(ctx, "rolled back stored blob", "handle", handle, "reason", reason, "error", cause.Error())
}

func (s *AssetServiceImpl) deleteReplaced(ctx context.Context, talentID string, kind storage.Kind, prev models.AssetLocator) {
	if prev.IsEmpty() {
		return
	}
	handle, err := prev.Handle()
	if err != nil {
		logger.CtxWarn(ctx, "replaced asset had a corrupt locator", "talent_id", talentID, "kind", kind)
		return
	}
	s.deleteBlob(ctx, handle)
}

// deleteBlob is best effort: an absent blob counts as deleted.
func (s *AssetServiceImpl) deleteBlob(ctx context.Context, handle storage.Handle) {
	removed, err := s.blobs.Delete(context.WithoutCancel(ctx), handle)
	if err != nil {
		logger.CtxWithError(ctx, "failed to delete blob, left for reconciliation", err,
			"event", "stranded_blob", "backend", handle.Backend, "handle", handle)
		return
	}
	if !removed {
		logger.CtxDebug(ctx, "blob already gone", "handle", handle)
	}
	logger.StorageLog(string(handle.Backend), "delete", handle, nil)
}

func mapStorageError(err error) error {
	var sizeErr *storage.SizeLimitError
	switch {
	case errors.As(err, &sizeErr):
		return apperrors.ErrFileTooLarge(err, sizeErr.Limit)
	case errors.Is(err, storage.ErrUnavailable):
		return apperrors.ErrStorageUnavailable(err)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidHandle):
		return apperrors.ErrAssetNotFound(err)
	default:
		return apperrors.InternalError(err)
	}
}

func handleTalentError(err error) error {
	if errors.Is(err, repositories.ErrTalentNotFound) {
		return apperrors.ErrTalentNotFound(err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.InternalError(err)
}

func handlePhotoError(err error) error {
	if errors.Is(err, repositories.ErrPhotoNotFound) {
		return apperrors.ErrPhotoNotFound(err)
	}
	return apperrors.InternalError(err)
}
