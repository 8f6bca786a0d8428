package repositories

import (
	"errors"

	"gocast_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPhotoNotFound = errors.New("photo not found")

type PhotoRepository interface {
	Create(db *gorm.DB, photo *models.Photo) error
	FindByID(db *gorm.DB, id string) (*models.Photo, error)
	FindByTalent(db *gorm.DB, talentID string) ([]models.Photo, error)
	Delete(db *gorm.DB, id string) error
	DeleteByTalent(db *gorm.DB, talentID string) (int64, error)
}

type PhotoRepositoryImpl struct{}

func NewPhotoRepository() PhotoRepository {
	return &PhotoRepositoryImpl{}
}

func (r *PhotoRepositoryImpl) Create(db *gorm.DB, photo *models.Photo) error {
	return db.Create(photo).Error
}

// FindByID loads the full record, including an inline payload.
func (r *PhotoRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Photo, error) {
	var photo models.Photo
	if err := db.First(&photo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepositoryImpl) FindByTalent(db *gorm.DB, talentID string) ([]models.Photo, error) {
	var photos []models.Photo
	err := db.Where("talent_id = ?", talentID).Order("created_at ASC").Find(&photos).Error
	return photos, err
}

func (r *PhotoRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Photo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (r *PhotoRepositoryImpl) DeleteByTalent(db *gorm.DB, talentID string) (int64, error) {
	result := db.Where("talent_id = ?", talentID).Delete(&models.Photo{})
	return result.RowsAffected, result.Error
}
