package repositories

import (
	"errors"
	"strings"

	"gocast_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminAlreadyExists = errors.New("admin already exists")
)

type AdminRepository interface {
	Create(db *gorm.DB, admin *models.Admin) error
	FindByID(db *gorm.DB, id string) (*models.Admin, error)
	FindByUsername(db *gorm.DB, username string) (*models.Admin, error)
}

type AdminRepositoryImpl struct{}

func NewAdminRepository() AdminRepository {
	return &AdminRepositoryImpl{}
}

func (r *AdminRepositoryImpl) Create(db *gorm.DB, admin *models.Admin) error {
	var count int64
	if err := db.Model(&models.Admin{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAdminAlreadyExists
	}

	if err := db.Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return ErrAdminAlreadyExists
		}
		return err
	}
	return nil
}

func (r *AdminRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := db.First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepositoryImpl) FindByUsername(db *gorm.DB, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}
