package repositories

import (
	"errors"
	"strings"
	"time"

	"gocast_backend/internal/models"
	"gocast_backend/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTalentNotFound = errors.New("talent not found")

type TalentRepository interface {
	Create(db *gorm.DB, talent *models.Talent) error
	FindByID(db *gorm.DB, id string) (*models.Talent, error)
	LockByID(tx *gorm.DB, id string) (*models.Talent, error)
	FindWithPhotos(db *gorm.DB, id string) (*models.Talent, error)
	List(db *gorm.DB, filter TalentFilter) ([]models.Talent, error)
	Update(db *gorm.DB, id string, fields map[string]interface{}) error
	SwapAsset(db *gorm.DB, id string, kind storage.Kind, prev models.AssetLocator, next models.SingletonAsset) (bool, error)
	Delete(db *gorm.DB, id string) error
}

type TalentFilter struct {
	Specialite string
	Genre      string
	TrancheAge string
	TypeActing string
	Statut     string
	Search     string
	SortBy     string
	Order      string
}

// sortColumns maps accepted sortBy values to columns.
var sortColumns = map[string]string{
	"nom":            "nom",
	"prenom":         "prenom",
	"date_naissance": "date_naissance",
	"createdAt":      "created_at",
	"specialite":     "specialite",
}

type TalentRepositoryImpl struct{}

func NewTalentRepository() TalentRepository {
	return &TalentRepositoryImpl{}
}

func (r *TalentRepositoryImpl) Create(db *gorm.DB, talent *models.Talent) error {
	return db.Create(talent).Error
}

func (r *TalentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Talent, error) {
	var talent models.Talent
	if err := db.First(&talent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTalentNotFound
		}
		return nil, err
	}
	return &talent, nil
}

// LockByID reads the talent inside tx and holds its row until tx ends, which
// blocks photo inserts referencing it. SQLite has no row locks; its single
// writer gives the same ordering.
func (r *TalentRepositoryImpl) LockByID(tx *gorm.DB, id string) (*models.Talent, error) {
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.FindByID(tx, id)
}

func (r *TalentRepositoryImpl) FindWithPhotos(db *gorm.DB, id string) (*models.Talent, error) {
	var talent models.Talent
	err := db.Omit("cv_inline", "video_inline").
		Preload("Photos", photoMetadataOnly).
		First(&talent, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTalentNotFound
		}
		return nil, err
	}
	return &talent, nil
}

func (r *TalentRepositoryImpl) List(db *gorm.DB, filter TalentFilter) ([]models.Talent, error) {
	query := db.Model(&models.Talent{}).Omit("cv_inline", "video_inline")

	for column, value := range map[string]string{
		"specialite":  filter.Specialite,
		"genre":       filter.Genre,
		"tranche_age": filter.TrancheAge,
		"type_acting": filter.TypeActing,
		"statut":      filter.Statut,
	} {
		if value != "" {
			query = query.Where(column+" = ?", value)
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(nom) LIKE ? OR LOWER(prenom) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		direction = "ASC"
	}

	var talents []models.Talent
	err := query.Order(column + " " + direction).
		Preload("Photos", photoMetadataOnly).
		Find(&talents).Error
	return talents, err
}

func (r *TalentRepositoryImpl) Update(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Talent{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTalentNotFound
	}
	return nil
}

// SwapAsset replaces the singleton pointer only if it still equals prev.
// It reports false when another writer got there first or the talent is gone.
func (r *TalentRepositoryImpl) SwapAsset(db *gorm.DB, id string, kind storage.Kind, prev models.AssetLocator, next models.SingletonAsset) (bool, error) {
	prefix := string(kind) + "_"

	query := whereLocator(db.Model(&models.Talent{}).Where("id = ?", id), prefix, prev)
	result := query.Updates(map[string]interface{}{
		prefix + "inline":        next.Inline,
		prefix + "path":          next.Path,
		prefix + "object_id":     next.ObjectID,
		prefix + "mime_type":     next.MimeType,
		prefix + "original_name": next.OriginalName,
		"updated_at":             time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *TalentRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Talent{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTalentNotFound
	}
	return nil
}

func whereLocator(query *gorm.DB, prefix string, loc models.AssetLocator) *gorm.DB {
	for _, col := range []struct {
		name  string
		value *string
	}{
		{"inline", loc.Inline},
		{"path", loc.Path},
		{"object_id", loc.ObjectID},
	} {
		if col.value == nil {
			query = query.Where(prefix + col.name + " IS NULL")
		} else {
			query = query.Where(prefix+col.name+" = ?", *col.value)
		}
	}
	return query
}

func photoMetadataOnly(db *gorm.DB) *gorm.DB {
	return db.Omit("blob_inline").Order("created_at ASC")
}
