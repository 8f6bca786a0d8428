package models

import (
	"time"

	"gocast_backend/internal/storage"
)

type Talent struct {
	BaseModel
	Nom           string       `gorm:"size:128;not null;index" json:"nom"`
	Prenom        string       `gorm:"size:128;not null" json:"prenom"`
	Email         string       `gorm:"size:255;index" json:"email,omitempty"`
	Telephone     string       `gorm:"size:64" json:"telephone,omitempty"`
	DateNaissance time.Time    `gorm:"not null" json:"date_naissance"`
	Genre         Genre        `gorm:"size:16;index" json:"genre,omitempty"`
	Specialite    Specialite   `gorm:"size:32;not null;index" json:"specialite"`
	TypeActing    string       `gorm:"size:128;index" json:"type_acting,omitempty"`
	TrancheAge    AgeBracket   `gorm:"size:16;index" json:"tranche_age"`
	CVTexte       string       `json:"cv_texte,omitempty"`
	Statut        TalentStatus `gorm:"size:16;default:Actif;index" json:"statut"`
	NoteInterne   string       `json:"note_interne,omitempty"`
	Commentaire   string       `json:"commentaire,omitempty"`

	CV    SingletonAsset `gorm:"embedded;embeddedPrefix:cv_" json:"cv"`
	Video SingletonAsset `gorm:"embedded;embeddedPrefix:video_" json:"video"`

	Photos []Photo `gorm:"foreignKey:TalentID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

// Asset returns the singleton slot for kind, or nil for photos.
func (t *Talent) Asset(kind storage.Kind) *SingletonAsset {
	switch kind {
	case storage.KindCV:
		return &t.CV
	case storage.KindVideo:
		return &t.Video
	}
	return nil
}
