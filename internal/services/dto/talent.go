package dto

import (
	"time"

	"gocast_backend/internal/models"
)

type CreateTalentRequest struct {
	Nom           string `json:"nom" validate:"required,notblank,max=128"`
	Prenom        string `json:"prenom" validate:"required,notblank,max=128"`
	Email         string `json:"email" validate:"omitempty,email"`
	Telephone     string `json:"telephone" validate:"max=64"`
	DateNaissance string `json:"date_naissance" validate:"required,is-date"`
	Genre         string `json:"genre" validate:"is-genre"`
	Specialite    string `json:"specialite" validate:"required,is-specialite"`
	TypeActing    string `json:"type_acting" validate:"max=128"`
	CVTexte       string `json:"cv_texte"`
	Statut        string `json:"statut" validate:"is-statut"`
	NoteInterne   string `json:"note_interne"`
	Commentaire   string `json:"commentaire"`
}

// UpdateTalentRequest is a partial update: nil fields are left untouched.
// tranche_age is not accepted; it follows date_naissance.
type UpdateTalentRequest struct {
	Nom           *string `json:"nom" validate:"omitempty,notblank,max=128"`
	Prenom        *string `json:"prenom" validate:"omitempty,notblank,max=128"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Telephone     *string `json:"telephone" validate:"omitempty,max=64"`
	DateNaissance *string `json:"date_naissance" validate:"omitempty,is-date"`
	Genre         *string `json:"genre" validate:"omitempty,is-genre"`
	Specialite    *string `json:"specialite" validate:"omitempty,is-specialite"`
	TypeActing    *string `json:"type_acting" validate:"omitempty,max=128"`
	CVTexte       *string `json:"cv_texte"`
	Statut        *string `json:"statut" validate:"omitempty,is-statut"`
	NoteInterne   *string `json:"note_interne"`
	Commentaire   *string `json:"commentaire"`
}

type TalentListQuery struct {
	Specialite string `form:"specialite"`
	Genre      string `form:"genre"`
	TrancheAge string `form:"tranche_age"`
	TypeActing string `form:"type_acting"`
	Statut     string `form:"statut"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy"`
	Order      string `form:"order" validate:"omitempty,oneof=asc desc"`
}

type AssetInfo struct {
	URL          string `json:"url"`
	MimeType     string `json:"mimeType,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
}

type PhotoResponse struct {
	ID           string            `json:"id"`
	TalentID     string            `json:"talent_id"`
	Expression   models.Expression `json:"expression,omitempty"`
	MimeType     string            `json:"mimeType"`
	Size         int64             `json:"size"`
	OriginalName string            `json:"originalName,omitempty"`
	URL          string            `json:"url"`
	Storage      map[string]any    `json:"storage,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type TalentResponse struct {
	ID            string              `json:"id"`
	Nom           string              `json:"nom"`
	Prenom        string              `json:"prenom"`
	Email         string              `json:"email,omitempty"`
	Telephone     string              `json:"telephone,omitempty"`
	DateNaissance string              `json:"date_naissance"`
	Genre         models.Genre        `json:"genre,omitempty"`
	Specialite    models.Specialite   `json:"specialite"`
	TypeActing    string              `json:"type_acting,omitempty"`
	TrancheAge    models.AgeBracket   `json:"tranche_age"`
	CVTexte       string              `json:"cv_texte,omitempty"`
	Statut        models.TalentStatus `json:"statut"`
	NoteInterne   string              `json:"note_interne,omitempty"`
	Commentaire   string              `json:"commentaire,omitempty"`
	CV            *AssetInfo          `json:"cv,omitempty"`
	Video         *AssetInfo          `json:"video,omitempty"`
	Photos        []PhotoResponse     `json:"photos"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func NewPhotoResponse(p *models.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID,
		TalentID:     p.TalentID,
		Expression:   p.Expression,
		MimeType:     p.MimeType,
		Size:         p.Size,
		OriginalName: p.OriginalName,
		URL:          "/files/photo/" + p.ID,
		Storage:      p.Meta,
		CreatedAt:    p.CreatedAt,
	}
}

func NewTalentResponse(t *models.Talent) TalentResponse {
	resp := TalentResponse{
		ID:            t.ID,
		Nom:           t.Nom,
		Prenom:        t.Prenom,
		Email:         t.Email,
		Telephone:     t.Telephone,
		DateNaissance: t.DateNaissance.Format("2006-01-02"),
		Genre:         t.Genre,
		Specialite:    t.Specialite,
		TypeActing:    t.TypeActing,
		TrancheAge:    t.TrancheAge,
		CVTexte:       t.CVTexte,
		Statut:        t.Statut,
		NoteInterne:   t.NoteInterne,
		Commentaire:   t.Commentaire,
		Photos:        make([]PhotoResponse, 0, len(t.Photos)),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if !t.CV.IsEmpty() || t.CV.MimeType != "" {
		resp.CV = &AssetInfo{URL: "/files/talent/" + t.ID + "/cv", MimeType: t.CV.MimeType, OriginalName: t.CV.OriginalName}
	}
	if !t.Video.IsEmpty() || t.Video.MimeType != "" {
		resp.Video = &AssetInfo{URL: "/files/talent/" + t.ID + "/video", MimeType: t.Video.MimeType, OriginalName: t.Video.OriginalName}
	}
	for i := range t.Photos {
		resp.Photos = append(resp.Photos, NewPhotoResponse(&t.Photos[i]))
	}
	return resp
}
