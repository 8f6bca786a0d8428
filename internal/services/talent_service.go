package services

import (
	"context"
	"strings"
	"time"

	"gocast_backend/internal/logger"
	"gocast_backend/internal/models"
	"gocast_backend/internal/repositories"
	"gocast_backend/internal/services/dto"
	"gocast_backend/internal/validator"
	"gocast_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type TalentService interface {
	Create(ctx context.Context, db *gorm.DB, req *dto.CreateTalentRequest) (*dto.TalentResponse, error)
	Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateTalentRequest) (*dto.TalentResponse, error)
	Get(ctx context.Context, db *gorm.DB, id string) (*dto.TalentResponse, error)
	List(ctx context.Context, db *gorm.DB, query *dto.TalentListQuery) ([]dto.TalentResponse, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error
}

type TalentServiceImpl struct {
	talentRepo repositories.TalentRepository
	assets     AssetService
	now        func() time.Time
}

func NewTalentService(talentRepo repositories.TalentRepository, assets AssetService) TalentService {
	return &TalentServiceImpl{
		talentRepo: talentRepo,
		assets:     assets,
		now:        time.Now,
	}
}

func (s *TalentServiceImpl) Create(ctx context.Context, db *gorm.DB, req *dto.CreateTalentRequest) (*dto.TalentResponse, error) {
	birth, err := parseBirthDate(req.DateNaissance)
	if err != nil {
		return nil, err
	}

	statut := models.TalentStatus(req.Statut)
	if statut == "" {
		statut = models.TalentStatusActif
	}

	nom, prenom := strings.TrimSpace(req.Nom), strings.TrimSpace(req.Prenom)
	if err := requireNames(&nom, &prenom); err != nil {
		return nil, err
	}

	talent := &models.Talent{
		Nom:           nom,
		Prenom:        prenom,
		Email:         normalizeEmail(req.Email),
		Telephone:     req.Telephone,
		DateNaissance: birth,
		Genre:         models.Genre(req.Genre),
		Specialite:    models.Specialite(req.Specialite),
		TypeActing:    req.TypeActing,
		TrancheAge:    models.AgeBracketFor(birth, s.now()),
		CVTexte:       req.CVTexte,
		Statut:        statut,
		NoteInterne:   req.NoteInterne,
		Commentaire:   req.Commentaire,
	}

	if err := s.talentRepo.Create(db, talent); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "talent created", "talent_id", talent.ID, "tranche_age", talent.TrancheAge)
	resp := dto.NewTalentResponse(talent)
	return &resp, nil
}

// Update applies the non-nil fields. tranche_age follows date_naissance.
func (s *TalentServiceImpl) Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateTalentRequest) (*dto.TalentResponse, error) {
	if _, err := s.talentRepo.FindByID(db, id); err != nil {
		return nil, handleTalentError(err)
	}

	if err := requireNames(req.Nom, req.Prenom); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}
	setString("nom", req.Nom)
	setString("prenom", req.Prenom)
	setString("telephone", req.Telephone)
	setString("genre", req.Genre)
	setString("specialite", req.Specialite)
	setString("type_acting", req.TypeActing)
	setString("statut", req.Statut)
	if req.Email != nil {
		fields["email"] = normalizeEmail(*req.Email)
	}
	if req.CVTexte != nil {
		fields["cv_texte"] = *req.CVTexte
	}
	if req.NoteInterne != nil {
		fields["note_interne"] = *req.NoteInterne
	}
	if req.Commentaire != nil {
		fields["commentaire"] = *req.Commentaire
	}
	if req.DateNaissance != nil {
		birth, err := parseBirthDate(*req.DateNaissance)
		if err != nil {
			return nil, err
		}
		fields["date_naissance"] = birth
		fields["tranche_age"] = models.AgeBracketFor(birth, s.now())
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.now()
		if err := s.talentRepo.Update(db, id, fields); err != nil {
			return nil, handleTalentError(err)
		}
	}

	return s.Get(ctx, db, id)
}

func (s *TalentServiceImpl) Get(ctx context.Context, db *gorm.DB, id string) (*dto.TalentResponse, error) {
	talent, err := s.talentRepo.FindWithPhotos(db, id)
	if err != nil {
		return nil, handleTalentError(err)
	}
	resp := dto.NewTalentResponse(talent)
	return &resp, nil
}

func (s *TalentServiceImpl) List(ctx context.Context, db *gorm.DB, query *dto.TalentListQuery) ([]dto.TalentResponse, error) {
	talents, err := s.talentRepo.List(db, repositories.TalentFilter{
		Specialite: query.Specialite,
		Genre:      query.Genre,
		TrancheAge: query.TrancheAge,
		TypeActing: query.TypeActing,
		Statut:     query.Statut,
		Search:     strings.TrimSpace(query.Search),
		SortBy:     query.SortBy,
		Order:      query.Order,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.TalentResponse, 0, len(talents))
	for i := range talents {
		result = append(result, dto.NewTalentResponse(&talents[i]))
	}
	return result, nil
}

func (s *TalentServiceImpl) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return s.assets.DeleteAllAssetsForProfile(ctx, db, id)
}

func parseBirthDate(raw string) (time.Time, error) {
	birth, err := time.Parse(validator.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.ValidationError(map[string]string{
			"date_naissance": "Must be a date in YYYY-MM-DD format",
		})
	}
	return birth, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// requireNames rejects names that are present but blank once trimmed. nil means "not sent".
func requireNames(nom, prenom *string) error {
	errs := map[string]string{}
	if nom != nil && strings.TrimSpace(*nom) == "" {
		errs["nom"] = "This field must not be blank"
	}
	if prenom != nil && strings.TrimSpace(*prenom) == "" {
		errs["prenom"] = "This field must not be blank"
	}
	if len(errs) > 0 {
		return apperrors.ValidationError(errs)
	}
	return nil
}
