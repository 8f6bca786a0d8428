package services

import (
	"gocast_backend/internal/auth"
	"gocast_backend/internal/repositories"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService   AuthService
	TalentService TalentService
	AssetService  AssetService
}

func NewServiceContainer(blobs BlobStore, tokens *auth.TokenManager, blacklist auth.Blacklist) *ServiceContainer {
	talentRepo := repositories.NewTalentRepository()
	photoRepo := repositories.NewPhotoRepository()
	adminRepo := repositories.NewAdminRepository()

	assets := NewAssetService(blobs, talentRepo, photoRepo)
	return &ServiceContainer{
		AuthService:   NewAuthService(adminRepo, tokens, blacklist),
		TalentService: NewTalentService(talentRepo, assets),
		AssetService:  assets,
	}
}
