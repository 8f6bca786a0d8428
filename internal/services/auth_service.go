package services

import (
	"context"
	"errors"
	"strings"

	"gocast_backend/internal/auth"
	"gocast_backend/internal/logger"
	"gocast_backend/internal/models"
	"gocast_backend/internal/repositories"
	"gocast_backend/internal/services/dto"
	"gocast_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*models.Admin, error)
	Verify(ctx context.Context, db *gorm.DB, adminID string) (*dto.VerifyResponse, error)
	Logout(ctx context.Context, claims auth.Claims) error
	SeedAdmin(ctx context.Context, db *gorm.DB, username, password string) error
}

type AuthServiceImpl struct {
	adminRepo repositories.AdminRepository
	tokens    *auth.TokenManager
	// blacklist is nil when Redis is not configured.
	blacklist auth.Blacklist
}

func NewAuthService(adminRepo repositories.AdminRepository, tokens *auth.TokenManager, blacklist auth.Blacklist) AuthService {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := s.adminRepo.FindByUsername(db, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, admin.PasswordHash) {
		logger.CtxWarn(ctx, "failed login attempt", "username", admin.Username)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(ctx, admin.ID, admin.Username)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "admin logged in", "admin_id", admin.ID)
	return &dto.LoginResponse{Token: token, User: admin}, nil
}

func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*models.Admin, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	admin := &models.Admin{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
	}
	if err := s.adminRepo.Create(db, admin); err != nil {
		if errors.Is(err, repositories.ErrAdminAlreadyExists) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "admin registered", "admin_id", admin.ID, "username", admin.Username)
	return admin, nil
}

func (s *AuthServiceImpl) Verify(ctx context.Context, db *gorm.DB, adminID string) (*dto.VerifyResponse, error) {
	admin, err := s.adminRepo.FindByID(db, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	return &dto.VerifyResponse{Valid: true, User: admin}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthServiceImpl) Logout(ctx context.Context, claims auth.Claims) error {
	if s.blacklist == nil {
		logger.CtxWarn(ctx, "logout without revocation store, token stays valid until expiry", "jti", claims.JTI)
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "token revoked", "jti", claims.JTI)
	return nil
}

// SeedAdmin creates the default admin unless one with that username exists.
func (s *AuthServiceImpl) SeedAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.adminRepo.FindByUsername(db, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrAdminNotFound) {
		return err
	}

	if _, err := s.Register(ctx, db, &dto.RegisterRequest{Username: username, Password: password}); err != nil {
		return err
	}
	logger.CtxWarn(ctx, "default admin created, change its password", "username", username)
	return nil
}
