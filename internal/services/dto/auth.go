package dto

import "gocast_backend/internal/models"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *models.Admin `json:"user"`
}

type VerifyResponse struct {
	Valid bool          `json:"valid"`
	User  *models.Admin `json:"user"`
}
