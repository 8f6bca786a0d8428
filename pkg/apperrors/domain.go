package apperrors

import (
	"fmt"
	"net/http"
)

// Factories wrap repository or storage errors. They return a fresh value
// so callers may attach details.

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// --- Talents & assets ---

func ErrTalentNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "talent", "Talent not found", http.StatusNotFound)
}

func ErrPhotoNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "photo", "Photo not found", http.StatusNotFound)
}

// ErrAssetNotFound covers a missing blob and a record whose locator no longer resolves.
func ErrAssetNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "file", "File not found", http.StatusNotFound)
}

// --- Uploads & storage ---

// ErrFileTooLarge reports the ceiling of the backend that rejected the payload.
func ErrFileTooLarge(err error, limit int64) *AppError {
	return Wrap(err, CodeLimitExceeded, "validation",
		fmt.Sprintf("File size exceeds the allowed limit of %d MB", limit>>20),
		http.StatusRequestEntityTooLarge,
	).WithDetails(map[string]int64{"max_size_bytes": limit})
}

// ErrInvalidFileType is raised before storage is touched.
func ErrInvalidFileType(message string) *AppError {
	return New(CodeValidationFailed, "validation", message, http.StatusUnsupportedMediaType)
}

func ErrStorageUnavailable(err error) *AppError {
	return Wrap(err, CodeStorageUnavailable, "storage", "File storage is temporarily unavailable", http.StatusServiceUnavailable)
}

// --- Auth ---

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

var ErrUsernameTaken = New(
	CodeAlreadyExists,
	"auth",
	"Username already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid username or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)
