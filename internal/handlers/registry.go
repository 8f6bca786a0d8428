package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler   *AuthHandler
	TalentHandler *TalentHandler
	UploadHandler *UploadHandler
	FileHandler   *FileHandler
	HealthHandler *HealthHandler
}
