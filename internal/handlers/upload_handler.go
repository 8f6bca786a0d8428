package handlers

import (
	"errors"
	"net/http"

	"gocast_backend/internal/logger"
	"gocast_backend/internal/models"
	"gocast_backend/internal/services"
	"gocast_backend/internal/services/dto"
	"gocast_backend/internal/storage"
	"gocast_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers boundaries and the non-file fields of an upload form.
const multipartOverhead = 1 << 20

// Multipart field names for each slot.
const (
	fieldPhoto = "photo"
	fieldVideo = "video"
	fieldCV    = "cv_pdf"
)

type UploadHandler struct {
	*BaseHandler
	assetService services.AssetService
	// maxBodySize caps the whole request; the store enforces its own per-backend limit.
	maxBodySize int64
}

func NewUploadHandler(base *BaseHandler, assetService services.AssetService, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{
		BaseHandler:  base,
		assetService: assetService,
		maxBodySize:  maxUploadSize + multipartOverhead,
	}
}

func (h *UploadHandler) RegisterRoutes(protected *gin.RouterGroup) {
	for _, prefix := range []string{"/talents", "/profiles"} {
		g := protected.Group(prefix)
		g.POST("/:id/photos", h.UploadPhoto)
		g.POST("/:id/video", h.UploadVideo)
		g.POST("/:id/cv", h.UploadCV)
	}

	protected.DELETE("/talents/photos/:photoId", h.DeletePhoto)
	protected.DELETE("/photos/:photoId", h.DeletePhoto)
}

func (h *UploadHandler) UploadPhoto(c *gin.Context) {
	var form dto.PhotoUploadForm
	upload, closeFn, ok := h.readUpload(c, fieldPhoto)
	if !ok {
		return
	}
	defer closeFn()

	if !h.BindAndValidate_Form(c, &form) {
		return
	}

	photo, err := h.assetService.AttachPhoto(c.Request.Context(), h.GetDB(c), c.Param("id"), models.Expression(form.Expression), upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Photo uploaded",
		"photo":   dto.NewPhotoResponse(photo),
	})
}

func (h *UploadHandler) UploadVideo(c *gin.Context) {
	h.replaceSingleton(c, storage.KindVideo, fieldVideo)
}

func (h *UploadHandler) UploadCV(c *gin.Context) {
	h.replaceSingleton(c, storage.KindCV, fieldCV)
}

func (h *UploadHandler) DeletePhoto(c *gin.Context) {
	if err := h.assetService.DeletePhoto(c.Request.Context(), h.GetDB(c), c.Param("photoId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

func (h *UploadHandler) replaceSingleton(c *gin.Context, kind storage.Kind, field string) {
	upload, closeFn, ok := h.readUpload(c, field)
	if !ok {
		return
	}
	defer closeFn()

	asset, err := h.assetService.ReplaceSingletonAsset(c.Request.Context(), h.GetDB(c), c.Param("id"), kind, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": string(kind) + " uploaded",
		"asset":   asset,
	})
}

// readUpload opens the multipart file in field and resolves its content type.
// On failure the error response is already written.
func (h *UploadHandler) readUpload(c *gin.Context, field string) (*dto.AssetUpload, func(), bool) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)

	fileHeader, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperrors.HandleError(c, apperrors.ErrFileTooLarge(err, h.maxBodySize-multipartOverhead))
			return nil, nil, false
		}
		logger.CtxWarn(ctx, "upload without file", "field", field, "error", err.Error())
		apperrors.HandleError(c, apperrors.NewBadRequestError("No file uploaded in field "+field))
		return nil, nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return nil, nil, false
	}
	closeFn := func() { _ = file.Close() }

	contentType, err := services.ResolveContentType(fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		closeFn()
		apperrors.HandleError(c, apperrors.InternalError(err))
		return nil, nil, false
	}

	return &dto.AssetUpload{
		Body:        file,
		Size:        fileHeader.Size,
		ContentType: contentType,
		Filename:    fileHeader.Filename,
	}, closeFn, true
}
