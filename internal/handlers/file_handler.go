package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"gocast_backend/internal/logger"
	"gocast_backend/internal/services"
	"gocast_backend/internal/services/dto"
	"gocast_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	cacheImmutable  = "public, max-age=31536000, immutable"
	cacheRevalidate = "no-cache"
)

type FileHandler struct {
	*BaseHandler
	assetService services.AssetService
}

func NewFileHandler(base *BaseHandler, assetService services.AssetService) *FileHandler {
	return &FileHandler{
		BaseHandler:  base,
		assetService: assetService,
	}
}

func (h *FileHandler) RegisterRoutes(r gin.IRoutes) {
	for _, route := range []struct {
		path    string
		handler gin.HandlerFunc
	}{
		{"/files/:fileId", h.ServeFile},
		{"/files/photo/:photoId", h.ServePhoto},
		{"/files/talent/:id/cv", h.ServeTalentCV},
		{"/files/talent/:id/video", h.ServeTalentVideo},
	} {
		r.GET(route.path, route.handler)
		r.HEAD(route.path, route.handler)
	}
}

// ServeFile serves a photo or object-store blob by id.
func (h *FileHandler) ServeFile(c *gin.Context) {
	stream, err := h.assetService.OpenFile(c.Request.Context(), h.GetDB(c), c.Param("fileId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, stream)
}

func (h *FileHandler) ServePhoto(c *gin.Context) {
	stream, err := h.assetService.OpenPhoto(c.Request.Context(), h.GetDB(c), c.Param("photoId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, stream)
}

func (h *FileHandler) ServeTalentCV(c *gin.Context) {
	h.serveTalentAsset(c, storage.KindCV)
}

func (h *FileHandler) ServeTalentVideo(c *gin.Context) {
	h.serveTalentAsset(c, storage.KindVideo)
}

func (h *FileHandler) serveTalentAsset(c *gin.Context, kind storage.Kind) {
	stream, err := h.assetService.OpenTalentAsset(c.Request.Context(), h.GetDB(c), c.Param("id"), kind)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, stream)
}

// respond writes headers and then streams the body. Once the first byte is
// out, failures are only logged.
func (h *FileHandler) respond(c *gin.Context, stream *dto.FileStream) {
	defer stream.Body.Close()

	if c.Query("format") == "base64" {
		h.respondBase64(c, stream)
		return
	}

	c.Header("Content-Type", stream.ContentType)
	c.Header("Content-Disposition", contentDisposition(c.Query("download") == "true", stream.Filename))
	if stream.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(stream.Size, 10))
	}

	if stream.Immutable {
		c.Header("Cache-Control", cacheImmutable)
	} else {
		c.Header("Cache-Control", cacheRevalidate)
	}
	if stream.ETag != "" {
		etag := `"` + stream.ETag + `"`
		c.Header("ETag", etag)
		if etagMatches(c.GetHeader("If-None-Match"), etag) {
			c.Header("Content-Length", "")
			c.Status(http.StatusNotModified)
			return
		}
	}
	if !stream.ModTime.IsZero() {
		c.Header("Last-Modified", stream.ModTime.UTC().Format(http.TimeFormat))
	}

	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream.Body); err != nil {
		// Headers are already sent; the client sees a truncated body.
		logger.CtxWithError(c.Request.Context(), "file stream interrupted", err, "path", c.Request.URL.Path)
		_ = c.Error(err)
	}
}

// respondBase64 answers with a data URI for front-ends that embed files directly.
func (h *FileHandler) respondBase64(c *gin.Context, stream *dto.FileStream) {
	data, err := io.ReadAll(stream.Body)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Header("Cache-Control", cacheRevalidate)
	c.JSON(http.StatusOK, gin.H{
		"base64":   storage.EncodeDataURI(stream.ContentType, data),
		"mimeType": stream.ContentType,
	})
}

func contentDisposition(download bool, filename string) string {
	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	if filename == "" {
		return disposition
	}
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": filename}); v != "" {
		return v
	}
	return disposition
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
