package dto

import (
	"io"
	"time"
)

// AssetUpload is a decoded multipart file handed to the asset service.
type AssetUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type PhotoUploadForm struct {
	Expression string `form:"expression" validate:"is-expression"`
}

type SingletonAssetResponse struct {
	TalentID     string `json:"talent_id"`
	Kind         string `json:"kind"`
	MimeType     string `json:"mimeType"`
	OriginalName string `json:"originalName,omitempty"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// FileStream is an asset ready to be written to a response.
type FileStream struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	Filename    string
	ETag        string
	Immutable   bool
	ModTime     time.Time
}
