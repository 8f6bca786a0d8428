package models

import "gorm.io/datatypes"

type Photo struct {
	BaseModel
	TalentID     string       `gorm:"type:varchar(36);not null;index" json:"talent_id"`
	Expression   Expression   `gorm:"size:32" json:"expression,omitempty"`
	MimeType     string       `gorm:"size:128" json:"mimeType"`
	Size         int64        `json:"size"`
	OriginalName string       `gorm:"size:255" json:"originalName,omitempty"`
	Blob         AssetLocator `gorm:"embedded;embeddedPrefix:blob_" json:"blob"`

	// Meta keeps backend details that have no column of their own.
	Meta datatypes.JSONMap `json:"meta,omitempty"`
}
