package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultMimeType = "application/octet-stream"

// File is the metadata record for one stored blob. Owner, blob reference and
// creation time are written on insert only; there is no update path.
type File struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Size        int64     `json:"size" gorm:"not null;default:0"`
	MimeType    string    `json:"mimeType" gorm:"type:varchar(255);not null"`
	BlobRef     string    `json:"storageId" gorm:"<-:create;type:varchar(255);not null;uniqueIndex"`
	OwnerID     uuid.UUID `json:"uploadedBy" gorm:"<-:create;type:uuid;not null;index"`
	IsPublic    bool      `json:"isPublic" gorm:"not null;default:false;index"`
	Tags        []string  `json:"tags,omitempty" gorm:"type:text;serializer:json"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"<-:create;not null;index"`
}

func (f *File) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (File) TableName() string {
	return "files"
}

// MimeCategory returns the major part of the MIME type ("image" for
// "image/png"), or "other" when the type is empty.
func (f *File) MimeCategory() string {
	major, _, _ := strings.Cut(f.MimeType, "/")
	major = strings.ToLower(strings.TrimSpace(major))
	if major == "" {
		return "other"
	}
	return major
}

// NormalizeTags trims each tag, drops empty ones and removes duplicates while
// keeping the order of first appearance.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
