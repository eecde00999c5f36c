package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContributionKind string

const (
	ContributionUpload  ContributionKind = "upload"
	ContributionShare   ContributionKind = "share"
	ContributionComment ContributionKind = "comment"
)

func (k ContributionKind) Valid() bool {
	switch k {
	case ContributionUpload, ContributionShare, ContributionComment:
		return true
	}
	return false
}

// Contribution is an append-only event. It does NOT use BaseModel because
// contribution rows are never updated or deleted. FileID is not a foreign
// key: a contribution may outlive the file it references.
type Contribution struct {
	ID            uuid.UUID        `json:"id" gorm:"<-:create;type:uuid;primaryKey"`
	FileID        uuid.UUID        `json:"fileId" gorm:"<-:create;type:uuid;not null;index"`
	ContributorID uuid.UUID        `json:"contributorId" gorm:"<-:create;type:uuid;not null;index"`
	Kind          ContributionKind `json:"kind" gorm:"<-:create;type:varchar(20);not null"`
	Message       *string          `json:"message,omitempty" gorm:"<-:create;type:text"`
	CreatedAt     time.Time        `json:"createdAt" gorm:"<-:create;not null;index"`
}

func (c *Contribution) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (Contribution) TableName() string {
	return "contributions"
}
