package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Persona struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug             string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name             string         `gorm:"type:varchar(255);not null"`
	ShortDescription string         `gorm:"type:text"`
	AvatarURL        *string        `gorm:"type:text"`
	Category         string         `gorm:"type:varchar(50);index"`
	SystemPrompt     string         `gorm:"type:text"`
	Traits           datatypes.JSON `gorm:"type:jsonb"`
	IsActive         bool           `gorm:"not null;default:true;index"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Persona) TableName() string {
	return "personas"
}
