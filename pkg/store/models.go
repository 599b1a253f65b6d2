package store

import (
	"time"

	"gorm.io/datatypes"
)

// ReadingModel is the GORM row for a persisted reading. Tags are kept as a
// single JSONB object so absent values survive round-trips as explicit
// empty strings.
type ReadingModel struct {
	ID            string         `gorm:"primaryKey"`
	OwnerID       string         `gorm:"not null;index"`
	Tags          datatypes.JSON `gorm:"type:jsonb"`
	ImageRef      string         `gorm:"type:text;not null"`
	NarrativeText string         `gorm:"type:text;not null"`
	AudioURL      string         `gorm:"type:text"`
	Visibility    string         `gorm:"not null;default:private"`
	CreatedAt     time.Time      `gorm:"not null;index"`
}

// TableName keeps the table name stable.
func (ReadingModel) TableName() string {
	return "readings"
}
