package models

import "time"

// Tag kinds stored in preference_tags.kind.
const (
	TagKindInterest = "interest"
	TagKindFood     = "food"
)

// PreferenceRecord is the single preference row a user may own.
type PreferenceRecord struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"not null;uniqueIndex"`
	User        User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Destination string          `gorm:"not null"`
	Tags        []PreferenceTag `gorm:"foreignKey:PreferenceID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PreferenceRecord) TableName() string { return "preferences" }

// PreferenceTag is one selected interest or food tag, ordered by Position.
type PreferenceTag struct {
	ID           uint   `gorm:"primaryKey"`
	PreferenceID uint   `gorm:"not null;index"`
	Kind         string `gorm:"not null;size:16"`
	Tag          string `gorm:"not null"`
	Position     int    `gorm:"not null"`
}
