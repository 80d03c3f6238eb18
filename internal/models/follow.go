package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = NewValidationError("Cannot follow yourself")

// Follow is a directed edge: User follows Author. Each pair exists at most once.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follows_user_author;check:chk_follows_not_self,user_id <> author_id" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follows_user_author;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate refuses self-edges before they reach the CHECK constraint.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.UserID == f.AuthorID {
		return ErrSelfFollow
	}
	return nil
}
