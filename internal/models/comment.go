package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Comment is a reply attached to a post. Created is written once on insert.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"not null;index" json:"post_id"`
	Post     *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Text     string    `gorm:"type:text;not null;check:chk_comments_text_not_blank,length(trim(text)) > 0" json:"text"`
	Created  time.Time `gorm:"column:created;not null;autoCreateTime;<-:create;index" json:"created"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string {
	return "comments"
}

// BeforeSave rejects blank text on every write path.
func (c *Comment) BeforeSave(_ *gorm.DB) error {
	if strings.TrimSpace(c.Text) == "" {
		return NewFieldValidationError("text", "Comment text is required")
	}
	return nil
}
