package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const previewLength = 15

// Post is a text entry authored by a user, optionally filed under a group.
// PubDate is written once on insert and ignored by later updates.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null;check:chk_posts_text_not_blank,length(trim(text)) > 0" json:"text"`
	PubDate  time.Time `gorm:"column:pub_date;not null;autoCreateTime;<-:create;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image    string    `gorm:"size:255;not null;default:''" json:"image,omitempty"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string {
	return "posts"
}

// BeforeSave rejects blank text on every write path.
func (p *Post) BeforeSave(_ *gorm.DB) error {
	if strings.TrimSpace(p.Text) == "" {
		return NewFieldValidationError("text", "Post text is required")
	}
	return nil
}

// Preview returns the first characters of the text.
func (p Post) Preview() string {
	runes := []rune(p.Text)
	if len(runes) <= previewLength {
		return p.Text
	}
	return string(runes[:previewLength])
}

func (p Post) String() string {
	return p.Preview()
}
