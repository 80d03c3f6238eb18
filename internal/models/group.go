package models

// Group is an administratively created topic that posts may belong to.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string {
	return "groups"
}

func (g Group) String() string {
	return g.Title
}
