package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a named category a post may belong to.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Posts       []Post    `json:"-"`
}

// BeforeDelete detaches referencing posts instead of deleting them.
func (g *Group) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Post{}).Where("group_id = ?", g.ID).Update("group_id", nil).Error
}
