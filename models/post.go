package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is an authored entry. PubDate is set once at creation and drives
// the newest-first ordering of every listing; Author is immutable.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"column:pub_date;index;not null" json:"pub_date"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`
	GroupID  *uint     `gorm:"index" json:"group_id"`
	Image    string    `gorm:"size:1024" json:"image"`
	Author   User      `json:"author"`
	Group    *Group    `json:"group,omitempty"`
	Comments []Comment `json:"-"`
}

// BeforeCreate stamps the publication date exactly once.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	return nil
}

// BeforeDelete cascades to the post's comments.
func (p *Post) BeforeDelete(tx *gorm.DB) error {
	return tx.Where("post_id = ?", p.ID).Delete(&Comment{}).Error
}
