package models

import "time"

// Follow is a directed edge: UserID follows AuthorID. The composite unique
// index is the only duplicate protection; concurrent creates rely on it
// and swallow the conflict.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_follows_user_author;not null" json:"user_id"`
	AuthorID  uint      `gorm:"uniqueIndex:idx_follows_user_author;not null" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
