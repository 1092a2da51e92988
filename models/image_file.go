package models

import "time"

// ImageFile records an uploaded post image on disk so the background
// cleaner can remove files whose post is gone.
type ImageFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	PostID    uint      `gorm:"index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
