package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered author. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Provider     string    `gorm:"size:32" json:"provider"`
	ProviderID   string    `gorm:"size:255" json:"provider_id"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Posts        []Post    `gorm:"foreignKey:AuthorID" json:"-"`
	Comments     []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeDelete removes everything owned by the user. Cascades live here
// rather than in DB-level foreign keys: migration runs with
// DisableForeignKeyConstraintWhenMigrating, so the application owns them.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	// Comments under the user's posts go first, then the user's own
	// comments elsewhere, then the posts themselves.
	sub := tx.Session(&gorm.Session{NewDB: true}).Model(&Post{}).Select("id").Where("author_id = ?", u.ID)
	if err := tx.Where("post_id IN (?)", sub).Delete(&Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("author_id = ?", u.ID).Delete(&Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("author_id = ?", u.ID).Delete(&Post{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ? OR author_id = ?", u.ID, u.ID).Delete(&Follow{}).Error
}
