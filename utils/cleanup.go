package utils

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
)

// StartImageCleaner launches a background goroutine that periodically
// deletes image files whose post no longer exists. Best-effort: failures
// are logged and retried on the next pass.
func StartImageCleaner(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup.
			time.Sleep(interval)
			if db == nil {
				continue
			}

			var orphans []models.ImageFile
			err := db.
				Where("created_at <= ?", time.Now().Add(-time.Hour)).
				Where("post_id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).Model(&models.Post{}).Select("id")).
				Limit(100).
				Find(&orphans).Error
			if err != nil {
				log.Printf("image cleaner query failed: %v", err)
				continue
			}

			for _, it := range orphans {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove row regardless of file deletion outcome.
				if err := db.Delete(&models.ImageFile{}, it.ID).Error; err != nil {
					log.Printf("image cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
