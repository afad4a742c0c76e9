package main

import (
	"gorm.io/gorm"

	"github.com/hirehub/server/internal/models"
)

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addLiveChatHistoryIndex,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// addLiveChatHistoryIndex serves the newest-first history read of one room.
func addLiveChatHistoryIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_live_chat_session_recent
		ON live_chat (session_id, create_at DESC, id DESC)
	`).Error
}
