package database

import (
	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func CreateIndexes(db *gorm.DB) error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	// The partial unique indexes back the at-most-one-open-shift
	// invariant at the storage layer. The lock gate and conflict
	// detector are the primary guard; the indexes hold the line against
	// writes that bypass the coordinator.
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS uidx_shifts_open_vehicle ON shifts(vehicle_id) WHERE status = 'OPEN' AND deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS uidx_shifts_open_team ON shifts(team_id) WHERE status = 'OPEN' AND deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_shifts_status_start ON shifts(status, start_time)",
		"CREATE INDEX IF NOT EXISTS idx_checklist_answers_awaiting ON checklist_answers(awaiting_photo) WHERE awaiting_photo = true",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
