package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
	"gorm.io/gorm"
)

// StartCleanup deletes system_logs older than retentionDays once a day until
// done is closed.
func StartCleanup(db *gorm.DB, retentionDays int, done <-chan struct{}) {
	if retentionDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleteExpired(db, retentionDays, time.Now())
			case <-done:
				return
			}
		}
	}()
}

func deleteExpired(db *gorm.DB, retentionDays int, now time.Time) int64 {
	cutoff := now.AddDate(0, 0, -retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "op", "log_cleanup", "error", result.Error.Error())
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "op", "log_cleanup", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
