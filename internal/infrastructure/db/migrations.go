package db

import (
	"github.com/striveopps/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Task{},
		&domain.Scholarship{},
		&domain.TaskEvent{},
	)
	if err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	// Worker claim path: oldest due pending task.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scraping_tasks_status_next_run
		ON scraping_tasks (status, next_run)
	`).Error; err != nil {
		return err
	}

	// Processing rate window and lease sweeps.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scraping_tasks_status_end_time
		ON scraping_tasks (status, end_time)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scraping_tasks_status_updated_at
		ON scraping_tasks (status, updated_at)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scholarships_amount_range
		ON scholarships (amount_min, amount_max)
	`).Error; err != nil {
		return err
	}

	return nil
}
