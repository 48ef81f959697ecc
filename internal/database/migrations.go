package database

import (
	"fmt"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model  interface{}
		name   string
		column string
	}{
		// Task indexes for filtering and sorting
		{&models.Task{}, "idx_tasks_status", "status"},
		{&models.Task{}, "idx_tasks_due_date", "due_date"},

		// Membership lookups back the authorization check on every request
		{&models.ProjectMember{}, "idx_project_members_user_id", "user_id"},

		// Comment listing per task
		{&models.Comment{}, "idx_comments_task_id", "task_id"},
	}

	for _, idx := range indexes {
		migrator := db.Migrator()
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.column)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// MigrateDatabase runs AutoMigrate plus the index pass.
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
