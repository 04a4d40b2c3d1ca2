package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by task listing and scoping.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		// Member scope: creator OR assignee
		{&models.Task{}, "idx_tasks_creator_id", "creator_id"},
		{&models.Task{}, "idx_tasks_assignee_id", "assignee_id"},

		// Filtering and ordering
		{&models.Task{}, "idx_tasks_status", "status"},
		{&models.Task{}, "idx_tasks_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, stmt.Schema.Table, idx.columns)
	}

	return nil
}
