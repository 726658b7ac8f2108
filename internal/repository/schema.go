package repository

import (
	"context"
	"fmt"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/uptrace/bun"
)

// InitSchema creates all tables that do not exist yet. Used by `db init`
// and by the test helpers; production PostgreSQL deployments may prefer
// managed migrations, SQLite deployments rely on this.
func InitSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range models.All() {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}
