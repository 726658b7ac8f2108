package repository

import (
	"context"
	"fmt"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/uptrace/bun"
)

// BunAuditRepository implements AuditRepository using Bun ORM.
type BunAuditRepository struct {
	db *bun.DB
}

// NewBunAuditRepository creates a new Bun-based audit repository
func NewBunAuditRepository(db *bun.DB) *BunAuditRepository {
	return &BunAuditRepository{db: db}
}

// Append inserts one audit record. Records are never updated or deleted.
func (r *BunAuditRepository) Append(ctx context.Context, rec *models.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = bunx.NewUUIDv7()
	}
	touch(rec, true)

	_, err := r.db.NewInsert().
		Model(rec).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// List pages through the trail, newest first.
func (r *BunAuditRepository) List(ctx context.Context, req pagination.Request) (*pagination.Result[models.AuditRecord], error) {
	if req.OrderBy == "" {
		req.OrderBy = "created_at DESC"
	}
	return NewBunRecordRepository[models.AuditRecord](r.db).List(ctx, req)
}
