package repository

import (
	"context"
	"errors"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
)

// ErrNotFound is returned when a single-record lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// RecordRepository exposes persistence operations shared by every entity.
// T is the concrete model struct (models.Client, models.Rating, ...).
type RecordRepository[T any] interface {
	Create(ctx context.Context, rec *T) error
	Get(ctx context.Context, id string, include []string) (*T, error)
	FindOne(ctx context.Context, where map[string]any) (*T, error)
	Update(ctx context.Context, rec *T, columns []string) error
	Delete(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, req pagination.Request) (*pagination.Result[T], error)
}

// AuditRepository appends to and reads the audit trail. There is no update
// or delete: the trail is append-only.
type AuditRepository interface {
	Append(ctx context.Context, rec *models.AuditRecord) error
	List(ctx context.Context, req pagination.Request) (*pagination.Result[models.AuditRecord], error)
}
