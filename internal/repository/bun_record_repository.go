package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/uptrace/bun"
)

// BunRecordRepository implements RecordRepository for any Bun model using
// one generic implementation instead of six near-identical ones.
type BunRecordRepository[T any] struct {
	db *bun.DB
}

// NewBunRecordRepository creates a new Bun-based record repository
func NewBunRecordRepository[T any](db *bun.DB) *BunRecordRepository[T] {
	return &BunRecordRepository[T]{db: db}
}

// Create inserts a new record, assigning a UUIDv7 ID when none is set.
func (r *BunRecordRepository[T]) Create(ctx context.Context, rec *T) error {
	if m, ok := any(rec).(models.Record); ok && m.GetID() == "" {
		m.SetID(bunx.NewUUIDv7())
	}
	touch(rec, true)

	_, err := r.db.NewInsert().
		Model(rec).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID, loading the given relations.
func (r *BunRecordRepository[T]) Get(ctx context.Context, id string, include []string) (*T, error) {
	rec := new(T)
	q := r.db.NewSelect().Model(rec).Where("id = ?", id)
	for _, rel := range include {
		q = q.Relation(rel)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

// FindOne retrieves the first record matching all where conditions.
// Used by entity pre-checks (e.g. duplicate rating lookup) and login.
func (r *BunRecordRepository[T]) FindOne(ctx context.Context, where map[string]any) (*T, error) {
	rec := new(T)
	q := r.db.NewSelect().Model(rec)
	for _, col := range sortedKeys(where) {
		q = q.Where("? = ?", bun.Ident(col), where[col])
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return rec, nil
}

// Update writes the given columns of an existing record.
func (r *BunRecordRepository[T]) Update(ctx context.Context, rec *T, columns []string) error {
	touch(rec, false)

	q := r.db.NewUpdate().Model(rec).WherePK()
	if len(columns) > 0 {
		q = q.Column(append(columns, "updated_at")...)
	}
	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record by ID and returns the deleted record so the caller
// can audit it.
func (r *BunRecordRepository[T]) Delete(ctx context.Context, id string) (*T, error) {
	rec, err := r.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	_, err = r.db.NewDelete().Model(rec).WherePK().Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete record %s: %w", id, err)
	}
	return rec, nil
}

// List runs the bounded fetch and the total count inside one transaction so
// both observe the same snapshot; TotalDocs can never disagree with Docs.
func (r *BunRecordRepository[T]) List(ctx context.Context, req pagination.Request) (*pagination.Result[T], error) {
	req = req.Normalize()

	var docs []T
	var total int
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&docs)
		for _, rel := range req.Include {
			q = q.Relation(rel)
		}
		for _, col := range sortedKeys(req.Where) {
			q = q.Where("? = ?", bun.Ident(col), req.Where[col])
		}
		if req.OrderBy != "" {
			q = q.Order(req.OrderBy)
		} else {
			q = q.Order("created_at DESC")
		}

		var err error
		total, err = q.Limit(req.Limit).Offset(req.Skip()).ScanAndCount(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	result := pagination.NewResult(req, total, docs)
	return &result, nil
}

// sortedKeys keeps generated SQL deterministic regardless of map order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// touch sets the timestamp fields by reflection. The generic type parameter
// cannot express "has CreatedAt/UpdatedAt", and every model carries both.
func touch(rec any, create bool) {
	v := reflect.ValueOf(rec).Elem()
	now := time.Now()
	if create {
		if f := v.FieldByName("CreatedAt"); f.IsValid() && f.CanSet() && f.Type() == reflect.TypeOf(now) {
			f.Set(reflect.ValueOf(now))
		}
	}
	if f := v.FieldByName("UpdatedAt"); f.IsValid() && f.CanSet() && f.Type() == reflect.TypeOf(now) {
		f.Set(reflect.ValueOf(now))
	}
}
