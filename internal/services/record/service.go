// Package record implements the access-controlled, audited, paginated
// service shape every entity repeats. One generic engine replaces the six
// near-identical per-entity services; entity-specific role gates,
// pre-checks, and side effects come in through the Descriptor.
package record

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/services/audit"
	"github.com/aylalah/ag-rms-sub000/internal/services/forms"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/telemetry"
)

// Descriptor declares how one entity plugs into the generic engine.
type Descriptor[T any] struct {
	// Table is the policy object and audit table name ("clients").
	Table string

	// Singular and Plural key the response envelopes.
	Singular string
	Plural   string

	// Role gates per mutation. Reads are always open to any authenticated
	// principal. Delete is typically stricter than create/update.
	CreateRule iam.Rule
	UpdateRule iam.Rule
	DeleteRule iam.Rule

	// BaseIncludes are relations One always loads for display, merged with
	// whatever the caller asks for.
	BaseIncludes []string

	// PreCreate runs after the access check and before the insert. Returning
	// an error aborts the create with no write and no audit record.
	PreCreate func(ctx context.Context, rec *T) error

	// PreUpdate runs after the prior-state read and before the write. It may
	// mutate next and return extra column names to persist beyond the
	// caller-declared fields.
	PreUpdate func(ctx context.Context, prev, next *T, fields []string) ([]string, error)

	// PostCreate and PostUpdate run after the audit write, for side effects
	// such as conditional emails. PostUpdate receives the submitted record
	// and the declared fields so it can gate on what actually changed.
	PostCreate func(ctx context.Context, rec *T)
	PostUpdate func(ctx context.Context, prev, next *T, fields []string)

	// AuditSnapshot, when set, replaces the record with a sanitized copy
	// before it is serialized into the trail. Entities carrying transient
	// secrets (plaintext contact passwords) use it to keep them out of the
	// durable snapshots.
	AuditSnapshot func(rec *T) any

	// Decorate augments formObject fields by name with dynamic values
	// (choice lists from related entities, generated passwords).
	Decorate map[string]func(ctx context.Context) (any, error)
}

// Service is the generic entity service: Access Policy in front, Paginated
// Query Engine for reads, Audit Log behind every mutation.
type Service[T any] struct {
	desc    Descriptor[T]
	repo    repository.RecordRepository[T]
	policy  *iam.Policy
	audits  *audit.Recorder
	columns map[string]string // json field name -> db column
}

// NewService wires one entity into the engine and registers its policy rows.
func NewService[T any](desc Descriptor[T], repo repository.RecordRepository[T], policy *iam.Policy, audits *audit.Recorder) (*Service[T], error) {
	rules := map[string]iam.Rule{
		"read":   iam.AllowAll,
		"create": desc.CreateRule,
		"update": desc.UpdateRule,
		"delete": desc.DeleteRule,
	}
	for action, rule := range rules {
		if err := policy.Register(desc.Table, action, rule); err != nil {
			return nil, fmt.Errorf("register %s rules: %w", desc.Table, err)
		}
	}

	return &Service[T]{
		desc:    desc,
		repo:    repo,
		policy:  policy,
		audits:  audits,
		columns: forms.ColumnMap(new(T)),
	}, nil
}

// Table returns the entity's table name.
func (s *Service[T]) Table() string { return s.desc.Table }

// Singular returns the singular envelope key.
func (s *Service[T]) Singular() string { return s.desc.Singular }

// Plural returns the plural envelope key.
func (s *Service[T]) Plural() string { return s.desc.Plural }

// Column resolves a JSON field name to its database column, so callers can
// translate filter parameters without knowing the schema.
func (s *Service[T]) Column(field string) (string, bool) {
	col, ok := s.columns[field]
	return col, ok
}

// All returns one page of records.
func (s *Service[T]) All(ctx context.Context, req pagination.Request) (*pagination.Result[T], error) {
	if _, err := s.policy.Check(ctx, s.desc.Table, "read"); err != nil {
		return nil, err
	}

	result, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, s.internal(err, "list %s", s.desc.Plural)
	}
	return result, nil
}

// One returns a single record with the caller's includes merged into the
// entity's baseline includes.
func (s *Service[T]) One(ctx context.Context, id string, include []string) (*T, error) {
	if _, err := s.policy.Check(ctx, s.desc.Table, "read"); err != nil {
		return nil, err
	}

	rec, err := s.repo.Get(ctx, id, mergeIncludes(s.desc.BaseIncludes, include))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "%s not found", s.desc.Singular)
		}
		return nil, s.internal(err, "get %s", s.desc.Singular)
	}
	return rec, nil
}

// Create inserts a record after the entity's pre-checks, audits it, and
// fires the entity's post-create side effect.
func (s *Service[T]) Create(ctx context.Context, rec *T) (string, error) {
	principal, err := s.policy.Check(ctx, s.desc.Table, "create")
	if err != nil {
		return "", err
	}

	if s.desc.PreCreate != nil {
		if err := s.desc.PreCreate(ctx, rec); err != nil {
			return "", err
		}
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return "", s.internal(err, "create %s", s.desc.Singular)
	}
	telemetry.MutationsTotal.WithLabelValues(s.desc.Table, "create").Inc()

	s.audits.Record(ctx, audit.Entry{
		Table:  s.desc.Table,
		User:   principal,
		Action: models.AuditActionCreate,
		Next:   s.snapshot(rec),
	})

	if s.desc.PostCreate != nil {
		s.desc.PostCreate(ctx, rec)
	}

	return fmt.Sprintf("%s created successfully", s.desc.Singular), nil
}

// Update writes the declared fields of an existing record, audits the
// before/after snapshots, and fires the entity's post-update side effect.
func (s *Service[T]) Update(ctx context.Context, id string, rec *T, fields []string) (string, error) {
	principal, err := s.policy.Check(ctx, s.desc.Table, "update")
	if err != nil {
		return "", err
	}

	prev, err := s.repo.Get(ctx, id, nil)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.New(apperr.KindNotFound, "%s not found", s.desc.Singular)
		}
		return "", s.internal(err, "get %s", s.desc.Singular)
	}

	extraColumns := []string(nil)
	if s.desc.PreUpdate != nil {
		extraColumns, err = s.desc.PreUpdate(ctx, prev, rec, fields)
		if err != nil {
			return "", err
		}
	}

	if m, ok := any(rec).(models.Record); ok {
		m.SetID(id)
	}
	columns := append(s.columnsFor(fields), extraColumns...)
	if len(columns) == 0 {
		return "", apperr.New(apperr.KindValidation, "no updatable fields supplied")
	}

	if err := s.repo.Update(ctx, rec, columns); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.New(apperr.KindNotFound, "%s not found", s.desc.Singular)
		}
		return "", s.internal(err, "update %s", s.desc.Singular)
	}
	telemetry.MutationsTotal.WithLabelValues(s.desc.Table, "update").Inc()

	next, err := s.repo.Get(ctx, id, nil)
	if err != nil {
		next = rec // audit the submitted record if the re-read fails
	}

	s.audits.Record(ctx, audit.Entry{
		Table:  s.desc.Table,
		User:   principal,
		Action: models.AuditActionUpdate,
		Prev:   s.snapshot(prev),
		Next:   s.snapshot(next),
	})

	if s.desc.PostUpdate != nil {
		s.desc.PostUpdate(ctx, prev, rec, fields)
	}

	return fmt.Sprintf("%s updated successfully", s.desc.Singular), nil
}

// Delete removes a record and audits the deleted snapshot.
func (s *Service[T]) Delete(ctx context.Context, id string) (string, error) {
	principal, err := s.policy.Check(ctx, s.desc.Table, "delete")
	if err != nil {
		return "", err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.New(apperr.KindNotFound, "%s not found", s.desc.Singular)
		}
		return "", s.internal(err, "delete %s", s.desc.Singular)
	}
	telemetry.MutationsTotal.WithLabelValues(s.desc.Table, "delete").Inc()

	s.audits.Record(ctx, audit.Entry{
		Table:  s.desc.Table,
		User:   principal,
		Action: models.AuditActionDelete,
		Prev:   "",
		Next:   s.snapshot(deleted),
	})

	return fmt.Sprintf("%s deleted successfully", s.desc.Singular), nil
}

// FormObject introspects the entity's shape into ordered field descriptors
// and applies the entity's decorations.
func (s *Service[T]) FormObject(ctx context.Context) ([]forms.Field, error) {
	if _, err := s.policy.Check(ctx, s.desc.Table, "read"); err != nil {
		return nil, err
	}

	fields := forms.Introspect(new(T))
	for i := range fields {
		decorate, ok := s.desc.Decorate[fields[i].Field]
		if !ok {
			continue
		}
		value, err := decorate(ctx)
		if err != nil {
			return nil, s.internal(err, "decorate %s form", s.desc.Singular)
		}
		fields[i].Value = value
	}
	return fields, nil
}

// snapshot applies the entity's audit sanitizer, if any.
func (s *Service[T]) snapshot(rec *T) any {
	if s.desc.AuditSnapshot != nil {
		return s.desc.AuditSnapshot(rec)
	}
	return rec
}

// columnsFor translates JSON field names into database columns, dropping
// fields without a backing column.
func (s *Service[T]) columnsFor(fields []string) []string {
	var columns []string
	for _, f := range fields {
		if col, ok := s.columns[f]; ok {
			columns = append(columns, col)
		}
	}
	return columns
}

// internal logs the cause and returns an opaque internal error; storage
// details never leak into the {error} envelope.
func (s *Service[T]) internal(err error, format string, args ...any) error {
	op := fmt.Sprintf(format, args...)
	log.Printf("record: %s: %v", op, err)
	return apperr.Wrap(apperr.KindInternal, err, "could not %s", op)
}

// mergeIncludes deduplicates the baseline and caller-supplied relations.
func mergeIncludes(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var merged []string
	for _, rel := range append(append([]string(nil), base...), extra...) {
		if rel == "" || seen[rel] {
			continue
		}
		seen[rel] = true
		merged = append(merged, rel)
	}
	return merged
}
