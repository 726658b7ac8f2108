package audit

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRepo struct {
	records []*models.AuditRecord
	fail    bool
}

func (c *captureRepo) Append(_ context.Context, rec *models.AuditRecord) error {
	if c.fail {
		return fmt.Errorf("append failed")
	}
	c.records = append(c.records, rec)
	return nil
}

func (c *captureRepo) List(context.Context, pagination.Request) (*pagination.Result[models.AuditRecord], error) {
	return nil, nil
}

var testPrincipal = &iam.Principal{ID: "u-1", Role: iam.RoleAdmin, Email: "admin@example.com"}

func TestRecorder_RecordSnapshots(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo)

	recorder.Record(context.Background(), Entry{
		Table:  "clients",
		User:   testPrincipal,
		Action: models.AuditActionUpdate,
		Prev:   map[string]string{"name": "Acme"},
		Next:   map[string]string{"name": "Acme Ltd"},
	})

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "clients", rec.Table)
	assert.Equal(t, models.AuditActionUpdate, rec.Action)
	assert.Equal(t, "clients table was updated", rec.Message)
	assert.JSONEq(t, `{"name":"Acme"}`, rec.PrevDocs)
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, rec.NewDocs)
	assert.Contains(t, rec.User, `"id":"u-1"`)
}

func TestRecorder_TruncatesOversizedSnapshots(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo)

	recorder.Record(context.Background(), Entry{
		Table:  "ratings",
		User:   testPrincipal,
		Action: models.AuditActionCreate,
		Next:   map[string]string{"blob": strings.Repeat("x", 3*SnapshotLimit)},
	})

	require.Len(t, repo.records, 1)
	assert.Len(t, repo.records[0].NewDocs, SnapshotLimit)
}

func TestRecorder_TruncationKeepsValidUTF8(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo)

	// The limit falls inside the first multi-byte rune, which must be
	// dropped whole rather than split.
	snapshot := strings.Repeat("x", SnapshotLimit-1) + "世界"
	recorder.Record(context.Background(), Entry{
		Table:  "ratings",
		User:   testPrincipal,
		Action: models.AuditActionCreate,
		Next:   snapshot,
	})

	require.Len(t, repo.records, 1)
	stored := repo.records[0].NewDocs
	assert.True(t, utf8.ValidString(stored))
	assert.LessOrEqual(t, len(stored), SnapshotLimit)
	assert.Equal(t, strings.Repeat("x", SnapshotLimit-1), stored)
}

func TestRecorder_EmptyPrevStaysEmpty(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo)

	recorder.Record(context.Background(), Entry{
		Table:  "clients",
		User:   testPrincipal,
		Action: models.AuditActionDelete,
		Prev:   "",
		Next:   map[string]string{"name": "Acme"},
	})

	require.Len(t, repo.records, 1)
	assert.Empty(t, repo.records[0].PrevDocs)
}

func TestRecorder_LoginMessage(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo)

	recorder.RecordLogin(context.Background(), testPrincipal)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "User logged in", repo.records[0].Message)
	assert.Equal(t, models.AuditActionLogin, repo.records[0].Action)
}

func TestRecorder_AppendFailureIsSwallowed(t *testing.T) {
	recorder := NewRecorder(&captureRepo{fail: true})

	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), Entry{
			Table:  "clients",
			User:   testPrincipal,
			Action: models.AuditActionCreate,
			Next:   map[string]string{"name": "Acme"},
		})
	})
}
