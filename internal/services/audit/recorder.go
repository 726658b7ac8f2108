// Package audit writes the append-only mutation trail.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/telemetry"
)

// SnapshotLimit caps each serialized before/after snapshot. Truncation is
// lossy by design: the trail is operational, not a replay log.
const SnapshotLimit = 10000

// Entry describes one mutation to record.
type Entry struct {
	Table  string
	User   *iam.Principal
	Action models.AuditAction
	Prev   any
	Next   any
}

// Recorder appends audit records after successful mutations.
type Recorder struct {
	repo repository.AuditRepository
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one audit record. It runs synchronously after the
// underlying mutation succeeds; a failed append is logged and counted but
// never unwinds the mutation (audit durability is best effort).
func (r *Recorder) Record(ctx context.Context, e Entry) {
	rec := &models.AuditRecord{
		User:     e.User.Serialize(),
		Table:    e.Table,
		Action:   e.Action,
		Message:  buildMessage(e.Table, e.Action),
		PrevDocs: serialize(e.Prev),
		NewDocs:  serialize(e.Next),
	}

	if err := r.repo.Append(ctx, rec); err != nil {
		telemetry.AuditFailuresTotal.Inc()
		log.Printf("audit: failed to record %s on %s: %v", e.Action, e.Table, err)
	}
}

// RecordLogin appends the login trail entry for an authenticated principal.
func (r *Recorder) RecordLogin(ctx context.Context, p *iam.Principal) {
	r.Record(ctx, Entry{Table: "contacts", User: p, Action: models.AuditActionLogin})
}

// buildMessage renders the human-readable trail message.
func buildMessage(table string, action models.AuditAction) string {
	if action == models.AuditActionLogin {
		return "User logged in"
	}
	return fmt.Sprintf("%s table was %sd", table, action)
}

// serialize renders a snapshot as truncated JSON. Strings pass through
// unserialized so an empty prev snapshot stays empty.
func serialize(doc any) string {
	if doc == nil {
		return ""
	}
	if s, ok := doc.(string); ok {
		return truncate(s)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return truncate(fmt.Sprintf("%+v", doc))
	}
	return truncate(string(data))
}

func truncate(s string) string {
	if len(s) <= SnapshotLimit {
		return s
	}
	// Back up to a rune boundary so the stored snapshot stays valid UTF-8.
	cut := SnapshotLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
