package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AuditAction is the kind of mutation an audit record captures.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
)

// AuditRecord is one immutable entry in the append-only audit trail.
// PrevDocs and NewDocs hold serialized snapshots truncated to 10000
// characters each; truncation is lossy by design, the trail is operational,
// not a replay log.
type AuditRecord struct {
	bun.BaseModel `bun:"table:audit_records,alias:au"`

	ID        string      `bun:"id,pk" json:"id"`
	User      string      `bun:"actor,notnull" json:"user"` // serialized principal
	Table     string      `bun:"table_name,notnull" json:"table"`
	Action    AuditAction `bun:"action,notnull" json:"action"`
	Message   string      `bun:"message,notnull" json:"message"`
	PrevDocs  string      `bun:"prev_docs,type:text" json:"prevDocs"`
	NewDocs   string      `bun:"new_docs,type:text" json:"newDocs"`
	CreatedAt time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time   `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (a *AuditRecord) GetID() string   { return a.ID }
func (a *AuditRecord) SetID(id string) { a.ID = id }
