// Package models defines the Bun models persisted by the ratings backend.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Record is implemented by every persisted entity so the generic repository
// and service layers can manage IDs without knowing the concrete type.
type Record interface {
	GetID() string
	SetID(id string)
}

// StringList stores a JSON-encoded list of strings (document URLs, report
// URLs). JSON keeps the column portable between PostgreSQL and SQLite.
type StringList []string

// Scan implements sql.Scanner for reading from database
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan StringList: expected []byte or string, got %T", value)
	}
	if len(bytes) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer for writing to database
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// All lists every model in dependency order for schema bootstrap.
func All() []any {
	return []any{
		(*Industry)(nil),
		(*Client)(nil),
		(*Contact)(nil),
		(*Methodology)(nil),
		(*Questionnaire)(nil),
		(*Rating)(nil),
		(*AuditRecord)(nil),
	}
}
