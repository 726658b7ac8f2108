package forms

import (
	"testing"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospect_Client(t *testing.T) {
	fields := Introspect((*models.Client)(nil))

	names := make([]string, len(fields))
	byName := make(map[string]Field)
	for i, f := range fields {
		names[i] = f.Field
		byName[f.Field] = f
	}

	// Declaration order is the contract.
	assert.Equal(t, []string{"name", "email", "phone", "address", "website", "password", "industry"}, names)

	assert.True(t, byName["name"].Required)
	assert.True(t, byName["industry"].Required)
	assert.False(t, byName["phone"].Required)
	assert.Equal(t, "email", byName["email"].Type)
	assert.Equal(t, "password", byName["password"].Type)
	assert.Equal(t, "text", byName["name"].Type)
}

func TestIntrospect_SkipsRelationsAndTimestamps(t *testing.T) {
	fields := Introspect((*models.Rating)(nil))

	for _, f := range fields {
		assert.NotEqual(t, "id", f.Field)
		assert.NotEqual(t, "createdAt", f.Field)
		assert.NotEqual(t, "clientDoc", f.Field)
	}
}

func TestIntrospect_FieldTypes(t *testing.T) {
	fields := Introspect((*models.Rating)(nil))
	byName := make(map[string]Field)
	for _, f := range fields {
		byName[f.Field] = f
	}

	assert.Equal(t, "number", byName["year"].Type)
	assert.Equal(t, "date", byName["issueDate"].Type)
	assert.Equal(t, "list", byName["reports"].Type)
}

func TestIntrospect_ContactCheckbox(t *testing.T) {
	fields := Introspect((*models.Contact)(nil))
	for _, f := range fields {
		if f.Field == "canLogin" {
			assert.Equal(t, "checkbox", f.Type)
			return
		}
	}
	t.Fatal("canLogin field not introspected")
}

func TestColumnMap(t *testing.T) {
	cols := ColumnMap((*models.Contact)(nil))

	require.Equal(t, "first_name", cols["firstName"])
	require.Equal(t, "can_login", cols["canLogin"])
	require.Equal(t, "client_id", cols["client"])

	// No backing column: plaintext password and relation docs.
	_, ok := cols["password"]
	assert.False(t, ok)
	_, ok = cols["clientDoc"]
	assert.False(t, ok)
}
