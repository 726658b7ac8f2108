// Package forms turns entity models into ordered field descriptors for the
// external form-rendering layer. This is metadata generation only; the
// descriptor shape and the stable field ordering are the contract.
package forms

import (
	"reflect"
	"strings"
	"time"
)

// Field describes one form field.
type Field struct {
	Field    string `json:"field"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    any    `json:"value,omitempty"`
}

// Choice is an option in a decorated choice list.
type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var timeType = reflect.TypeOf(time.Time{})

// Introspect walks the model's struct fields in declaration order and
// returns a descriptor per user-editable field. Relation fields, identity
// and timestamp columns are skipped.
func Introspect(model any) []Field {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			continue // bun.BaseModel
		}

		name := jsonName(sf)
		if name == "" || name == "id" || name == "createdAt" || name == "updatedAt" {
			continue
		}
		if strings.Contains(sf.Tag.Get("bun"), "rel:") {
			continue
		}
		fields = append(fields, Field{
			Field:    name,
			Type:     fieldType(sf, name),
			Required: strings.Contains(sf.Tag.Get("form"), "required"),
		})
	}
	return fields
}

// ColumnMap maps JSON field names to database column names for the model.
// Used to translate the caller-supplied changed-field list into the column
// list handed to the repository. Fields without a backing column (bun:"-")
// are absent from the map.
func ColumnMap(model any) map[string]string {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cols := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		bunTag := sf.Tag.Get("bun")
		if bunTag == "" || bunTag == "-" || strings.Contains(bunTag, "rel:") {
			continue
		}
		col := strings.Split(bunTag, ",")[0]
		if col == "" {
			continue
		}
		cols[name] = col
	}
	return cols
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func fieldType(sf reflect.StructField, name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "password"):
		return "password"
	case strings.Contains(lower, "email"):
		return "email"
	}

	ft := sf.Type
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	switch {
	case ft == timeType:
		return "date"
	case ft.Kind() == reflect.Bool:
		return "checkbox"
	case ft.Kind() >= reflect.Int && ft.Kind() <= reflect.Float64:
		return "number"
	case ft.Kind() == reflect.Slice:
		return "list"
	default:
		return "text"
	}
}
