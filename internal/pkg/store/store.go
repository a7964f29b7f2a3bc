package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// This type of hook separates from the regular PostSave hook since it has side effects
type AfterSaveCommitHook func()

// Hooks for database operations
type Hooks struct {
	PreSave         []func(ctx context.Context, tx *sqlx.Tx, data DTO, isNew bool) error
	PostSave        []func(ctx context.Context, tx *sqlx.Tx, data DTO, model any, isNew bool) error
	PreDelete       []func(ctx context.Context, tx *sqlx.Tx, id int) error
	PostDelete      []func(ctx context.Context, tx *sqlx.Tx, id int) error
	AfterSaveCommit []func(ctx context.Context, data DTO, model any, isNew bool) AfterSaveCommitHook
}

type Datastorer[T any] interface {
	Create(ctx context.Context, data DTO) (any, error)
	Update(ctx context.Context, id int, data DTO) (any, error)
	// Hard delete. Users only ever soft delete; this is for admin and test paths.
	Delete(ctx context.Context, id int) error
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)

	// WARN: BulkUpdate does not run hooks.
	BulkUpdate(ctx context.Context, query string, args ...any) error
	// Set hooks.
	SetHooks(hooks Hooks)

	// useful for complex operations wherein store interface does not supported.
	Base() *sqlx.DB
}

func pgArrayType(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return "text[]"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer[]"
	case reflect.Float32, reflect.Float64:
		return "float[]"
	case reflect.Bool:
		return "boolean[]"
	default:
		return "text[]"
	}
}

// isArrayField tells plain slices (stored as postgres arrays) apart from
// slice types that serialize themselves, such as json.RawMessage or models.Images.
func isArrayField(field reflect.StructField) bool {
	if field.Type.Kind() != reflect.Slice {
		return false
	}
	if field.Type.Elem().Kind() == reflect.Uint8 {
		return false
	}
	return field.Type.Name() == ""
}

func getStructFieldNamesFromInstance(instance any) []string {
	typ := reflect.TypeOf(instance)
	if typ.Kind() == reflect.Ptr { // Handle pointer types
		typ = typ.Elem()
	}

	var fields []string

	for i := range typ.NumField() {
		field := typ.Field(i)
		dbTag := field.Tag.Get("db")

		if dbTag != "" && dbTag != "-" {
			fields = append(fields, dbTag)
		}
	}

	return fields
}

// getStructFieldsFromDTO extracts field names and placeholders from a DTO struct
func getStructFieldsFromDTO(dto DTO) (columns string, placeholders string) {
	t := reflect.TypeOf(dto)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var columnNames []string
	var placeholderNames []string

	for i := range t.NumField() {
		field := t.Field(i)

		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		columnNames = append(columnNames, dbTag)

		if isArrayField(field) {
			placeholderNames = append(placeholderNames, fmt.Sprintf("CAST(:%s AS %s)", dbTag, pgArrayType(field.Type.Elem().Kind())))
		} else {
			placeholderNames = append(placeholderNames, ":"+dbTag)
		}
	}

	return strings.Join(columnNames, ", "), strings.Join(placeholderNames, ", ")
}

// getNonEmptyFieldsFromDTO builds the SET clause of an update. Nil pointers and
// empty strings are left untouched, so update DTOs use pointers for optional columns.
func getNonEmptyFieldsFromDTO(dto DTO, params map[string]any) string {
	v := reflect.ValueOf(dto)
	t := reflect.TypeOf(dto)

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
		t = t.Elem()
	}

	var fields []string

	for i := range v.NumField() {
		field := t.Field(i)
		value := v.Field(i)

		if field.Tag.Get("db") == "-" {
			continue
		}

		columnName := field.Tag.Get("db")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}

		if value.Kind() == reflect.Ptr && value.IsNil() || value.Kind() == reflect.String && value.String() == "" {
			continue
		}

		if isArrayField(field) {
			fields = append(fields, fmt.Sprintf("%s = CAST(:%s AS %s)", columnName, columnName, pgArrayType(field.Type.Elem().Kind())))
		} else {
			fields = append(fields, fmt.Sprintf("%s = :%s", columnName, columnName))
		}
		params[columnName] = value.Interface()
	}

	return strings.Join(fields, ", ")
}
