package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT for every db-tagged field of model, in field
// order.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value, err := structValue(model)
	if err != nil {
		return "", nil, err
	}
	fields, err := dbFields(value.Type())
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.column)
		vals = append(vals, value.Field(f.index).Interface())
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// ModelColumns lists the db columns of model in field order. It is what
// InsertModel writes and what a row scan of the same model expects.
func ModelColumns(model any) ([]string, error) {
	value, err := structValue(model)
	if err != nil {
		return nil, err
	}
	fields, err := dbFields(value.Type())
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.column)
	}
	return cols, nil
}

// MustModelColumns is ModelColumns for package level table definitions.
func MustModelColumns(model any) []string {
	cols, err := ModelColumns(model)
	if err != nil {
		panic(err)
	}
	return cols
}

// Returning renders a RETURNING suffix for cols.
func Returning(cols ...string) string {
	if len(cols) == 0 {
		return ""
	}
	return "RETURNING " + strings.Join(cols, ", ")
}

type dbField struct {
	index  int
	column string
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct")
	}
	return value, nil
}

func dbFields(typ reflect.Type) ([]dbField, error) {
	fields := make([]dbField, 0, typ.NumField())
	seen := make(map[string]struct{}, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		if _, dup := seen[col]; dup {
			return nil, fmt.Errorf("model %s maps column %q twice", typ.Name(), col)
		}
		seen[col] = struct{}{}
		fields = append(fields, dbField{index: i, column: col})
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return fields, nil
}
