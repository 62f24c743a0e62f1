package datatable

import (
	"database/sql"
	"fmt"
	"time"
)

// Record is a row that can resolve a field by name.
type Record interface {
	Field(name string) any
}

type accessorKind int

const (
	keyAccessor accessorKind = iota
	derivedAccessor
)

// Accessor extracts the raw value of a column from a row.
// It is either a field key or a derived function, never both.
type Accessor[T Record] struct {
	kind   accessorKind
	key    string
	derive func(T) any
}

// Key returns an accessor that reads the named field.
func Key[T Record](name string) Accessor[T] {
	return Accessor[T]{kind: keyAccessor, key: name}
}

// Derived returns an accessor that computes its value from the row.
func Derived[T Record](fn func(T) any) Accessor[T] {
	return Accessor[T]{kind: derivedAccessor, derive: fn}
}

// Value resolves the accessor against item.
func (a Accessor[T]) Value(item T) any {
	switch a.kind {
	case derivedAccessor:
		if a.derive == nil {
			return nil
		}
		return a.derive(item)
	default:
		return item.Field(a.key)
	}
}

// FieldKey returns the field name for key accessors and "" for derived ones.
func (a Accessor[T]) FieldKey() string {
	if a.kind == keyAccessor {
		return a.key
	}
	return ""
}

// Column describes how one column of the table is resolved and displayed.
type Column[T Record] struct {
	Header   string
	Accessor Accessor[T]
	// Render, when set, replaces raw value formatting.
	Render func(T) string
}

// CellKind tells renderers how a cell was produced.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellYes
	CellNo
	CellRendered
)

// Cell is a formatted table cell.
type Cell struct {
	Text string
	Kind CellKind
}

// Cell resolves and formats the column for item.
func (c Column[T]) Cell(item T) Cell {
	if c.Render != nil {
		return Cell{Text: c.Render(item), Kind: CellRendered}
	}
	return FormatValue(c.Accessor.Value(item))
}

// FormatValue applies the raw formatting rules: nil is empty, booleans are
// Yes/No and everything else is converted to a string.
func FormatValue(v any) Cell {
	v = deref(v)
	switch val := v.(type) {
	case nil:
		return Cell{Kind: CellEmpty}
	case bool:
		if val {
			return Cell{Text: "Yes", Kind: CellYes}
		}
		return Cell{Text: "No", Kind: CellNo}
	case time.Time:
		if val.IsZero() {
			return Cell{Kind: CellEmpty}
		}
		return Cell{Text: val.Format(time.DateOnly), Kind: CellText}
	case []byte:
		return Cell{Text: string(val), Kind: CellText}
	case fmt.Stringer:
		return Cell{Text: val.String(), Kind: CellText}
	default:
		return Cell{Text: fmt.Sprint(val), Kind: CellText}
	}
}

// deref unwraps nil-able values so that absent data formats as empty.
func deref(v any) any {
	switch val := v.(type) {
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	case *float64:
		if val == nil {
			return nil
		}
		return *val
	case *bool:
		if val == nil {
			return nil
		}
		return *val
	case *time.Time:
		if val == nil {
			return nil
		}
		return *val
	case sql.NullString:
		if !val.Valid {
			return nil
		}
		return val.String
	case sql.NullInt64:
		if !val.Valid {
			return nil
		}
		return val.Int64
	case sql.NullFloat64:
		if !val.Valid {
			return nil
		}
		return val.Float64
	case sql.NullBool:
		if !val.Valid {
			return nil
		}
		return val.Bool
	case sql.NullTime:
		if !val.Valid {
			return nil
		}
		return val.Time
	}
	return v
}
