package schema

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ColumnType is the semantic type of a column.
type ColumnType string

const (
	ColumnTypeInteger ColumnType = "integer"
	ColumnTypeString  ColumnType = "string"
)

// Column describes a single table column.
type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	Length     int        `json:"length,omitempty"` // max characters for string columns, 0 = unbounded
	PrimaryKey bool       `json:"primary_key,omitempty"`
	Identity   bool       `json:"identity,omitempty"` // value generated by the database when omitted on insert
}

// SQLType returns the PostgreSQL type used to declare the column.
func (c Column) SQLType() string {
	switch c.Type {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeString:
		if c.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "TEXT"
	default:
		return strings.ToUpper(string(c.Type))
	}
}

// definition renders the column clause of a CREATE TABLE statement.
func (c Column) definition() string {
	def := c.Name + " " + c.SQLType()
	if c.Identity {
		def += " GENERATED BY DEFAULT AS IDENTITY"
	}
	return def
}

// Table is an immutable table descriptor.
type Table struct {
	name    string
	columns []Column
}

// NewTable builds a descriptor from an ordered column list. The slice is
// copied, so later changes by the caller do not leak into the descriptor.
func NewTable(name string, columns ...Column) Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return Table{name: name, columns: cols}
}

// Name returns the table name.
func (t Table) Name() string {
	return t.name
}

// Columns returns the columns in declaration order.
func (t Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	return lo.Map(t.columns, func(c Column, _ int) string { return c.Name })
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	return lo.Find(t.columns, func(c Column) bool { return c.Name == name })
}

// PrimaryKey returns the primary key columns in declaration order.
func (t Table) PrimaryKey() []Column {
	return lo.Filter(t.columns, func(c Column, _ int) bool { return c.PrimaryKey })
}

// MarshalJSON exposes the descriptor as {"name": ..., "columns": [...]}.
func (t Table) MarshalJSON() ([]byte, error) {
	return marshalTable(t)
}
