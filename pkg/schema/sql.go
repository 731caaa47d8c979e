package schema

import (
	"encoding/json"
	"strings"
)

// CreateSQL renders an idempotent CREATE TABLE statement for the table.
func (t Table) CreateSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(t.name)
	b.WriteString(" (\n")

	for i, c := range t.columns {
		b.WriteString("\t")
		b.WriteString(c.definition())
		if i < len(t.columns)-1 || len(t.PrimaryKey()) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	if pk := t.PrimaryKey(); len(pk) > 0 {
		names := make([]string, len(pk))
		for i, c := range pk {
			names[i] = c.Name
		}
		b.WriteString("\tPRIMARY KEY (")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(")\n")
	}

	b.WriteString(")")
	return b.String()
}

// SelectSQL renders a SELECT over every column in declaration order.
func (t Table) SelectSQL() string {
	return "SELECT " + strings.Join(t.ColumnNames(), ", ") + " FROM " + t.name
}

type tableJSON struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

func marshalTable(t Table) ([]byte, error) {
	return json.Marshal(tableJSON{Name: t.name, Columns: t.columns})
}
