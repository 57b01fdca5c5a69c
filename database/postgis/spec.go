package postgis

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"

	"github.com/omniscale/osmwrangle/database"
	"github.com/omniscale/osmwrangle/element"
)

type TableSpec struct {
	Name   string
	Schema string
	Fields []string
}

func NewTableSpec(pg *PostGIS, t element.Table) *TableSpec {
	return &TableSpec{
		Name:   pg.Prefix + t.Name,
		Schema: pg.Schema,
		Fields: t.Fields,
	}
}

func columnType(field string) string {
	switch database.FieldType(field) {
	case database.BigInt:
		return "BIGINT"
	case database.Integer:
		return "INTEGER"
	case database.Float:
		return "DOUBLE PRECISION"
	case database.Timestamp:
		return "TIMESTAMP WITH TIME ZONE"
	}
	return "TEXT"
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		cols = append(cols, fmt.Sprintf("%s %s", pq.QuoteIdentifier(f), columnType(f)))
	}
	columnSQL := strings.Join(cols, ",\n            ")
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            %s
        );`,
		pq.QuoteIdentifier(spec.Schema),
		pq.QuoteIdentifier(spec.Name),
		columnSQL,
	)
}

func (spec *TableSpec) DropTableSQL() string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s.%s`,
		pq.QuoteIdentifier(spec.Schema),
		pq.QuoteIdentifier(spec.Name),
	)
}

func (spec *TableSpec) CopySQL() string {
	return pq.CopyInSchema(spec.Schema, spec.Name, spec.Fields...)
}

// IndexSQL returns the statement for the index on the element id.
func (spec *TableSpec) IndexSQL() string {
	return fmt.Sprintf(`CREATE INDEX %s ON %s.%s USING BTREE ("id")`,
		pq.QuoteIdentifier(spec.Name+"_id_idx"),
		pq.QuoteIdentifier(spec.Schema),
		pq.QuoteIdentifier(spec.Name),
	)
}
