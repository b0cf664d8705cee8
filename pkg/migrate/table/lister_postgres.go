package table

import (
	"context"
	"database/sql"
	"fmt"
)

// NewListerPostgres : lists base tables of one schema
func NewListerPostgres(db *sql.DB, schema string) Lister {
	return &ListerPostgres{source: db, schema: schema}
}

type ListerPostgres struct {
	source *sql.DB
	schema string
}

func (p *ListerPostgres) List(ctx context.Context) ([]string, error) {
	rows, err := p.source.QueryContext(ctx, `
	select table_name
	from information_schema.tables
	where table_schema = $1
		and table_type = 'BASE TABLE'
	`, p.schema)
	if err != nil {
		return nil, fmt.Errorf("POSTGRES_SOURCE : could not list tables in schema %s due to : %w", p.schema, err)
	}
	defer rows.Close()
	return scanNames(rows)
}
