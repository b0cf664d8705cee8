package table

import (
	"context"
	"database/sql"
	"fmt"
)

// NewListerMysql : lists tables of the database the connection points at
func NewListerMysql(db *sql.DB) Lister {
	return &ListerMYSQL{source: db}
}

type ListerMYSQL struct {
	source *sql.DB
}

func (m *ListerMYSQL) List(ctx context.Context) ([]string, error) {
	rows, err := m.source.QueryContext(ctx, `SHOW TABLES`)
	if err != nil {
		return nil, fmt.Errorf("MYSQL_SOURCE : could not list tables due to : %w", err)
	}
	defer rows.Close()
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	res := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}
