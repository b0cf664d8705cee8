package table

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/baderkha/sql2doc/pkg/migrate/table/colmap"
)

// SQLReader : reads a table with SELECT * and converts each value to its document form
type SQLReader struct {
	source  *sql.DB
	quote   func(name string) string
	mapping colmap.Type
}

func NewReaderMysql(db *sql.DB) *SQLReader {
	return &SQLReader{source: db, quote: WrapQ, mapping: colmap.MysqlToDocument}
}

func NewReaderPostgres(db *sql.DB, schema string) *SQLReader {
	return &SQLReader{
		source: db,
		quote: func(name string) string {
			if schema == "" {
				return WrapDQ(name)
			}
			return WrapDQ(schema) + "." + WrapDQ(name)
		},
		mapping: colmap.PostgresToDocument,
	}
}

// WrapQ : mysql identifier quoting
func WrapQ(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// WrapDQ : ansi identifier quoting
func WrapDQ(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (r *SQLReader) Read(ctx context.Context, name string) (RowSet, error) {
	rows, err := r.source.QueryContext(ctx, `SELECT * FROM `+r.quote(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("could not get column types : %w", err)
	}

	res := RowSet{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("could not scan row %d : %w", len(res)+1, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			v, err := colmap.Convert(r.mapping, col.DatabaseTypeName(), vals[i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %s : %w", len(res)+1, col.Name(), err)
			}
			row[col.Name()] = v
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
