package table

import (
	"database/sql"
	"fmt"
)

// Source : a relational connection that can both list and read tables.
// *sql.DB pools connections so one Source serves concurrent readers.
type Source struct {
	Lister
	Reader
	db *sql.DB
}

// NewSource : picks the dialect specific lister and reader for the driver
func NewSource(db *sql.DB, driverName string, schema string) (*Source, error) {
	switch driverName {
	case "mysql":
		return &Source{Lister: NewListerMysql(db), Reader: NewReaderMysql(db), db: db}, nil
	case "postgres":
		return &Source{Lister: NewListerPostgres(db, schema), Reader: NewReaderPostgres(db, schema), db: db}, nil
	}
	return nil, fmt.Errorf("unsupported source driver %s", driverName)
}

func (s *Source) Close() error {
	return s.db.Close()
}
