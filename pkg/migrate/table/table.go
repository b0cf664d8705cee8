package table

import "context"

// Row : one record, column name -> value
type Row map[string]any

// RowSet : every row of one table in the order the source returned them
type RowSet []Row

// Lister : enumerates the tables available for migration
type Lister interface {
	// List : order is whatever the catalog yields
	List(ctx context.Context) ([]string, error)
}

// Reader : loads a whole table into memory
type Reader interface {
	Read(ctx context.Context, name string) (RowSet, error)
}
