package config

import "github.com/baderkha/sql2doc/pkg/migrate/table"

// Overrides : per table import settings a transform may replace.
// nil fields keep the configured value.
type Overrides struct {
	Database *string
	Table    *string
	Force    *bool
	// Rows : replaces the rows handed to the importer when non nil
	Rows table.RowSet
}

// TransformFunc : runs once per table after its rows are read
type TransformFunc func(tableName string, rows table.RowSet) (*Overrides, error)

// String : helper for building Overrides literals
func String(s string) *string {
	return &s
}

// Bool : helper for building Overrides literals
func Bool(b bool) *bool {
	return &b
}
