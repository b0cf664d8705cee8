// package sourcecfg
//
// connection parameters for the relational databases rows are read from
package sourcecfg

// Source : what the migrator needs to know to dial and read a relational source
type Source interface {
	// DriverName : database/sql driver name
	DriverName() string
	GetDSN() string
	Database() string
	// Schema : namespace tables are listed from, empty when the dialect has none
	Schema() string
	LogQueries() bool
	Validate() error
}

var (
	_ Source = MYSQL{}
	_ Source = Postgres{}
)
