// package importer
//
// hands one table's rows to a document database: materialize to a temp
// artifact, load it, release it
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
	"github.com/baderkha/sql2doc/pkg/migrate/table"
)

// ErrArtifact : marks failures writing the intermediate artifact
var ErrArtifact = errors.New("artifact")

// Request : everything needed to import one table
type Request struct {
	// Table : source table, names the artifact
	Table            string
	Database         string
	DestinationTable string
	Force            bool
	Rows             table.RowSet
}

// Target : <database>.<table> as the import tools spell it
func (r Request) Target() string {
	return r.Database + "." + r.DestinationTable
}

// Loader : pushes a materialized artifact into the destination
type Loader interface {
	Load(ctx context.Context, h artifact.Handle, req Request) error
}

// ExitError : an external import process failed, Output is its diagnostics verbatim
type ExitError struct {
	Command string
	Output  []byte
	Err     error
}

func (e *ExitError) Error() string {
	out := strings.TrimSpace(string(e.Output))
	if out == "" {
		return fmt.Sprintf("%s : %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s : %v : %s", e.Command, e.Err, out)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
