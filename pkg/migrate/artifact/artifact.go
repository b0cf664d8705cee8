// package artifact
//
// writes a table's rows to a temporary json file that an external bulk
// loader can consume, and removes it again afterwards
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/baderkha/sql2doc/pkg/migrate/table"
	"github.com/gofrs/uuid"
	"github.com/spf13/afero"
)

// Handle : identifies one materialized table
type Handle struct {
	Table string
	Path  string
	Rows  int
	Bytes int64
}

// Materializer : owns the artifact directory of one run
type Materializer struct {
	fs  afero.Fs
	dir string
}

func NewMaterializer(fs afero.Fs, dir string) *Materializer {
	return &Materializer{fs: fs, dir: dir}
}

func (m *Materializer) Dir() string {
	return m.dir
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Materialize : writes rows as a json array to a new uniquely named file
func (m *Materializer) Materialize(tableName string, rows table.RowSet) (Handle, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return Handle{}, err
	}
	if err := m.fs.MkdirAll(m.dir, 0755); err != nil {
		return Handle{}, fmt.Errorf("could not create artifact dir %s : %w", m.dir, err)
	}
	h := Handle{
		Table: tableName,
		Path:  filepath.Join(m.dir, fmt.Sprintf("%s_%s.json", unsafeFileChars.ReplaceAllString(tableName, "_"), uid.String())),
		Rows:  len(rows),
	}
	f, err := m.fs.OpenFile(h.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return Handle{}, fmt.Errorf("could not create artifact for %s : %w", tableName, err)
	}

	if rows == nil {
		rows = table.RowSet{}
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		f.Close()
		_ = m.Release(h)
		return Handle{}, fmt.Errorf("could not encode rows of %s : %w", tableName, err)
	}
	if err := f.Close(); err != nil {
		_ = m.Release(h)
		return Handle{}, fmt.Errorf("could not flush artifact for %s : %w", tableName, err)
	}
	if info, err := m.fs.Stat(h.Path); err == nil {
		h.Bytes = info.Size()
	}
	return h, nil
}

// Open : read access to an artifact for in process loaders
func (m *Materializer) Open(h Handle) (afero.File, error) {
	return m.fs.Open(h.Path)
}

// Release : deletes the artifact, a file that is already gone is not an error
func (m *Materializer) Release(h Handle) error {
	err := m.fs.Remove(h.Path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("could not remove artifact %s : %w", h.Path, err)
}

// Cleanup : removes the run directory once every artifact is released
func (m *Materializer) Cleanup() error {
	err := m.fs.Remove(m.dir)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
