package migrate

import (
	"fmt"
	"time"
)

// ConfigError : the job is invalid, nothing was started
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "invalid configuration : " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// ConnectionError : the source could not be opened or listed, the run was aborted
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "source connection : " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// TableReadError : rows of one table could not be read
type TableReadError struct {
	Table string
	Err   error
}

func (e *TableReadError) Error() string {
	return fmt.Sprintf("read %s : %v", e.Table, e.Err)
}
func (e *TableReadError) Unwrap() error { return e.Err }

// TransformError : the transform hook failed or panicked for one table
type TransformError struct {
	Table string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s : %v", e.Table, e.Err)
}
func (e *TransformError) Unwrap() error { return e.Err }

// ImportError : the bulk loader rejected one table, Output holds its diagnostics
type ImportError struct {
	Table  string
	Output []byte
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s : %v", e.Table, e.Err)
}
func (e *ImportError) Unwrap() error { return e.Err }

// ArtifactError : the intermediate file of one table could not be written
type ArtifactError struct {
	Table string
	Err   error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s : %v", e.Table, e.Err)
}
func (e *ArtifactError) Unwrap() error { return e.Err }

// TimeoutError : one table's pipeline ran past table_timeout
type TimeoutError struct {
	Table string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s : %v", e.Table, e.After, e.Err)
}
func (e *TimeoutError) Unwrap() error { return e.Err }
