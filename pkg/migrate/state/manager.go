package state

import "time"

type RunLogState string

// table pipeline states
const (
	Pending      RunLogState = "PENDING"
	Reading      RunLogState = "READING"
	Transforming RunLogState = "TRANSFORMING"
	Importing    RunLogState = "IMPORTING"
	Success      RunLogState = "SUCCESS"
	Failed       RunLogState = "FAILED"
)

// run states
const (
	Idle        RunLogState = "IDLE"
	Discovering RunLogState = "DISCOVERING"
	Running     RunLogState = "RUNNING"
	Completed   RunLogState = "COMPLETED"
)

// Terminal : true once a table can no longer change state
func (s RunLogState) Terminal() bool {
	return s == Success || s == Failed
}

// InFlight : true while a table is holding a worker slot
func (s RunLogState) InFlight() bool {
	return s == Reading || s == Transforming || s == Importing
}

type Base struct {
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

type RunLog struct {
	RunID                 string      `json:"run_id" yaml:"run_id"`
	TotalTablesForThisRun int         `json:"total_tables_for_run" yaml:"total_tables_for_run"`
	TablesPassed          int         `json:"tables_passed" yaml:"tables_passed"`
	TablesFailed          int         `json:"tables_failed" yaml:"tables_failed"`
	Status                RunLogState `json:"status" yaml:"status"`
	Base
}

type TableRunLog struct {
	ParentRunID string `json:"parent_run_id" yaml:"parent_run_id"`
	// Index : submission position, tells repeated table names apart
	Index      int         `json:"index" yaml:"index"`
	DBName     string      `json:"db_name" yaml:"db_name"`
	TableName  string      `json:"table_name" yaml:"table_name"`
	RowWritten int         `json:"rows_written_target" yaml:"rows_written_target"`
	Status     RunLogState `json:"status" yaml:"status"`
	ErrMsg     string      `json:"err_msg,omitempty" yaml:"err_msg,omitempty"`
	Base
}

// TableRef : one submitted table
type TableRef struct {
	Index  int
	DBName string
	Table  string
}

// Manager : receives progress events of a migration run.
// Table events may arrive concurrently from different workers.
type Manager interface {
	InitRunLog(runID string)
	DiscoveredTables(runID string, tables []string)
	TableStateChanged(runID string, ref TableRef, s RunLogState)
	PassedTableRun(runID string, ref TableRef, rowsWritten int)
	FailedTableRun(runID string, ref TableRef, err error)
	EndRunLog(runID string, passed int, failed int)
}
