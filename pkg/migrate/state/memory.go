package state

import (
	"sort"
	"sync"
	"time"
)

// MemoryManager : keeps the run and table logs in memory so callers can
// query progress while the run is going
type MemoryManager struct {
	mu          sync.Mutex
	runs        map[string]*RunLog
	order       []string
	tables      map[string]map[int]*TableRunLog
	inFlight    int
	maxInFlight int
	now         func() time.Time
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		runs:   make(map[string]*RunLog),
		tables: make(map[string]map[int]*TableRunLog),
		now:    time.Now,
	}
}

func (m *MemoryManager) InitRunLog(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.runs[runID] = &RunLog{RunID: runID, Status: Discovering, Base: Base{CreatedAt: now, UpdatedAt: now}}
	m.tables[runID] = make(map[int]*TableRunLog)
	m.order = append(m.order, runID)
}

func (m *MemoryManager) DiscoveredTables(runID string, tables []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return
	}
	run.TotalTablesForThisRun = len(tables)
	run.Status = Running
	run.UpdatedAt = m.now()
	for i, t := range tables {
		m.tables[runID][i] = &TableRunLog{
			ParentRunID: runID,
			Index:       i,
			TableName:   t,
			Status:      Pending,
			Base:        Base{CreatedAt: run.UpdatedAt, UpdatedAt: run.UpdatedAt},
		}
	}
}

func (m *MemoryManager) TableStateChanged(runID string, ref TableRef, s RunLogState) {
	m.update(runID, ref, s, 0, nil)
}

func (m *MemoryManager) PassedTableRun(runID string, ref TableRef, rowsWritten int) {
	m.update(runID, ref, Success, rowsWritten, nil)
}

func (m *MemoryManager) FailedTableRun(runID string, ref TableRef, err error) {
	m.update(runID, ref, Failed, 0, err)
}

func (m *MemoryManager) update(runID string, ref TableRef, s RunLogState, rows int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs, ok := m.tables[runID]
	if !ok {
		return
	}
	tl, ok := logs[ref.Index]
	if !ok {
		tl = &TableRunLog{ParentRunID: runID, Index: ref.Index, TableName: ref.Table, Status: Pending, Base: Base{CreatedAt: m.now()}}
		logs[ref.Index] = tl
	}
	wasInFlight := tl.Status.InFlight()
	tl.DBName = ref.DBName
	tl.Status = s
	tl.UpdatedAt = m.now()
	if s == Success {
		tl.RowWritten = rows
	}
	if err != nil {
		tl.ErrMsg = err.Error()
	}
	switch {
	case !wasInFlight && s.InFlight():
		m.inFlight++
		if m.inFlight > m.maxInFlight {
			m.maxInFlight = m.inFlight
		}
	case wasInFlight && !s.InFlight():
		m.inFlight--
	}
}

func (m *MemoryManager) EndRunLog(runID string, passed int, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[runID]; ok {
		run.Status = Completed
		run.TablesPassed = passed
		run.TablesFailed = failed
		run.UpdatedAt = m.now()
	}
}

// GetLastRun : most recently started run, nil when nothing ran yet
func (m *MemoryManager) GetLastRun() *RunLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return nil
	}
	run := *m.runs[m.order[len(m.order)-1]]
	return &run
}

func (m *MemoryManager) GetRunLog(runID string) *RunLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil
	}
	cp := *run
	return &cp
}

// GetTableRunLogs : table logs of a run in submission order
func (m *MemoryManager) GetTableRunLogs(runID string) []*TableRunLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*TableRunLog, 0, len(m.tables[runID]))
	for _, tl := range m.tables[runID] {
		cp := *tl
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Index < res[j].Index })
	return res
}

func (m *MemoryManager) DidTableFailForRun(runID string) bool {
	for _, tl := range m.GetTableRunLogs(runID) {
		if tl.Status == Failed {
			return true
		}
	}
	return false
}

// MaxInFlight : highest number of tables seen between Reading and a terminal state at once
func (m *MemoryManager) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}
