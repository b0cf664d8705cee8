package state

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManagerLifecycle(t *testing.T) {
	m := NewMemoryManager()
	assert.Nil(t, m.GetLastRun())

	m.InitRunLog("run-1")
	assert.Equal(t, Discovering, m.GetRunLog("run-1").Status)

	m.DiscoveredTables("run-1", []string{"users", "orders", "users"})
	run := m.GetRunLog("run-1")
	assert.Equal(t, Running, run.Status)
	assert.Equal(t, 3, run.TotalTablesForThisRun)

	users := TableRef{Index: 0, DBName: "docs", Table: "users"}
	orders := TableRef{Index: 1, DBName: "docs", Table: "orders"}
	usersAgain := TableRef{Index: 2, DBName: "docs", Table: "users"}

	m.TableStateChanged("run-1", users, Reading)
	m.TableStateChanged("run-1", orders, Reading)
	m.TableStateChanged("run-1", users, Importing)
	m.PassedTableRun("run-1", users, 10)
	m.FailedTableRun("run-1", orders, errors.New("boom"))
	m.TableStateChanged("run-1", usersAgain, Reading)
	m.PassedTableRun("run-1", usersAgain, 10)
	m.EndRunLog("run-1", 2, 1)

	logs := m.GetTableRunLogs("run-1")
	require.Len(t, logs, 3)
	assert.Equal(t, Success, logs[0].Status)
	assert.Equal(t, 10, logs[0].RowWritten)
	assert.Equal(t, Failed, logs[1].Status)
	assert.Equal(t, "boom", logs[1].ErrMsg)
	assert.Equal(t, Success, logs[2].Status)
	assert.True(t, m.DidTableFailForRun("run-1"))
	assert.Equal(t, 2, m.MaxInFlight())
	assert.Equal(t, Completed, m.GetLastRun().Status)
	assert.Nil(t, m.GetRunLog("unknown"))
}

func TestMemoryManagerConcurrentUpdates(t *testing.T) {
	m := NewMemoryManager()
	m.InitRunLog("run")
	names := make([]string, 50)
	for i := range names {
		names[i] = "t"
	}
	m.DiscoveredTables("run", names)

	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := TableRef{Index: i, Table: "t"}
			m.TableStateChanged("run", ref, Reading)
			m.PassedTableRun("run", ref, i)
		}(i)
	}
	wg.Wait()

	for _, tl := range m.GetTableRunLogs("run") {
		assert.Equal(t, Success, tl.Status)
	}
	assert.False(t, m.DidTableFailForRun("run"))
}

func TestConsoleManager(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleManager(zerolog.New(&buf))

	c.InitRunLog("r")
	c.DiscoveredTables("r", []string{"users", "orders"})
	c.PassedTableRun("r", TableRef{DBName: "docs", Table: "users"}, 3)
	c.FailedTableRun("r", TableRef{DBName: "docs", Table: "orders"}, errors.New("import failed"))
	c.EndRunLog("r", 1, 1)

	out := buf.String()
	assert.Contains(t, out, "Migration start.")
	assert.Contains(t, out, "2 tables are selected.")
	assert.Contains(t, out, "[Migrated] docs.users")
	assert.Contains(t, out, "[Error] docs.orders")
	assert.Contains(t, out, "import failed")
	assert.Contains(t, out, "Migration end.")
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewMemoryManager(), NewMemoryManager()
	m := Multi{a, b}

	m.InitRunLog("r")
	m.DiscoveredTables("r", []string{"users"})
	m.PassedTableRun("r", TableRef{Table: "users"}, 1)
	m.EndRunLog("r", 1, 0)

	for _, mg := range []*MemoryManager{a, b} {
		assert.Equal(t, Completed, mg.GetRunLog("r").Status)
		assert.Equal(t, Success, mg.GetTableRunLogs("r")[0].Status)
	}
}

func TestRunLogStatePredicates(t *testing.T) {
	assert.True(t, Success.Terminal())
	assert.True(t, Failed.Terminal())
	assert.False(t, Importing.Terminal())
	assert.True(t, Transforming.InFlight())
	assert.False(t, Pending.InFlight())
}
