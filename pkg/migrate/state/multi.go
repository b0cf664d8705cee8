package state

// Multi : fans every event out to each manager in order
type Multi []Manager

func (m Multi) InitRunLog(runID string) {
	for _, mg := range m {
		mg.InitRunLog(runID)
	}
}

func (m Multi) DiscoveredTables(runID string, tables []string) {
	for _, mg := range m {
		mg.DiscoveredTables(runID, tables)
	}
}

func (m Multi) TableStateChanged(runID string, ref TableRef, s RunLogState) {
	for _, mg := range m {
		mg.TableStateChanged(runID, ref, s)
	}
}

func (m Multi) PassedTableRun(runID string, ref TableRef, rowsWritten int) {
	for _, mg := range m {
		mg.PassedTableRun(runID, ref, rowsWritten)
	}
}

func (m Multi) FailedTableRun(runID string, ref TableRef, err error) {
	for _, mg := range m {
		mg.FailedTableRun(runID, ref, err)
	}
}

func (m Multi) EndRunLog(runID string, passed int, failed int) {
	for _, mg := range m {
		mg.EndRunLog(runID, passed, failed)
	}
}

var (
	_ Manager = Multi{}
	_ Manager = (*MemoryManager)(nil)
	_ Manager = (*ConsoleManager)(nil)
)
