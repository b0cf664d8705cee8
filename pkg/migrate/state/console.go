package state

import (
	"github.com/rs/zerolog"
)

// ConsoleManager : prints one line per run milestone and per finished table
type ConsoleManager struct {
	log zerolog.Logger
}

func NewConsoleManager(log zerolog.Logger) *ConsoleManager {
	return &ConsoleManager{log: log}
}

func (c *ConsoleManager) InitRunLog(runID string) {
	c.log.Info().Str("run_id", runID).Msg("Migration start.")
}

func (c *ConsoleManager) DiscoveredTables(runID string, tables []string) {
	c.log.Info().Str("run_id", runID).Int("tables", len(tables)).Msgf("%d tables are selected.", len(tables))
}

func (c *ConsoleManager) TableStateChanged(runID string, ref TableRef, s RunLogState) {
	c.log.Debug().Str("run_id", runID).Int("index", ref.Index).Str("table", ref.Table).Str("state", string(s)).Msg("table state changed")
}

func (c *ConsoleManager) PassedTableRun(runID string, ref TableRef, rowsWritten int) {
	c.log.Info().Str("run_id", runID).Int("rows", rowsWritten).Msgf("[Migrated] %s.%s", ref.DBName, ref.Table)
}

func (c *ConsoleManager) FailedTableRun(runID string, ref TableRef, err error) {
	c.log.Error().Str("run_id", runID).Err(err).Msgf("[Error] %s.%s", ref.DBName, ref.Table)
}

func (c *ConsoleManager) EndRunLog(runID string, passed int, failed int) {
	ev := c.log.Info()
	if failed > 0 {
		ev = c.log.Warn()
	}
	ev.Str("run_id", runID).Int("succeeded", passed).Int("failed", failed).Msg("Migration end.")
}
