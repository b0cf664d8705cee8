package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baderkha/sql2doc/pkg/migrate/config"
	"github.com/baderkha/sql2doc/pkg/migrate/importer"
	"github.com/baderkha/sql2doc/pkg/migrate/state"
	"github.com/baderkha/sql2doc/pkg/migrate/table"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source : an open relational connection, shared by every worker
type Source interface {
	table.Lister
	table.Reader
	Close() error
}

// OpenFunc : opens the source at the start of a run
type OpenFunc func(ctx context.Context) (Source, error)

// Importer : imports one table into the destination
type Importer interface {
	Import(ctx context.Context, req importer.Request) error
}

// Options : knobs of one engine run
type Options struct {
	Workers int
	// Tables : nil means list every table of the source. repeated names are
	// migrated once per occurrence, each with its own Outcome.
	Tables       []string
	TableTimeout time.Duration
	// Database : destination database before overrides
	Database  string
	Force     bool
	Transform config.TransformFunc
	RunID     string
}

// Engine : fans tables out over a bounded pool, one failing table never stops the others
type Engine struct {
	open     OpenFunc
	importer Importer
	manager  state.Manager
	log      zerolog.Logger
}

func NewEngine(open OpenFunc, imp Importer, manager state.Manager, log zerolog.Logger) *Engine {
	return &Engine{open: open, importer: imp, manager: manager, log: log}
}

func newRunID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// Run : only configuration and source connection problems return an error,
// table failures are reported in the RunReport
func (e *Engine) Run(ctx context.Context, opts Options) (*RunReport, error) {
	if opts.Workers <= 0 {
		return nil, &ConfigError{Err: fmt.Errorf("workers must be positive, got %d", opts.Workers)}
	}
	if opts.TableTimeout < 0 {
		return nil, &ConfigError{Err: fmt.Errorf("table timeout must not be negative, got %s", opts.TableTimeout)}
	}
	runID := opts.RunID
	if runID == "" {
		runID = newRunID()
	}

	src, err := e.open(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	report := &RunReport{RunID: runID, StartedAt: time.Now()}
	e.manager.InitRunLog(runID)

	tables := opts.Tables
	if tables == nil {
		tables, err = src.List(ctx)
		if err != nil {
			e.closeSource(src)
			return nil, &ConnectionError{Err: err}
		}
	}
	e.manager.DiscoveredTables(runID, tables)

	report.Outcomes = make([]Outcome, len(tables))
	locks := newTargetLocks()
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, name := range tables {
		i, name := i, name
		// blocks while every worker is busy so tables start in list order
		g.Go(func() error {
			report.Outcomes[i] = e.migrateTable(ctx, runID, src, locks, i, name, opts)
			return nil
		})
	}
	_ = g.Wait()

	e.closeSource(src)
	report.EndedAt = time.Now()
	e.manager.EndRunLog(runID, len(report.Succeeded()), len(report.Failed()))
	return report, nil
}

func (e *Engine) closeSource(src Source) {
	if err := src.Close(); err != nil {
		e.log.Warn().Err(err).Msg("could not close source connection")
	}
}

func (e *Engine) migrateTable(ctx context.Context, runID string, src Source, locks *targetLocks, idx int, name string, opts Options) (out Outcome) {
	start := time.Now()
	ref := state.TableRef{Index: idx, DBName: opts.Database, Table: name}
	out = Outcome{Index: idx, Table: name, Database: opts.Database, DestinationTable: name}

	if opts.TableTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TableTimeout)
		defer cancel()
	}

	fail := func(err error) Outcome {
		if opts.TableTimeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Table: name, After: opts.TableTimeout, Err: err}
		}
		out.Status = state.Failed
		out.Err = err
		out.Error = err.Error()
		out.Duration = time.Since(start)
		e.manager.FailedTableRun(runID, ref, err)
		return out
	}

	stage := state.Reading
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("table", name).Str("state", string(stage)).Interface("panic", r).Msg("table pipeline panicked")
			out = fail(stageError(stage, name, fmt.Errorf("panicked : %v", r)))
		}
	}()

	e.manager.TableStateChanged(runID, ref, stage)
	rows, err := src.Read(ctx, name)
	if err != nil {
		return fail(&TableReadError{Table: name, Err: err})
	}

	req := importer.Request{
		Table:            name,
		Database:         opts.Database,
		DestinationTable: name,
		Force:            opts.Force,
		Rows:             rows,
	}
	if opts.Transform != nil {
		stage = state.Transforming
		e.manager.TableStateChanged(runID, ref, stage)
		ov, err := opts.Transform(name, rows)
		if err != nil {
			return fail(&TransformError{Table: name, Err: err})
		}
		req = applyOverrides(req, ov)
		if req.Database == "" || req.DestinationTable == "" {
			return fail(&TransformError{Table: name, Err: fmt.Errorf("overrides left destination %q empty", req.Target())})
		}
		out.Database, out.DestinationTable = req.Database, req.DestinationTable
		ref.DBName = req.Database
	}

	stage = state.Importing
	e.manager.TableStateChanged(runID, ref, stage)
	if err := e.importExclusive(ctx, locks, req); err != nil {
		return fail(classifyImportErr(name, err))
	}

	out.Status = state.Success
	out.Rows = len(req.Rows)
	out.Duration = time.Since(start)
	e.manager.PassedTableRun(runID, ref, out.Rows)
	return out
}

// importExclusive : imports while holding the destination's lock
func (e *Engine) importExclusive(ctx context.Context, locks *targetLocks, req importer.Request) error {
	release, err := locks.acquire(ctx, req.Target())
	if err != nil {
		return err
	}
	defer release()
	return e.importer.Import(ctx, req)
}

// targetLocks : at most one import per destination table at a time.
// repeated tables and transforms that merge tables both map several
// pipelines onto one destination.
type targetLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newTargetLocks() *targetLocks {
	return &targetLocks{slots: make(map[string]chan struct{})}
}

func (t *targetLocks) acquire(ctx context.Context, target string) (func(), error) {
	t.mu.Lock()
	slot, ok := t.slots[target]
	if !ok {
		slot = make(chan struct{}, 1)
		t.slots[target] = slot
	}
	t.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s : %w", target, ctx.Err())
	}
}

func stageError(stage state.RunLogState, name string, err error) error {
	switch stage {
	case state.Transforming:
		return &TransformError{Table: name, Err: err}
	case state.Importing:
		return &ImportError{Table: name, Err: err}
	}
	return &TableReadError{Table: name, Err: err}
}

// applyOverrides : configured values first, non nil override fields win
func applyOverrides(req importer.Request, ov *config.Overrides) importer.Request {
	if ov == nil {
		return req
	}
	if ov.Database != nil {
		req.Database = *ov.Database
	}
	if ov.Table != nil {
		req.DestinationTable = *ov.Table
	}
	if ov.Force != nil {
		req.Force = *ov.Force
	}
	if ov.Rows != nil {
		req.Rows = ov.Rows
	}
	return req
}

func classifyImportErr(name string, err error) error {
	if errors.Is(err, importer.ErrArtifact) {
		return &ArtifactError{Table: name, Err: err}
	}
	ie := &ImportError{Table: name, Err: err}
	var exitErr *importer.ExitError
	if errors.As(err, &exitErr) {
		ie.Output = exitErr.Output
	}
	return ie
}
