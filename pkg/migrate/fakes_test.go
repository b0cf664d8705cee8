package migrate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baderkha/sql2doc/pkg/migrate/importer"
	"github.com/baderkha/sql2doc/pkg/migrate/table"
)

// gauge : tracks how many callers are inside a section at once
type gauge struct {
	cur atomic.Int64
	max atomic.Int64
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (g *gauge) leave() {
	g.cur.Add(-1)
}

type fakeSource struct {
	tables   []string
	rows     map[string]table.RowSet
	readErr  map[string]error
	hang     map[string]bool
	panics   map[string]bool
	listErr  error
	delay    time.Duration
	pipeline *gauge

	listCalls atomic.Int32
	closed    atomic.Bool
}

func newFakeSource(tables ...string) *fakeSource {
	rows := make(map[string]table.RowSet, len(tables))
	for _, t := range tables {
		rows[t] = table.RowSet{{"id": int64(1), "table": t}, {"id": int64(2), "table": t}}
	}
	return &fakeSource{
		tables:  tables,
		rows:    rows,
		readErr: map[string]error{},
		hang:    map[string]bool{},
		panics:  map[string]bool{},
	}
}

func (f *fakeSource) List(ctx context.Context) ([]string, error) {
	f.listCalls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.tables...), nil
}

func (f *fakeSource) Read(ctx context.Context, name string) (table.RowSet, error) {
	if f.pipeline != nil {
		f.pipeline.enter()
	}
	if f.panics[name] {
		panic("driver bug reading " + name)
	}
	if f.hang[name] {
		<-ctx.Done()
		if f.pipeline != nil {
			f.pipeline.leave()
		}
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.readErr[name]; err != nil {
		if f.pipeline != nil {
			f.pipeline.leave()
		}
		return nil, err
	}
	rows, ok := f.rows[name]
	if !ok {
		if f.pipeline != nil {
			f.pipeline.leave()
		}
		return nil, errors.New("table " + name + " doesn't exist")
	}
	return rows, nil
}

func (f *fakeSource) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeSource) opener() OpenFunc {
	return func(ctx context.Context) (Source, error) {
		return f, nil
	}
}

type fakeImporter struct {
	mu       sync.Mutex
	reqs     []importer.Request
	fail     map[string]error
	panics   map[string]bool
	delay    time.Duration
	pipeline *gauge
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{fail: map[string]error{}, panics: map[string]bool{}}
}

func (f *fakeImporter) Import(ctx context.Context, req importer.Request) error {
	if f.pipeline != nil {
		defer f.pipeline.leave()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	err := f.fail[req.Table]
	boom := f.panics[req.Table]
	f.mu.Unlock()
	if boom {
		panic("loader bug importing " + req.Table)
	}
	return err
}

// destinationGauge : records the most imports seen at once per destination
type destinationGauge struct {
	mu    sync.Mutex
	cur   map[string]int
	max   map[string]int
	delay time.Duration
	all   gauge
}

func newDestinationGauge(delay time.Duration) *destinationGauge {
	return &destinationGauge{cur: map[string]int{}, max: map[string]int{}, delay: delay}
}

func (d *destinationGauge) Import(ctx context.Context, req importer.Request) error {
	key := req.Target()
	d.mu.Lock()
	d.cur[key]++
	if d.cur[key] > d.max[key] {
		d.max[key] = d.cur[key]
	}
	d.mu.Unlock()
	d.all.enter()

	time.Sleep(d.delay)

	d.all.leave()
	d.mu.Lock()
	d.cur[key]--
	d.mu.Unlock()
	return nil
}

func (d *destinationGauge) maxFor(target string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.max[target]
}

func (f *fakeImporter) requests() map[string]importer.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make(map[string]importer.Request, len(f.reqs))
	for _, r := range f.reqs {
		res[r.Table] = r
	}
	return res
}

func (f *fakeImporter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}
