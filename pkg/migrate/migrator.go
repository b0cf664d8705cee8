package migrate

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/baderkha/sql2doc/pkg/conditional"
	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
	"github.com/baderkha/sql2doc/pkg/migrate/config"
	"github.com/baderkha/sql2doc/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/sql2doc/pkg/migrate/config/targetcfg"
	"github.com/baderkha/sql2doc/pkg/migrate/connection"
	"github.com/baderkha/sql2doc/pkg/migrate/importer"
	"github.com/baderkha/sql2doc/pkg/migrate/state"
	"github.com/baderkha/sql2doc/pkg/migrate/table"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Runner : runs migration between a source and a target
type Runner[S any, T any] interface {
	Run(ctx context.Context, cfg config.Config[S, T]) (*RunReport, error)
	Tables(ctx context.Context, cfg config.Config[S, T]) ([]string, error)
}

// LoaderFactory : builds the loader for a target, the returned func releases it
type LoaderFactory[T any] func(ctx context.Context, target T, runner importer.Runner, open importer.Opener, log zerolog.Logger) (importer.Loader, func(), error)

type settings struct {
	fs      afero.Fs
	log     zerolog.Logger
	manager state.Manager
	runner  importer.Runner
	s3      s3iface.S3API
	dial    func(ctx context.Context, src sourcecfg.Source, maxConc int, log zerolog.Logger) (Source, error)
}

// Option : overrides a migrator collaborator, mostly for tests
type Option func(*settings)

// WithFs : filesystem artifacts are written to
func WithFs(fs afero.Fs) Option {
	return func(s *settings) { s.fs = fs }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithManager : where progress events go, defaults to console lines on the logger
func WithManager(m state.Manager) Option {
	return func(s *settings) { s.manager = m }
}

// WithRunner : how import tools are executed
func WithRunner(r importer.Runner) Option {
	return func(s *settings) { s.runner = r }
}

// WithS3 : client used to archive artifacts
func WithS3(client s3iface.S3API) Option {
	return func(s *settings) { s.s3 = client }
}

// WithDialer : how the source connection is opened
func WithDialer(dial func(ctx context.Context, src sourcecfg.Source, maxConc int, log zerolog.Logger) (Source, error)) Option {
	return func(s *settings) { s.dial = dial }
}

// Migrator : wires config, source, artifact staging and a target loader into an Engine
type Migrator[S sourcecfg.Source, T targetcfg.Target] struct {
	settings
	newLoader LoaderFactory[T]
}

var _ Runner[sourcecfg.MYSQL, targetcfg.RethinkDB] = (*Migrator[sourcecfg.MYSQL, targetcfg.RethinkDB])(nil)

func newMigrator[S sourcecfg.Source, T targetcfg.Target](newLoader LoaderFactory[T], opts ...Option) *Migrator[S, T] {
	m := &Migrator[S, T]{
		settings: settings{
			fs:     afero.NewOsFs(),
			log:    zerolog.Nop(),
			runner: importer.ExecRunner{},
			dial:   DialSource,
		},
		newLoader: newLoader,
	}
	for _, o := range opts {
		o(&m.settings)
	}
	if m.manager == nil {
		m.manager = state.NewConsoleManager(m.log)
	}
	return m
}

// DialSource : default dialer, a *sql.DB sized to the worker cap
func DialSource(ctx context.Context, src sourcecfg.Source, maxConc int, log zerolog.Logger) (Source, error) {
	db, err := connection.Dial(ctx, src, maxConc, log)
	if err != nil {
		return nil, err
	}
	s, err := table.NewSource(db, src.DriverName(), src.Schema())
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (m *Migrator[S, T]) Run(ctx context.Context, cfg config.Config[S, T]) (*RunReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	runID := newRunID()

	mat := artifact.NewMaterializer(m.fs, filepath.Join(cfg.TmpDir, "sql2doc", "run_id="+runID))
	defer func() {
		if err := mat.Cleanup(); err != nil {
			m.log.Warn().Err(err).Str("dir", mat.Dir()).Msg("could not remove artifact dir")
		}
	}()

	loader, release, err := m.newLoader(ctx, cfg.Target, m.runner, mat, m.log)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer release()

	adapter := importer.NewAdapter(mat, loader, m.log)
	if cfg.Archive.Enabled() {
		client, err := m.s3Client(cfg.Archive)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		adapter.WithArchiver(importer.NewS3Archiver(client, mat, cfg.Archive.Bucket, archivePrefix(cfg.Archive, runID)))
	}

	engine := NewEngine(func(ctx context.Context) (Source, error) {
		return m.dial(ctx, cfg.SourceConfig, cfg.MaxConcurrency, m.log)
	}, adapter, m.manager, m.log)

	return engine.Run(ctx, Options{
		Workers:      cfg.MaxConcurrency,
		Tables:       cfg.Tables,
		TableTimeout: cfg.TableTimeout,
		Database:     cfg.Target.Database(),
		Force:        cfg.Target.ForceOverwrite(),
		Transform:    cfg.Transform,
		RunID:        runID,
	})
}

// Tables : what a run without an explicit table list would migrate
func (m *Migrator[S, T]) Tables(ctx context.Context, cfg config.Config[S, T]) ([]string, error) {
	if err := cfg.SourceConfig.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	src, err := m.dial(ctx, cfg.SourceConfig, 1, m.log)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer src.Close()
	tables, err := src.List(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return tables, nil
}

func (m *Migrator[S, T]) s3Client(opt targetcfg.S3Options) (s3iface.S3API, error) {
	if m.s3 != nil {
		return m.s3, nil
	}
	cfg := aws.NewConfig()
	if opt.Region != "" {
		cfg = cfg.WithRegion(opt.Region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create aws session : %w", err)
	}
	return s3.New(sess), nil
}

func archivePrefix(opt targetcfg.S3Options, runID string) string {
	return path.Join(
		conditional.Ternary(opt.PrefixOverride != "", opt.PrefixOverride, "files"),
		"date="+time.Now().UTC().Format(time.DateOnly),
		"run_id="+runID,
	)
}
