package main

import (
	"context"
	"fmt"

	"github.com/baderkha/sql2doc/pkg/migrate"
	"github.com/baderkha/sql2doc/pkg/migrate/config"
	"github.com/baderkha/sql2doc/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/sql2doc/pkg/migrate/config/targetcfg"
)

const (
	sourceMysql     = "mysql"
	sourcePostgres  = "postgres"
	targetRethinkDB = "rethinkdb"
	targetMongo     = "mongodb"
)

// jobOverrides : values from flags that win over the job file
type jobOverrides struct {
	// tables : nil keeps the job file's list
	tables  []string
	workers *int
}

func dispatch(ctx context.Context, source, target, job string, o jobOverrides, opts ...migrate.Option) (*migrate.RunReport, error) {
	switch source + "->" + target {
	case sourceMysql + "->" + targetRethinkDB:
		return runJob[sourcecfg.MYSQL, targetcfg.RethinkDB](ctx, migrate.NewMysqlToRethinkDB(opts...), job, o)
	case sourcePostgres + "->" + targetRethinkDB:
		return runJob[sourcecfg.Postgres, targetcfg.RethinkDB](ctx, migrate.NewPostgresToRethinkDB(opts...), job, o)
	case sourceMysql + "->" + targetMongo:
		return runJob[sourcecfg.MYSQL, targetcfg.Mongo](ctx, migrate.NewMysqlToMongo(opts...), job, o)
	case sourcePostgres + "->" + targetMongo:
		return runJob[sourcecfg.Postgres, targetcfg.Mongo](ctx, migrate.NewPostgresToMongo(opts...), job, o)
	}
	return nil, unsupported(source, target)
}

func listTables(ctx context.Context, source, target, job string, opts ...migrate.Option) ([]string, error) {
	switch source + "->" + target {
	case sourceMysql + "->" + targetRethinkDB:
		return listJob[sourcecfg.MYSQL, targetcfg.RethinkDB](ctx, migrate.NewMysqlToRethinkDB(opts...), job)
	case sourcePostgres + "->" + targetRethinkDB:
		return listJob[sourcecfg.Postgres, targetcfg.RethinkDB](ctx, migrate.NewPostgresToRethinkDB(opts...), job)
	case sourceMysql + "->" + targetMongo:
		return listJob[sourcecfg.MYSQL, targetcfg.Mongo](ctx, migrate.NewMysqlToMongo(opts...), job)
	case sourcePostgres + "->" + targetMongo:
		return listJob[sourcecfg.Postgres, targetcfg.Mongo](ctx, migrate.NewPostgresToMongo(opts...), job)
	}
	return nil, unsupported(source, target)
}

func unsupported(source, target string) error {
	return &migrate.ConfigError{Err: fmt.Errorf("unsupported migration %s -> %s", source, target)}
}

func loadJob[S any, T any](job string, o jobOverrides) (config.Config[S, T], error) {
	cfg, err := config.Load[S, T](job)
	if err != nil {
		return cfg, &migrate.ConfigError{Err: err}
	}
	if o.tables != nil {
		cfg.Tables = o.tables
	}
	if o.workers != nil {
		cfg.MaxConcurrency = *o.workers
	}
	return cfg, nil
}

func runJob[S any, T any](ctx context.Context, r migrate.Runner[S, T], job string, o jobOverrides) (*migrate.RunReport, error) {
	cfg, err := loadJob[S, T](job, o)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, cfg)
}

func listJob[S any, T any](ctx context.Context, r migrate.Runner[S, T], job string) ([]string, error) {
	cfg, err := loadJob[S, T](job, jobOverrides{})
	if err != nil {
		return nil, err
	}
	return r.Tables(ctx, cfg)
}
