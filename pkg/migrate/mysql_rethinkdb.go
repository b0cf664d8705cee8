package migrate

import (
	"context"

	"github.com/baderkha/sql2doc/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/sql2doc/pkg/migrate/config/targetcfg"
	"github.com/baderkha/sql2doc/pkg/migrate/connection"
	"github.com/baderkha/sql2doc/pkg/migrate/importer"
	"github.com/rs/zerolog"
)

func NewMysqlToRethinkDB(opts ...Option) *Migrator[sourcecfg.MYSQL, targetcfg.RethinkDB] {
	return newMigrator[sourcecfg.MYSQL, targetcfg.RethinkDB](RethinkDBLoader, opts...)
}

func NewPostgresToRethinkDB(opts ...Option) *Migrator[sourcecfg.Postgres, targetcfg.RethinkDB] {
	return newMigrator[sourcecfg.Postgres, targetcfg.RethinkDB](RethinkDBLoader, opts...)
}

func NewMysqlToMongo(opts ...Option) *Migrator[sourcecfg.MYSQL, targetcfg.Mongo] {
	return newMigrator[sourcecfg.MYSQL, targetcfg.Mongo](MongoLoader, opts...)
}

func NewPostgresToMongo(opts ...Option) *Migrator[sourcecfg.Postgres, targetcfg.Mongo] {
	return newMigrator[sourcecfg.Postgres, targetcfg.Mongo](MongoLoader, opts...)
}

// RethinkDBLoader : `rethinkdb import` per table
func RethinkDBLoader(ctx context.Context, target targetcfg.RethinkDB, runner importer.Runner, open importer.Opener, log zerolog.Logger) (importer.Loader, func(), error) {
	return importer.NewCommandLoader(runner, importer.RethinkImport{Cfg: target}), func() {}, nil
}

// MongoLoader : mongoimport per table, or one shared driver client in driver mode
func MongoLoader(ctx context.Context, target targetcfg.Mongo, runner importer.Runner, open importer.Opener, log zerolog.Logger) (importer.Loader, func(), error) {
	if target.ImportMode() != targetcfg.MongoModeDriver {
		return importer.NewCommandLoader(runner, importer.MongoImport{Cfg: target}), func() {}, nil
	}
	client, err := connection.DialMongo(ctx, target.URI)
	if err != nil {
		return nil, nil, err
	}
	return importer.NewMongoLoader(client, open), func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not disconnect from mongo")
		}
	}, nil
}
