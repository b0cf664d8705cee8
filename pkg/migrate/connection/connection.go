package connection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/baderkha/sql2doc/pkg/migrate/config/sourcecfg"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
)

// AddLogger : wraps the connection so every statement is logged
func AddLogger(db *sql.DB, dsn string, driverName string, log zerolog.Logger) *sql.DB {
	loggerAdapter := zerologadapter.New(log.With().Str("driver", driverName).Logger())
	db = sqldblogger.OpenDriver(dsn, db.Driver(), loggerAdapter,
		sqldblogger.WithWrapResult(false),
		sqldblogger.WithDurationFieldname("dur_ms"),
		sqldblogger.WithDurationUnit(sqldblogger.DurationMillisecond),
		sqldblogger.WithSQLQueryAsMessage(true),
		sqldblogger.WithSQLQueryFieldname("sql_query"),
	)
	return db
}

// Dial : opens and pings the source, maxConc bounds open connections
func Dial(ctx context.Context, src sourcecfg.Source, maxConc int, log zerolog.Logger) (*sql.DB, error) {
	driver := src.DriverName()
	tag := strings.ToUpper(driver) + "_SOURCE"
	log.Debug().Str("driver", driver).Str("db", src.Database()).Msg("dialing source")

	dsn := src.GetDSN()
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s : Could not dial connection due to : %w", tag, err)
	}
	if src.LogQueries() {
		db = AddLogger(db, dsn, driver, log)
	}
	db.SetMaxOpenConns(maxConc)
	db.SetMaxIdleConns(maxConc)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s : Could not reach %s due to : %w", tag, src.Database(), err)
	}
	log.Debug().Str("driver", driver).Msg("got source connection")
	return db, nil
}
