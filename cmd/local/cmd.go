package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baderkha/sql2doc/pkg/migrate"
	"github.com/baderkha/sql2doc/pkg/migrate/state"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var version = "dev"

// flags : command line knobs layered over the job file
type flags struct {
	job      string
	source   string
	target   string
	tables   []string
	workers  int
	report   string
	logLevel string
}

var (
	f flags

	rootCmd = &cobra.Command{
		Use:   "sql2doc",
		Short: "Relational to document database migration tool",
		Long: `Copies every table of a MySQL or Postgres database into RethinkDB or
MongoDB, a bounded number of tables at a time. A failing table is reported
and does not stop the others.`,
		SilenceUsage: true,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the tables of a job file",
		RunE:  runMigrate,
	}

	tablesCmd = &cobra.Command{
		Use:   "tables",
		Short: "List the tables a migrate run would pick up",
		RunE:  runTables,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("sql2doc " + version)
		},
	}
)

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&f.job, "job", "job.yaml", "job file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&f.source, "source", sourceMysql, "source kind : mysql | postgres")
	rootCmd.PersistentFlags().StringVar(&f.target, "target", targetRethinkDB, "target kind : rethinkdb | mongodb")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "trace | debug | info | warn | error")

	migrateCmd.Flags().StringSliceVar(&f.tables, "tables", nil, "comma separated tables, overrides the job file")
	migrateCmd.Flags().IntVar(&f.workers, "workers", 0, "max tables in flight, overrides max_concurrency")
	migrateCmd.Flags().StringVar(&f.report, "report", "", "write the run report as yaml to this path")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("bad --log-level %q : %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log, err := newLogger(f.logLevel)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	var o jobOverrides
	if cmd.Flags().Changed("workers") {
		o.workers = &f.workers
	}
	if cmd.Flags().Changed("tables") {
		o.tables = f.tables
		if o.tables == nil {
			o.tables = []string{}
		}
	}

	progress := state.NewMemoryManager()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	done := make(chan struct{})
	defer close(done)
	go reportInterrupted(sigs, done, progress, log)

	startTime := time.Now()
	report, err := dispatch(ctx, f.source, f.target, f.job, o,
		migrate.WithLogger(log),
		migrate.WithManager(state.Multi{state.NewConsoleManager(log), progress}),
	)
	if err != nil {
		return err
	}
	fmt.Printf("Time taken: %s\n", time.Since(startTime))

	if f.report != "" {
		if err := writeReport(f.report, report); err != nil {
			return err
		}
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("%d of %d tables failed : %w", len(report.Failed()), len(report.Outcomes), err)
	}
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	log, err := newLogger(f.logLevel)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	tables, err := listTables(ctx, f.source, f.target, f.job, migrate.WithLogger(log))
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}

// reportInterrupted : when a signal arrives before done is closed, names
// the tables that were still in flight
func reportInterrupted(sigs <-chan os.Signal, done <-chan struct{}, progress *state.MemoryManager, log zerolog.Logger) {
	select {
	case <-done:
		return
	case <-sigs:
	}
	log.Warn().Msg("Interrupt received. Stopping gracefully...")
	run := progress.GetLastRun()
	if run == nil {
		return
	}
	for _, tl := range progress.GetTableRunLogs(run.RunID) {
		if tl.Status.InFlight() {
			log.Warn().Str("run_id", run.RunID).Str("state", string(tl.Status)).Msgf("[Interrupted] %s.%s", tl.DBName, tl.TableName)
		}
	}
}

func writeReport(path string, report *migrate.RunReport) error {
	b, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("could not encode report : %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("could not write report %s : %w", path, err)
	}
	return nil
}
