// Command txprobe runs the distributed-transaction inconsistency harness
// against a MySQL store: it processes self-resubmitting work items forever,
// records transaction diagnostics before each induced remote failure, and
// reports business rows that survive the rollback.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/go-sql-driver/mysql"

	"github.com/probelab/txprobe"
	"github.com/probelab/txprobe/mysql"
)

const exitUsage = 2

type config struct {
	DSN           string        `env:"TXPROBE_DSN"`
	AuditTable    string        `env:"TXPROBE_AUDIT_TABLE" envDefault:"probe_audit"`
	BusinessTable string        `env:"TXPROBE_BUSINESS_TABLE" envDefault:"probe_business"`
	Workers       int           `env:"TXPROBE_WORKERS" envDefault:"1"`
	Runs          uint64        `env:"TXPROBE_RUNS" envDefault:"0"`
	Unbound       bool          `env:"TXPROBE_UNBOUND" envDefault:"false"`
	Retention     time.Duration `env:"TXPROBE_RETENTION" envDefault:"0"`
	ReportEvery   time.Duration `env:"TXPROBE_REPORT_EVERY" envDefault:"10s"`
	Verbose       bool          `env:"TXPROBE_VERBOSE" envDefault:"false"`
}

type stdLogger struct {
	logger  *log.Logger
	verbose bool
}

func (l stdLogger) Debug(msg string, args ...any) {
	if !l.verbose {
		return
	}
	l.logger.Printf("DEBUG %s %s", msg, formatArgs(args))
}

func (l stdLogger) Info(msg string, args ...any) {
	l.logger.Printf("INFO %s %s", msg, formatArgs(args))
}

func (l stdLogger) Warn(msg string, args ...any) {
	l.logger.Printf("WARN %s %s", msg, formatArgs(args))
}

func (l stdLogger) Error(msg string, args ...any) {
	l.logger.Printf("ERROR %s %s", msg, formatArgs(args))
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i < len(args); i += 2 {
		key := args[i]
		val := any("<missing>")
		if i+1 < len(args) {
			val = args[i+1]
		}
		pairs = append(pairs, fmt.Sprintf("%v=%v", key, val))
	}

	return strings.Join(pairs, " ")
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	log.SetPrefix("[TXPROBE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("txprobe: %v", err)
	}
}

func parseConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("txprobe", flag.ContinueOnError)
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "MySQL DSN, e.g. user:pass@tcp(host:3306)/db?parseTime=true")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent loop workers")
	fs.Uint64Var(&cfg.Runs, "runs", cfg.Runs, "Stop after this many items (0 runs forever)")
	fs.BoolVar(&cfg.Unbound, "unbound", cfg.Unbound, "Run scope writes outside the scoped transaction to reproduce the anomaly")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "Prune probe rows older than this duration (0 disables cleanup)")
	fs.DurationVar(&cfg.ReportEvery, "report-every", cfg.ReportEvery, "Interval between survivor count samples")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if cfg.DSN == "" {
		return config{}, errors.New("dsn is required (flag -dsn or TXPROBE_DSN)")
	}

	return cfg, nil
}

func run(ctx context.Context, cfg config) error {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	if err := ensureSchema(ctx, db, cfg); err != nil {
		return err
	}

	logger := stdLogger{logger: log.New(os.Stdout, "", log.LstdFlags), verbose: cfg.Verbose}

	tables := []mysql.Option{
		mysql.WithAuditTable(cfg.AuditTable),
		mysql.WithBusinessTable(cfg.BusinessTable),
	}
	scoper, err := mysql.NewScoper(db, append(tables, mysql.WithUnboundWrites(cfg.Unbound))...)
	if err != nil {
		return err
	}
	sink, err := mysql.NewSink(db, tables...)
	if err != nil {
		return err
	}

	unit := txprobe.NewUnit(scoper, mysql.NewCollector(), sink, txprobe.InducedRemote{},
		txprobe.WithLogger(logger),
	)

	queue := txprobe.NewMemQueue(0)
	loop := txprobe.NewLoop(queue, queue, unit,
		txprobe.WithLogger(logger),
		txprobe.WithWorkers(cfg.Workers),
		txprobe.WithMaxRuns(cfg.Runs),
		txprobe.WithAnomalyCounter(sink),
		txprobe.WithAnomalyInterval(cfg.ReportEvery),
	)

	if cfg.Retention > 0 {
		maintainer, err := mysql.NewCleanupMaintainer(db, mysql.CleanupMaintainerConfig{
			AuditTable:    cfg.AuditTable,
			BusinessTable: cfg.BusinessTable,
			Retention:     cfg.Retention,
			KeepSurvivors: true,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := maintainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("cleanup stopped", "err", err)
			}
		}()
	}

	if err := seed(ctx, queue); err != nil {
		return err
	}

	logger.Info("txprobe started",
		"workers", cfg.Workers,
		"unbound", cfg.Unbound,
		"runs", cfg.Runs,
	)

	if err := loop.Run(ctx); err != nil {
		return err
	}
	logger.Info("txprobe stopped", "processed", loop.Processed())

	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB, cfg config) error {
	audit, err := mysql.AuditSchema(cfg.AuditTable)
	if err != nil {
		return err
	}
	business, err := mysql.BusinessSchema(cfg.BusinessTable)
	if err != nil {
		return err
	}
	for _, ddl := range []string{audit, business} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

func seed(ctx context.Context, queue txprobe.Queue) error {
	id, err := txprobe.UUIDv7Generator{}.New()
	if err != nil {
		return err
	}

	return queue.Submit(ctx, txprobe.WorkItem{CorrelationID: id})
}
