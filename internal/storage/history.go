package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"livecheck/internal/domain"
)

const createRuns = `CREATE TABLE IF NOT EXISTS livecheck_runs (
	run_id      CHAR(36)     NOT NULL PRIMARY KEY,
	target_url  VARCHAR(512) NOT NULL,
	started_at  DATETIME     NOT NULL,
	duration_ms BIGINT       NOT NULL,
	sessions    INT          NOT NULL,
	total       INT          NOT NULL,
	passed      INT          NOT NULL,
	failed      INT          NOT NULL
) DEFAULT CHARSET=utf8mb4`

const createResults = `CREATE TABLE IF NOT EXISTS livecheck_results (
	run_id         CHAR(36)     NOT NULL,
	position       INT          NOT NULL,
	case_id        VARCHAR(128) NOT NULL,
	case_group     VARCHAR(16)  NOT NULL,
	passed         BOOLEAN      NOT NULL,
	state          VARCHAR(32)  NOT NULL,
	failure_kind   VARCHAR(32)  NOT NULL DEFAULT '',
	failure_reason TEXT,
	actual_output  TEXT,
	expected       TEXT,
	elapsed_ms     BIGINT       NOT NULL,
	generations    INT          NOT NULL,
	session        INT          NOT NULL,
	PRIMARY KEY (run_id, position),
	FOREIGN KEY (run_id) REFERENCES livecheck_runs (run_id) ON DELETE CASCADE
) DEFAULT CHARSET=utf8mb4`

// History appends run reports to a MySQL database so pass rates can be
// tracked across runs.
type History struct {
	dsn *mysql.Config
}

// NewHistory parses dsn (go-sql-driver format, e.g.
// "user:pass@tcp(127.0.0.1:3306)/livecheck") and returns a History.
// The database named in the DSN is created on first use.
func NewHistory(dsn string) (*History, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse history dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("history dsn must name a database")
	}
	if !isValidDatabaseName(cfg.DBName) {
		return nil, fmt.Errorf("invalid database name: %s", cfg.DBName)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return &History{dsn: cfg}, nil
}

// Database returns the database the history is stored in.
func (h *History) Database() string {
	return h.dsn.DBName
}

// serverDSN is the DSN without a database, used to create it.
func (h *History) serverDSN() string {
	server := h.dsn.Clone()
	server.DBName = ""
	return server.FormatDSN()
}

// Record stores report and all its results in one transaction.
func (h *History) Record(ctx context.Context, report *domain.RunReport) error {
	if err := h.ensureDatabase(ctx); err != nil {
		return err
	}

	db, err := sql.Open("mysql", h.dsn.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to history database: %w", err)
	}
	defer db.Close()

	for _, stmt := range []string{createRuns, createResults} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create history schema: %w", err)
		}
	}

	startedAt, err := time.Parse(time.RFC3339, report.StartedAt)
	if err != nil {
		return fmt.Errorf("report started_at: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO livecheck_runs (run_id, target_url, started_at, duration_ms, sessions, total, passed, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.TargetURL, startedAt.UTC(), int64(report.DurationSeconds*1000),
		report.Sessions, report.Total, report.Passed, report.Failed)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO livecheck_results (run_id, position, case_id, case_group, passed, state, failure_kind,
		 failure_reason, actual_output, expected, elapsed_ms, generations, session)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, res := range report.Results {
		_, err := stmt.ExecContext(ctx,
			report.RunID, i, res.CaseID, string(res.Group), res.Passed, string(res.State), string(res.FailureKind),
			res.FailureReason, res.Actual, res.Expected, res.ElapsedMs, res.Generations, res.Session)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.CaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// ensureDatabase creates the history database if it does not exist.
func (h *History) ensureDatabase(ctx context.Context) error {
	db, err := sql.Open("mysql", h.serverDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := db.QueryRowContext(ctx, query, h.dsn.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database %s: %w", h.dsn.DBName, err)
	}
	if exists {
		return nil
	}

	query = fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", h.dsn.DBName)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %s: %w", h.dsn.DBName, err)
	}
	return nil
}

// isValidDatabaseName allows only names that are safe to interpolate into DDL.
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r == '$' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return !strings.HasPrefix(name, "$")
}
