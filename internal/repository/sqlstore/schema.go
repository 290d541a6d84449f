package sqlstore

import (
	"context"
	"fmt"
)

const kpiTable = `
CREATE TABLE IF NOT EXISTS monthly_site_kpis (
	month                     VARCHAR(7)  NOT NULL,
	site_code                 VARCHAR(64) NOT NULL,
	site_name                 TEXT NOT NULL DEFAULT '',
	customer_complaints_q1    DOUBLE PRECISION NOT NULL DEFAULT 0,
	supplier_complaints_q2    DOUBLE PRECISION NOT NULL DEFAULT 0,
	internal_complaints_q3    DOUBLE PRECISION NOT NULL DEFAULT 0,
	deviations_d              INTEGER NOT NULL DEFAULT 0,
	ppap_in_progress          INTEGER NOT NULL DEFAULT 0,
	ppap_completed            INTEGER NOT NULL DEFAULT 0,
	customer_deliveries       DOUBLE PRECISION NOT NULL DEFAULT 0,
	supplier_deliveries       DOUBLE PRECISION NOT NULL DEFAULT 0,
	customer_defective_parts  DOUBLE PRECISION NOT NULL DEFAULT 0,
	supplier_defective_parts  DOUBLE PRECISION NOT NULL DEFAULT 0,
	internal_defective_parts  DOUBLE PRECISION NOT NULL DEFAULT 0,
	customer_ppm              DOUBLE PRECISION,
	supplier_ppm              DOUBLE PRECISION,
	extensions                TEXT NOT NULL DEFAULT '{}',
	updated_at                TIMESTAMP NOT NULL,
	PRIMARY KEY (month, site_code)
)`

const plantTable = `
CREATE TABLE IF NOT EXISTS plants (
	code       VARCHAR(32) PRIMARY KEY,
	site_code  VARCHAR(64) NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	country    TEXT NOT NULL DEFAULT ''
)`

const runTablePostgres = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id               BIGSERIAL PRIMARY KEY,
	pipeline_name    TEXT NOT NULL,
	status           VARCHAR(32) NOT NULL,
	total_files      INTEGER NOT NULL DEFAULT 0,
	processed_files  INTEGER NOT NULL DEFAULT 0,
	failed_files     INTEGER NOT NULL DEFAULT 0,
	total_rows       INTEGER NOT NULL DEFAULT 0,
	started_at       TIMESTAMP NOT NULL,
	completed_at     TIMESTAMP,
	error_message    TEXT NOT NULL DEFAULT ''
)`

const runTableSQLite = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	pipeline_name    TEXT NOT NULL,
	status           VARCHAR(32) NOT NULL,
	total_files      INTEGER NOT NULL DEFAULT 0,
	processed_files  INTEGER NOT NULL DEFAULT 0,
	failed_files     INTEGER NOT NULL DEFAULT 0,
	total_rows       INTEGER NOT NULL DEFAULT 0,
	started_at       TIMESTAMP NOT NULL,
	completed_at     TIMESTAMP,
	error_message    TEXT NOT NULL DEFAULT ''
)`

const fileJobTable = `
CREATE TABLE IF NOT EXISTS pipeline_file_jobs (
	run_id       BIGINT NOT NULL,
	file_name    TEXT NOT NULL,
	kind         VARCHAR(32) NOT NULL DEFAULT '',
	status       VARCHAR(32) NOT NULL,
	rows_read    INTEGER NOT NULL DEFAULT 0,
	warnings     INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	report       TEXT NOT NULL DEFAULT '{}'
)`

// EnsureSchema creates the tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	runTable := runTablePostgres
	if db.isSQLite() {
		runTable = runTableSQLite
	}
	for _, stmt := range []string{kpiTable, plantTable, runTable, fileJobTable} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
