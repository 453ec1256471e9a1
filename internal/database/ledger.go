package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/doku2md/internal/model"
)

// FileName is the name of the ledger database inside its directory.
const FileName = "doku2md.db"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Ledger records migration runs in a SQLite database: when a command ran,
// which sources it fetched and which documents it produced.
//
// All methods are safe for concurrent use; the pool is limited to a single
// connection because SQLite has one writer.
type Ledger struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Ledger behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Run is one execution of a migration command.
type Run struct {
	ID       string    `json:"id"`
	Command  string    `json:"command"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Pages is the number of pages the run processed successfully.
	Pages int `json:"pages"`

	// Failures is the number of pages that failed.
	Failures int `json:"failures"`
}

// Done reports whether the run has been finished.
func (r Run) Done() bool {
	return !r.Finished.IsZero()
}

// Fetch records a page source downloaded during a run.
type Fetch struct {
	RunID        string    `json:"run_id"`
	PageKey      string    `json:"page"`
	URL          string    `json:"url"`
	SHA256       string    `json:"sha256"`
	Size         int       `json:"size"`
	Contributors []string  `json:"contributors"`
	Timestamp    time.Time `json:"timestamp"`
}

// Conversion records a Markdown document written during a run.
type Conversion struct {
	RunID        string    `json:"run_id"`
	PageKey      string    `json:"page"`
	MarkdownPath string    `json:"markdown_path"`
	ExposedPath  string    `json:"exposed_path"`
	Warnings     []string  `json:"warnings"`
	Timestamp    time.Time `json:"timestamp"`
}

// Open opens or creates the ledger in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Ledger, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("ledger not found at %s (run a migration command first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check ledger path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	l := &Ledger{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := l.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return l, nil
}

// Path returns the path of the database file.
func (l *Ledger) Path() string {
	return l.dbPath
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		started TEXT NOT NULL,
		finished TEXT NOT NULL DEFAULT '',
		pages INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- One row per page and run; a retried page overwrites its row.
	CREATE TABLE IF NOT EXISTS fetches (
		run_id TEXT NOT NULL REFERENCES runs(id),
		page_key TEXT NOT NULL,
		url TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		size INTEGER NOT NULL,
		contributors TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		PRIMARY KEY (run_id, page_key)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_page ON fetches(page_key);

	CREATE TABLE IF NOT EXISTS conversions (
		run_id TEXT NOT NULL REFERENCES runs(id),
		page_key TEXT NOT NULL,
		markdown_path TEXT NOT NULL,
		exposed_path TEXT NOT NULL,
		warnings TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		PRIMARY KEY (run_id, page_key)
	);
	`

	_, err := l.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun records the start of command and returns the new run.
func (l *Ledger) StartRun(ctx context.Context, command string) (*Run, error) {
	run := &Run{
		ID:      uuid.NewString(),
		Command: command,
		Started: time.Now().UTC(),
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started) VALUES (?, ?, ?)`,
		run.ID, run.Command, formatTimestamp(run.Started),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// FinishRun stores the counters of run and marks it finished.
func (l *Ledger) FinishRun(ctx context.Context, run *Run) error {
	run.Finished = time.Now().UTC()

	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished = ?, pages = ?, failures = ? WHERE id = ?`,
		formatTimestamp(run.Finished), run.Pages, run.Failures, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// RecordFetch stores the source of m fetched during run.
func (l *Ledger) RecordFetch(ctx context.Context, runID string, m *model.Migration) error {
	contributors, err := encodeList(m.Contributors)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO fetches (run_id, page_key, url, sha256, size, contributors, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, page_key) DO UPDATE SET
		url = excluded.url,
		sha256 = excluded.sha256,
		size = excluded.size,
		contributors = excluded.contributors,
		timestamp = excluded.timestamp
	`

	_, err = l.db.ExecContext(ctx, query,
		runID,
		m.Page.ID(),
		m.SourceURL,
		m.Hash,
		len(m.Raw),
		contributors,
		formatTimestamp(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch of %s: %w", m.Page, err)
	}
	return nil
}

// RecordConversion stores the documents written for m during run.
func (l *Ledger) RecordConversion(ctx context.Context, runID string, m *model.Migration, markdownPath, exposedPath string) error {
	warnings, err := encodeList(m.Warnings)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO conversions (run_id, page_key, markdown_path, exposed_path, warnings, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, page_key) DO UPDATE SET
		markdown_path = excluded.markdown_path,
		exposed_path = excluded.exposed_path,
		warnings = excluded.warnings,
		timestamp = excluded.timestamp
	`

	_, err = l.db.ExecContext(ctx, query,
		runID,
		m.Page.ID(),
		markdownPath,
		exposedPath,
		warnings,
		formatTimestamp(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("failed to record conversion of %s: %w", m.Page, err)
	}
	return nil
}

// LatestRun returns the most recently started run, optionally restricted to
// command. It returns nil when there is none.
func (l *Ledger) LatestRun(ctx context.Context, command string) (*Run, error) {
	query := `
	SELECT id, command, started, finished, pages, failures
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0)
	if command != "" {
		query += " AND command = ?"
		args = append(args, command)
	}
	query += " ORDER BY started DESC, rowid DESC LIMIT 1"

	run, err := scanRun(l.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// Runs returns the runs of command, newest first. An empty command lists
// every run.
func (l *Ledger) Runs(ctx context.Context, command string) ([]Run, error) {
	query := `
	SELECT id, command, started, finished, pages, failures
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0)
	if command != "" {
		query += " AND command = ?"
		args = append(args, command)
	}
	query += " ORDER BY started DESC, rowid DESC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with id.
func (l *Ledger) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `
	SELECT id, command, started, finished, pages, failures
	FROM runs
	WHERE id = ?
	`

	run, err := scanRun(l.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// Fetches returns the fetches of a run in the order they were recorded.
func (l *Ledger) Fetches(ctx context.Context, runID string) ([]Fetch, error) {
	query := `
	SELECT run_id, page_key, url, sha256, size, contributors, timestamp
	FROM fetches
	WHERE run_id = ?
	ORDER BY rowid
	`

	rows, err := l.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetches: %w", err)
	}
	defer rows.Close()

	var results []Fetch
	for rows.Next() {
		var f Fetch
		var contributors, timestamp string
		if err := rows.Scan(&f.RunID, &f.PageKey, &f.URL, &f.SHA256, &f.Size, &contributors, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		if f.Contributors, err = decodeList(contributors); err != nil {
			return nil, err
		}
		f.Timestamp = parseTimestamp(timestamp)
		results = append(results, f)
	}
	return results, rows.Err()
}

// Conversions returns the conversions of a run ordered by page.
func (l *Ledger) Conversions(ctx context.Context, runID string) ([]Conversion, error) {
	query := `
	SELECT run_id, page_key, markdown_path, exposed_path, warnings, timestamp
	FROM conversions
	WHERE run_id = ?
	ORDER BY page_key
	`

	rows, err := l.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var results []Conversion
	for rows.Next() {
		var c Conversion
		var warnings, timestamp string
		if err := rows.Scan(&c.RunID, &c.PageKey, &c.MarkdownPath, &c.ExposedPath, &warnings, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		if c.Warnings, err = decodeList(warnings); err != nil {
			return nil, err
		}
		c.Timestamp = parseTimestamp(timestamp)
		results = append(results, c)
	}
	return results, rows.Err()
}

// LastFetch returns the most recent fetch of a page across all runs, or nil
// when the page was never fetched.
func (l *Ledger) LastFetch(ctx context.Context, p model.Page) (*Fetch, error) {
	query := `
	SELECT run_id, page_key, url, sha256, size, contributors, timestamp
	FROM fetches
	WHERE page_key = ?
	ORDER BY timestamp DESC, rowid DESC
	LIMIT 1
	`

	var f Fetch
	var contributors, timestamp string
	err := l.db.QueryRowContext(ctx, query, p.ID()).Scan(
		&f.RunID, &f.PageKey, &f.URL, &f.SHA256, &f.Size, &contributors, &timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last fetch of %s: %w", p, err)
	}
	if f.Contributors, err = decodeList(contributors); err != nil {
		return nil, err
	}
	f.Timestamp = parseTimestamp(timestamp)
	return &f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(&run.ID, &run.Command, &started, &finished, &run.Pages, &run.Failures); err != nil {
		return nil, err
	}
	run.Started = parseTimestamp(started)
	if finished != "" {
		run.Finished = parseTimestamp(finished)
	}
	return &run, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	values := make([]string, 0)
	if data == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return values, nil
}

// timestampLayout has a fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats parseTimestamp accepts.
// More specific formats come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
