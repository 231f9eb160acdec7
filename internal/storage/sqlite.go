package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/docstudio/internal/models"
)

// ErrPromptNotFound is returned by GetPrompt for an unknown id.
var ErrPromptNotFound = errors.New("prompt not found")

// sqliteDriver is go-sqlite3 with a fold(text) function that lower-cases with
// Unicode rules, so Search matches the JSON and CSV stores for non-ASCII text.
const sqliteDriver = "sqlite3_docstudio"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// SQLiteStore implements Store on SQLite and also keeps compliance reports and
// the custom protocol log.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open(sqliteDriver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

var _ Store = (*SQLiteStore)(nil)

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		file_type TEXT,
		file_size_kb REAL,
		original_word_count INTEGER,
		summary TEXT NOT NULL,
		summary_word_count INTEGER,
		model_used TEXT,
		summary_length TEXT,
		date TEXT NOT NULL,
		extracted_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_filename ON summaries(filename);
	CREATE INDEX IF NOT EXISTS idx_date ON summaries(date);
	CREATE INDEX IF NOT EXISTS idx_model ON summaries(model_used);

	CREATE TABLE IF NOT EXISTS compliance_reports (
		id TEXT PRIMARY KEY,
		domain TEXT,
		protocol_name TEXT,
		protocol_description TEXT,
		overall_status TEXT NOT NULL,
		total_violations INTEGER NOT NULL,
		total_approvals INTEGER NOT NULL,
		files_analyzed TEXT,
		results TEXT NOT NULL,
		analyzed_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_analyzed_at ON compliance_reports(analyzed_at);

	CREATE TABLE IF NOT EXISTS prompts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		protocol_name TEXT NOT NULL,
		protocol_description TEXT NOT NULL,
		what_to_flag TEXT,
		severity_threshold TEXT,
		output_format TEXT,
		citation_required INTEGER,
		language TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Backend returns BackendSQLite.
func (s *SQLiteStore) Backend() Backend { return BackendSQLite }

// Append inserts rec and sets its ID and CreatedAt from the database.
func (s *SQLiteStore) Append(ctx context.Context, rec *models.SummaryRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (filename, file_type, file_size_kb, original_word_count, summary,
			summary_word_count, model_used, summary_length, date, extracted_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Filename, rec.FileType, rec.FileSizeKB, rec.OriginalWordCount, rec.Summary,
		rec.SummaryWordCount, rec.ModelUsed, rec.SummaryLength, rec.Date, rec.ExtractedText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read summary id: %w", err)
	}
	rec.ID = id
	return s.db.QueryRowContext(ctx, `SELECT created_at FROM summaries WHERE id = ?`, id).Scan(&rec.CreatedAt)
}

const summaryColumns = `id, filename, file_type, file_size_kb, original_word_count, summary,
	summary_word_count, model_used, summary_length, date, extracted_text, created_at`

// ListAll returns every record, newest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*models.SummaryRecord, error) {
	return s.query(ctx, `SELECT `+summaryColumns+` FROM summaries ORDER BY created_at DESC, id DESC`)
}

// Search returns records whose filename, summary or extracted text contains query,
// ignoring case. The query is matched literally.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]*models.SummaryRecord, error) {
	q := strings.ToLower(query)
	return s.query(ctx, `SELECT `+summaryColumns+` FROM summaries
		WHERE instr(fold(filename), ?) > 0
			OR instr(fold(summary), ?) > 0
			OR instr(fold(coalesce(extracted_text, '')), ?) > 0
		ORDER BY created_at DESC, id DESC`, q, q, q)
}

// IDsByFilename returns the ids of records saved under filename.
func (s *SQLiteStore) IDsByFilename(ctx context.Context, filename string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM summaries WHERE filename = ?`, filename)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes every record saved under filename.
func (s *SQLiteStore) Delete(ctx context.Context, filename string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE filename = ?`, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to delete summaries: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]*models.SummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*models.SummaryRecord{}
	for rows.Next() {
		var r models.SummaryRecord
		var fileType, model, length, extracted sql.NullString
		var size sql.NullFloat64
		var words, summaryWords sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Filename, &fileType, &size, &words, &r.Summary,
			&summaryWords, &model, &length, &r.Date, &extracted, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.FileType = fileType.String
		r.FileSizeKB = size.Float64
		r.OriginalWordCount = int(words.Int64)
		r.SummaryWordCount = int(summaryWords.Int64)
		r.ModelUsed = model.String
		r.SummaryLength = length.String
		r.ExtractedText = extracted.String
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}

// SaveReport stores a compliance report.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *models.Report) error {
	results, err := json.Marshal(r.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	files, err := json.Marshal(r.FilesAnalyzed)
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO compliance_reports (id, domain, protocol_name, protocol_description, overall_status,
			total_violations, total_approvals, files_analyzed, results, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Domain, r.ProtocolName, r.ProtocolDescription, string(r.OverallStatus),
		r.TotalViolations, r.TotalApprovals, string(files), string(results), r.AnalyzedAt,
	)
	return err
}

// ListReports returns stored reports, newest first. A limit <= 0 returns all of them.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]*models.Report, error) {
	q := `SELECT id, domain, protocol_name, protocol_description, overall_status, total_violations,
		total_approvals, files_analyzed, results, analyzed_at FROM compliance_reports ORDER BY analyzed_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var r models.Report
		var status, files, results string
		var domain, name, desc sql.NullString
		if err := rows.Scan(&r.ID, &domain, &name, &desc, &status, &r.TotalViolations,
			&r.TotalApprovals, &files, &results, &r.AnalyzedAt); err != nil {
			return nil, err
		}
		r.Domain, r.ProtocolName, r.ProtocolDescription = domain.String, name.String, desc.String
		r.OverallStatus = models.ComplianceStatus(status)
		if err := json.Unmarshal([]byte(files), &r.FilesAnalyzed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal files for report %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(results), &r.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results for report %s: %w", r.ID, err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

// SavePrompt appends a protocol to the prompt log and sets its ID and CreatedAt.
func (s *SQLiteStore) SavePrompt(ctx context.Context, p *models.PromptRecord) error {
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO prompts (protocol_name, protocol_description, what_to_flag, severity_threshold,
			output_format, citation_required, language)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ProtocolName, p.ProtocolDescription, p.WhatToFlag, p.SeverityThreshold,
		p.OutputFormat, p.CitationRequired, p.Language,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prompt: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	return s.db.QueryRowContext(ctx, `SELECT created_at FROM prompts WHERE id = ?`, p.ID).Scan(&p.CreatedAt)
}

// ListPrompts returns the prompt log, newest first.
func (s *SQLiteStore) ListPrompts(ctx context.Context) ([]*models.PromptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, protocol_name, protocol_description, what_to_flag, severity_threshold,
			output_format, citation_required, language, created_at
		 FROM prompts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prompts := []*models.PromptRecord{}
	for rows.Next() {
		var p models.PromptRecord
		var flag, severity, format, lang sql.NullString
		if err := rows.Scan(&p.ID, &p.ProtocolName, &p.ProtocolDescription, &flag, &severity,
			&format, &p.CitationRequired, &lang, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.WhatToFlag, p.SeverityThreshold, p.OutputFormat, p.Language = flag.String, severity.String, format.String, lang.String
		prompts = append(prompts, &p)
	}
	return prompts, rows.Err()
}

// GetPrompt returns a logged protocol by id.
func (s *SQLiteStore) GetPrompt(ctx context.Context, id int64) (*models.PromptRecord, error) {
	var p models.PromptRecord
	var flag, severity, format, lang sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, protocol_name, protocol_description, what_to_flag, severity_threshold,
			output_format, citation_required, language, created_at
		 FROM prompts WHERE id = ?`, id).
		Scan(&p.ID, &p.ProtocolName, &p.ProtocolDescription, &flag, &severity,
			&format, &p.CitationRequired, &lang, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPromptNotFound
	}
	if err != nil {
		return nil, err
	}
	p.WhatToFlag, p.SeverityThreshold, p.OutputFormat, p.Language = flag.String, severity.String, format.String, lang.String
	return &p, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
