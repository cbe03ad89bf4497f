package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aua-planner/planner/scrape/catalog"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS enrichment_runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at REAL NOT NULL,
	course_count INTEGER NOT NULL,
	columns TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS enriched_courses (
	run_id TEXT NOT NULL REFERENCES enrichment_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	course_title TEXT,
	course_code TEXT,
	prerequisites TEXT NOT NULL,
	section TEXT,
	session TEXT NOT NULL,
	campus TEXT,
	instructor TEXT,
	credits TEXT,
	times TEXT NOT NULL,
	location TEXT NOT NULL,
	course_description TEXT NOT NULL,
	themes TEXT NOT NULL,
	restriction TEXT NOT NULL,
	course_level TEXT NOT NULL,
	course_type TEXT NOT NULL,
	year INTEGER NOT NULL,
	semester INTEGER NOT NULL,
	extra TEXT,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS missing_values (
	run_id TEXT NOT NULL REFERENCES enrichment_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	column_name TEXT NOT NULL,
	missing_count INTEGER NOT NULL,
	missing_pct REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// SQLite is a Store backed by a local SQLite file, for runs without a
// PostgreSQL server.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)", path)
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SaveRun(ctx context.Context, run Run, result *catalog.Result) error {
	columns, err := encodeColumns(run.Columns)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO enrichment_runs (id, source, created_at, course_count, columns)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Source, unixFromTime(run.CreatedAt), run.CourseCount, columns); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	courseStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO enriched_courses (run_id, position, course_title, course_code, prerequisites,
			section, session, campus, instructor, credits, times, location, course_description,
			themes, restriction, course_level, course_type, year, semester, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare course insert: %w", err)
	}
	defer courseStmt.Close()

	for i, c := range result.Courses {
		extra, err := encodeExtra(c.Extra)
		if err != nil {
			return fmt.Errorf("encode course %d: %w", i, err)
		}
		if _, err := courseStmt.ExecContext(ctx, run.ID, i,
			nullString(c.CourseTitle), nullString(c.CourseCode), c.Prerequisites,
			nullString(c.Section), c.Session, nullString(c.Campus), nullString(c.Instructor),
			nullString(c.Credits), c.Times, c.Location, c.CourseDescription,
			c.Themes, c.Restriction, c.CourseLevel, c.CourseType, c.Year, c.Semester,
			nullString(extra)); err != nil {
			return fmt.Errorf("insert course %d: %w", i, err)
		}
	}

	for i, m := range result.Missing {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO missing_values (run_id, position, column_name, missing_count, missing_pct)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, m.Column, m.Count, m.Percent); err != nil {
			return fmt.Errorf("insert missing value %q: %w", m.Column, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, created_at, course_count, columns
		FROM enrichment_runs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt float64
		var columns string
		if err := rows.Scan(&run.ID, &run.Source, &createdAt, &run.CourseCount, &columns); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = timeFromUnix(createdAt)
		if run.Columns, err = decodeColumns(columns); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLite) ListRunCourses(ctx context.Context, runID string) ([]catalog.EnrichedCourseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT course_title, course_code, prerequisites, section, session, campus, instructor,
			credits, times, location, course_description, themes, restriction, course_level,
			course_type, year, semester, extra
		FROM enriched_courses
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []catalog.EnrichedCourseRecord
	for rows.Next() {
		var c catalog.EnrichedCourseRecord
		var title, code, section, campus, instructor, credits, extra sql.NullString
		if err := rows.Scan(&title, &code, &c.Prerequisites, &section, &c.Session, &campus,
			&instructor, &credits, &c.Times, &c.Location, &c.CourseDescription, &c.Themes,
			&c.Restriction, &c.CourseLevel, &c.CourseType, &c.Year, &c.Semester, &extra); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		c.CourseTitle = stringPtr(title)
		c.CourseCode = stringPtr(code)
		c.Section = stringPtr(section)
		c.Campus = stringPtr(campus)
		c.Instructor = stringPtr(instructor)
		c.Credits = stringPtr(credits)
		if c.Extra, err = decodeExtra(stringPtr(extra)); err != nil {
			return nil, fmt.Errorf("decode extra: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *SQLite) ListRunMissingValues(ctx context.Context, runID string) ([]catalog.MissingValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, missing_count, missing_pct
		FROM missing_values
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query missing values: %w", err)
	}
	defer rows.Close()

	var missing []catalog.MissingValue
	for rows.Next() {
		var m catalog.MissingValue
		if err := rows.Scan(&m.Column, &m.Count, &m.Percent); err != nil {
			return nil, fmt.Errorf("scan missing value: %w", err)
		}
		missing = append(missing, m)
	}
	return missing, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
