package db

import (
	"context"
	"fmt"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS enrichment_runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
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
	missing_pct DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

const insertRun = `INSERT INTO enrichment_runs (id, source, created_at, course_count, columns) VALUES ($1, $2, $3, $4, $5)`
const listRuns = `SELECT id, source, created_at, course_count, columns FROM enrichment_runs ORDER BY created_at DESC`

const insertEnrichedCourse = `INSERT INTO enriched_courses (run_id, position, course_title, course_code, prerequisites, section, session, campus, instructor, credits, times, location, course_description, themes, restriction, course_level, course_type, year, semester, extra) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
const listEnrichedCourses = `SELECT course_title, course_code, prerequisites, section, session, campus, instructor, credits, times, location, course_description, themes, restriction, course_level, course_type, year, semester, extra FROM enriched_courses WHERE run_id = $1 ORDER BY position`

const insertMissingValue = `INSERT INTO missing_values (run_id, position, column_name, missing_count, missing_pct) VALUES ($1, $2, $3, $4, $5)`
const listMissingValues = `SELECT column_name, missing_count, missing_pct FROM missing_values WHERE run_id = $1 ORDER BY position`

func insertCallback(ct pgconn.CommandTag) error {
	return nil
}

func (d *Database) CreateSchema(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, schema)
	return err
}

// SaveRun stores the run, its courses and its missing-value report in a
// single transaction.
func (d *Database) SaveRun(ctx context.Context, run Run, result *catalog.Result) error {
	columns, err := encodeColumns(run.Columns)
	if err != nil {
		return err
	}

	batch := pgx.Batch{}
	var queuedQueries []*pgx.QueuedQuery

	queuedQueries = append(queuedQueries, batch.Queue(insertRun, run.ID, run.Source, run.CreatedAt, run.CourseCount, columns))

	for i, course := range result.Courses {
		extra, err := encodeExtra(course.Extra)
		if err != nil {
			return fmt.Errorf("encode course %d: %w", i, err)
		}
		queuedQueries = append(
			queuedQueries,
			batch.Queue(
				insertEnrichedCourse,
				run.ID,
				i,
				course.CourseTitle,
				course.CourseCode,
				course.Prerequisites,
				course.Section,
				course.Session,
				course.Campus,
				course.Instructor,
				course.Credits,
				course.Times,
				course.Location,
				course.CourseDescription,
				course.Themes,
				course.Restriction,
				course.CourseLevel,
				course.CourseType,
				course.Year,
				course.Semester,
				extra,
			),
		)
	}

	for i, missing := range result.Missing {
		queuedQueries = append(queuedQueries, batch.Queue(insertMissingValue, run.ID, i, missing.Column, missing.Count, missing.Percent))
	}

	for _, queuedQuery := range queuedQueries {
		queuedQuery.Exec(insertCallback)
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, &batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (d *Database) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := d.Pool.Query(ctx, listRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var columns string
		if err := rows.Scan(&run.ID, &run.Source, &run.CreatedAt, &run.CourseCount, &columns); err != nil {
			return nil, err
		}
		if run.Columns, err = decodeColumns(columns); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

func (d *Database) ListRunCourses(ctx context.Context, runID string) ([]catalog.EnrichedCourseRecord, error) {
	rows, err := d.Pool.Query(ctx, listEnrichedCourses, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []catalog.EnrichedCourseRecord
	for rows.Next() {
		var course catalog.EnrichedCourseRecord
		var extra *string
		if err := rows.Scan(
			&course.CourseTitle,
			&course.CourseCode,
			&course.Prerequisites,
			&course.Section,
			&course.Session,
			&course.Campus,
			&course.Instructor,
			&course.Credits,
			&course.Times,
			&course.Location,
			&course.CourseDescription,
			&course.Themes,
			&course.Restriction,
			&course.CourseLevel,
			&course.CourseType,
			&course.Year,
			&course.Semester,
			&extra,
		); err != nil {
			return nil, err
		}
		if course.Extra, err = decodeExtra(extra); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (d *Database) ListRunMissingValues(ctx context.Context, runID string) ([]catalog.MissingValue, error) {
	rows, err := d.Pool.Query(ctx, listMissingValues, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missing []catalog.MissingValue
	for rows.Next() {
		var m catalog.MissingValue
		if err := rows.Scan(&m.Column, &m.Count, &m.Percent); err != nil {
			return nil, err
		}
		missing = append(missing, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return missing, nil
}
