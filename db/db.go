package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists enrichment runs.
type Store interface {
	SaveRun(ctx context.Context, run Run, result *catalog.Result) error
	ListRuns(ctx context.Context) ([]Run, error)
	ListRunCourses(ctx context.Context, runID string) ([]catalog.EnrichedCourseRecord, error)
	ListRunMissingValues(ctx context.Context, runID string) ([]catalog.MissingValue, error)
	Close() error
}

type Database struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Database{Pool: pool}, nil
}

func (d *Database) Close() error {
	d.Pool.Close()
	return nil
}

func encodeColumns(columns []string) (string, error) {
	data, err := json.Marshal(columns)
	return string(data), err
}

func decodeColumns(data string) ([]string, error) {
	var columns []string
	err := json.Unmarshal([]byte(data), &columns)
	return columns, err
}

// encodeExtra renders passthrough columns as a JSON object; nil when there
// are none.
func encodeExtra(extra map[string]*string) (*string, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func decodeExtra(data *string) (map[string]*string, error) {
	if data == nil {
		return nil, nil
	}
	var extra map[string]*string
	err := json.Unmarshal([]byte(*data), &extra)
	return extra, err
}
