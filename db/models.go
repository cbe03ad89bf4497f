package db

import (
	"time"

	"github.com/google/uuid"
)

// Run is one enrichment of a scrape cycle's output.
type Run struct {
	ID          string
	Source      string
	CreatedAt   time.Time
	CourseCount int

	// Columns is the header the run's table was written with.
	Columns []string
}

func NewRun(source string, courseCount int, columns []string) Run {
	return Run{
		ID:          uuid.NewString(),
		Source:      source,
		CreatedAt:   time.Now().UTC(),
		CourseCount: courseCount,
		Columns:     columns,
	}
}
