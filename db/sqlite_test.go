package db

import (
	"context"
	"testing"
	"time"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func enrich(t *testing.T) *catalog.Result {
	t.Helper()
	p, err := catalog.New(catalog.DefaultRules(), nil)
	require.NoError(t, err)

	result, err := p.Run([]catalog.RawCourseRecord{
		{
			CourseTitle:       str("Operating Systems (CS215)"),
			CourseCode:        str("CS215"),
			Instructor:        str("A. Petrosyan"),
			CourseDescription: str("Not open to students who took CS210."),
			Themes:            str(`["Technology"]`),
			Year:              str("2024"),
			Semester:          str("1"),
			Extra:             map[string]*string{"room": str("PAB 203")},
		},
		{
			CourseTitle: str("Lab"),
			CourseCode:  str("Corequisite"),
			Year:        str("2024"),
			Semester:    str("1"),
		},
	})
	require.NoError(t, err)
	return result
}

func TestSQLite_SaveRunRoundTrip(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()
	result := enrich(t)

	run := NewRun("courses.json", len(result.Courses), result.Columns)
	require.NoError(t, store.SaveRun(ctx, run, result))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "courses.json", runs[0].Source)
	assert.Equal(t, 2, runs[0].CourseCount)
	assert.Equal(t, result.Columns, runs[0].Columns)
	assert.WithinDuration(t, run.CreatedAt, runs[0].CreatedAt, time.Millisecond)

	courses, err := store.ListRunCourses(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(result.Courses, courses); diff != "" {
		t.Errorf("courses mismatch (-saved +loaded):\n%s", diff)
	}

	missing, err := store.ListRunMissingValues(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Missing, missing)
}

func TestSQLite_SaveRunIsAtomic(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()
	result := enrich(t)

	run := NewRun("courses.json", len(result.Courses), result.Columns)
	require.NoError(t, store.SaveRun(ctx, run, result))

	// Same id again violates the primary key; nothing from the second
	// attempt may remain.
	require.Error(t, store.SaveRun(ctx, run, result))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	courses, err := store.ListRunCourses(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestSQLite_ListRunCoursesUnknownRun(t *testing.T) {
	store := openTestDB(t)

	courses, err := store.ListRunCourses(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestNewRun(t *testing.T) {
	a := NewRun("a.json", 1, nil)
	b := NewRun("a.json", 1, nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
}
