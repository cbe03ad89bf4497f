package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	result, err := newPipeline(t).Run(sampleRecords())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, result.Columns, rows[0])
	assert.Equal(t, "course_title", rows[0][0])
	assert.Equal(t, "semester", rows[0][16])

	assert.Equal(t, "Introduction to Programming", rows[1][0])
	assert.Equal(t, "Not open to freshmen", rows[1][12])
	assert.Equal(t, "2024", rows[1][15])
	assert.Equal(t, "", rows[1][17])
	assert.Equal(t, "2", rows[2][17])
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReportCSV(&buf, []MissingValue{
		{Column: "times", Count: 2, Percent: 66.67},
		{Column: "course_title", Count: 0, Percent: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, "column,missing_count,missing_pct\ntimes,2,66.67\ncourse_title,0,0\n", buf.String())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.csv")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "course_title\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "course_title\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_ErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.csv")
	boom := errors.New("boom")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
