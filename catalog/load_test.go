package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coursesJSON = `[
  {
    "course_title": "Data Structures (CS120)",
    "course_code": "CS120",
    "times": "",
    "location": null,
    "credits": 3,
    "themes": ["Quantitative Reasoning", "Technology"],
    "year": 2024,
    "semester": "2",
    "dist_learning": false,
    "meta": {"source": "jenzabar", "page": 4}
  },
  {
    "course_title": "Public Health Basics",
    "course_code": "PH101",
    "themes": "['Health']",
    "year": "2024",
    "semester": 2
  }
]`

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(coursesJSON))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "CS120", *first.CourseCode)
	assert.Equal(t, "", *first.Times)
	assert.Nil(t, first.Location)
	assert.Nil(t, first.Session)
	assert.Equal(t, "3", *first.Credits)
	assert.Equal(t, `["Quantitative Reasoning","Technology"]`, *first.Themes)
	assert.Equal(t, "2024", *first.Year)
	assert.Equal(t, "false", *first.Extra["dist_learning"])
	assert.Equal(t, "jenzabar", *first.Extra["meta.source"])
	assert.Equal(t, "4", *first.Extra["meta.page"])

	assert.Equal(t, "['Health']", *records[1].Themes)
	assert.Equal(t, "2", *records[1].Semester)
}

func TestDecode_ThenRun(t *testing.T) {
	records, err := Decode(strings.NewReader(coursesJSON))
	require.NoError(t, err)

	result, err := newPipeline(t).Run(records)
	require.NoError(t, err)

	assert.Equal(t, NotSpecified, result.Courses[0].Times)
	assert.Equal(t, "This course belongs to themes Quantitative Reasoning, Technology.", result.Courses[0].Themes)
	assert.Equal(t, "This course belongs to theme Health.", result.Courses[1].Themes)
	assert.Equal(t, "Public Health Program's core or track elective course", result.Courses[1].CourseType)
	assert.Contains(t, result.Columns, "meta.source")
	assert.NotContains(t, result.Columns, "dist_learning")
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string]string{
		"object document": `{"course_title": "x"}`,
		"scalar entry":    `[1]`,
		"null entry":      `[null]`,
		"object themes":   `[{"themes": {"a": 1}}]`,
		"null document":   `null`,
		"trailing data":   `[{"year": 2024, "semester": 1}] trailing garbage {`,
		"two arrays":      `[{"year": 2024, "semester": 1}][{"year": 2024, "semester": 2}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrDataFormat)
		})
	}
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	records, err := Decode(strings.NewReader("[]\n\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(coursesJSON), 0o644))

	records, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
