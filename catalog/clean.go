package catalog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	prerequisiteMarker = regexp.MustCompile(`\(Prerequisite\)`)
	trailingCode       = regexp.MustCompile(`\s*\(([^)]*)\)\s*$`)
)

// normalize returns a copy of r with empty strings turned into nil.
func normalize(r RawCourseRecord) RawCourseRecord {
	out := r
	for _, column := range rawColumns {
		f := out.field(column)
		*f = blankToNil(*f)
	}
	if r.Extra != nil {
		out.Extra = make(map[string]*string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = blankToNil(v)
		}
	}
	return out
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return clone(s)
}

// cleanTitle removes the "(Prerequisite)" marker and a trailing parenthesised
// group from the title. The group doubles as the course code when none was
// scraped.
func cleanTitle(title, code *string) (*string, *string) {
	if title == nil {
		return nil, code
	}

	t := strings.TrimSpace(prerequisiteMarker.ReplaceAllString(*title, ""))
	if m := trailingCode.FindStringSubmatch(t); m != nil {
		if code == nil && strings.TrimSpace(m[1]) != "" {
			c := strings.TrimSpace(m[1])
			code = &c
		}
		t = strings.TrimSpace(t[:len(t)-len(m[0])])
	}
	return &t, code
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// parseTerm coerces a year or semester to an integer. Integral floats such
// as "2024.0" are accepted.
func parseTerm(i int, column string, value *string) (int, error) {
	if value == nil {
		return 0, &DataFormatError{Record: i, Field: column, Err: errors.New("missing")}
	}

	text := strings.TrimSpace(*value)
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, &DataFormatError{Record: i, Field: column, Value: *value, Err: errors.New("not an integer")}
}

// clean fills defaults, coerces the term fields and renders themes for
// record i. The returned record has no restriction or classification yet.
func (p *Pipeline) clean(i int, raw RawCourseRecord) (EnrichedCourseRecord, error) {
	r := normalize(raw)
	d := p.rules.Defaults

	year, err := parseTerm(i, ColumnYear, r.Year)
	if err != nil {
		return EnrichedCourseRecord{}, err
	}
	semester, err := parseTerm(i, ColumnSemester, r.Semester)
	if err != nil {
		return EnrichedCourseRecord{}, err
	}
	themes, err := describeRecordThemes(i, r.Themes)
	if err != nil {
		return EnrichedCourseRecord{}, err
	}

	title, code := cleanTitle(r.CourseTitle, r.CourseCode)

	out := EnrichedCourseRecord{
		CourseTitle:       title,
		CourseCode:        code,
		Prerequisites:     orDefault(r.Prerequisites, d[ColumnPrerequisites]),
		Section:           r.Section,
		Session:           orDefault(r.Session, d[ColumnSession]),
		Campus:            r.Campus,
		Instructor:        r.Instructor,
		Credits:           r.Credits,
		Times:             orDefault(r.Times, d[ColumnTimes]),
		Location:          orDefault(r.Location, d[ColumnLocation]),
		CourseDescription: orDefault(r.CourseDescription, d[ColumnCourseDescription]),
		Themes:            themes,
		Year:              year,
		Semester:          semester,
	}

	for k, v := range r.Extra {
		if droppedColumns[k] || isFixedColumn(k) {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]*string)
		}
		out.Extra[k] = v
	}
	return out, nil
}
