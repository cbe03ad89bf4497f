package catalog

import "strconv"

// RawCourseRecord is one course offering as emitted by a scraper. A nil field
// is missing; empty strings are treated as missing during cleaning.
type RawCourseRecord struct {
	CourseTitle       *string
	CourseCode        *string
	Prerequisites     *string
	Section           *string
	Session           *string
	Campus            *string
	Instructor        *string
	Credits           *string
	Times             *string
	Location          *string
	CourseDescription *string

	// Themes is the serialized tag sequence, e.g. `["A","B"]` or `['A', 'B']`.
	Themes *string

	Year     *string
	Semester *string

	Extra map[string]*string
}

// EnrichedCourseRecord is a course ready for the schedule builder.
type EnrichedCourseRecord struct {
	CourseTitle       *string
	CourseCode        *string
	Prerequisites     string
	Section           *string
	Session           string
	Campus            *string
	Instructor        *string
	Credits           *string
	Times             string
	Location          string
	CourseDescription string
	Themes            string
	Restriction       string
	CourseLevel       string
	CourseType        string
	Year              int
	Semester          int

	Extra map[string]*string
}

// Column names, in output order.
const (
	ColumnCourseTitle       = "course_title"
	ColumnCourseCode        = "course_code"
	ColumnPrerequisites     = "prerequisites"
	ColumnSection           = "section"
	ColumnSession           = "session"
	ColumnCampus            = "campus"
	ColumnInstructor        = "instructor"
	ColumnCredits           = "credits"
	ColumnTimes             = "times"
	ColumnLocation          = "location"
	ColumnCourseDescription = "course_description"
	ColumnThemes            = "themes"
	ColumnRestriction       = "restriction"
	ColumnCourseLevel       = "course_level"
	ColumnCourseType        = "course_type"
	ColumnYear              = "year"
	ColumnSemester          = "semester"
)

var outputColumns = []string{
	ColumnCourseTitle,
	ColumnCourseCode,
	ColumnPrerequisites,
	ColumnSection,
	ColumnSession,
	ColumnCampus,
	ColumnInstructor,
	ColumnCredits,
	ColumnTimes,
	ColumnLocation,
	ColumnCourseDescription,
	ColumnThemes,
	ColumnRestriction,
	ColumnCourseLevel,
	ColumnCourseType,
	ColumnYear,
	ColumnSemester,
}

// rawColumns are the fixed columns a scraper supplies.
var rawColumns = []string{
	ColumnCourseTitle,
	ColumnCourseCode,
	ColumnPrerequisites,
	ColumnSection,
	ColumnSession,
	ColumnCampus,
	ColumnInstructor,
	ColumnCredits,
	ColumnTimes,
	ColumnLocation,
	ColumnCourseDescription,
	ColumnThemes,
	ColumnYear,
	ColumnSemester,
}

// Columns dropped from the enriched table.
var droppedColumns = map[string]bool{
	"taken_seats":     true,
	"spaces_waiting":  true,
	"delivery_method": true,
	"dist_learning":   true,
}

func isFixedColumn(name string) bool {
	for _, c := range outputColumns {
		if c == name {
			return true
		}
	}
	return false
}

// field returns a pointer to the raw field stored under column, or nil for
// unknown columns.
func (r *RawCourseRecord) field(column string) **string {
	switch column {
	case ColumnCourseTitle:
		return &r.CourseTitle
	case ColumnCourseCode:
		return &r.CourseCode
	case ColumnPrerequisites:
		return &r.Prerequisites
	case ColumnSection:
		return &r.Section
	case ColumnSession:
		return &r.Session
	case ColumnCampus:
		return &r.Campus
	case ColumnInstructor:
		return &r.Instructor
	case ColumnCredits:
		return &r.Credits
	case ColumnTimes:
		return &r.Times
	case ColumnLocation:
		return &r.Location
	case ColumnCourseDescription:
		return &r.CourseDescription
	case ColumnThemes:
		return &r.Themes
	case ColumnYear:
		return &r.Year
	case ColumnSemester:
		return &r.Semester
	}
	return nil
}

// Value returns the text stored under column, or "" when it is missing.
func (e *EnrichedCourseRecord) Value(column string) string {
	switch column {
	case ColumnCourseTitle:
		return deref(e.CourseTitle)
	case ColumnCourseCode:
		return deref(e.CourseCode)
	case ColumnPrerequisites:
		return e.Prerequisites
	case ColumnSection:
		return deref(e.Section)
	case ColumnSession:
		return e.Session
	case ColumnCampus:
		return deref(e.Campus)
	case ColumnInstructor:
		return deref(e.Instructor)
	case ColumnCredits:
		return deref(e.Credits)
	case ColumnTimes:
		return e.Times
	case ColumnLocation:
		return e.Location
	case ColumnCourseDescription:
		return e.CourseDescription
	case ColumnThemes:
		return e.Themes
	case ColumnRestriction:
		return e.Restriction
	case ColumnCourseLevel:
		return e.CourseLevel
	case ColumnCourseType:
		return e.CourseType
	case ColumnYear:
		return strconv.Itoa(e.Year)
	case ColumnSemester:
		return strconv.Itoa(e.Semester)
	}
	return deref(e.Extra[column])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
