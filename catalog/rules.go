package catalog

import (
	"fmt"
	"strings"
)

const (
	NoPrerequisites    = "No prerequisite(s) for this course"
	NotSpecified       = "Not specified"
	NoRestriction      = "No restrictions, except that any prerequisites must already be completed"
	NoTheme            = "Not part of any theme"
	CorequisiteLevel   = "Corequisite level"
	CorequisiteCourse  = "Corequisite course"
	UnknownLevel       = "Unknown level"
	UnknownMajor       = "Unknown major"
	generalEducation   = "General Education course"
	environmentalTrack = "Environmental and Sustainability Sciences Program's core or track elective course"
)

// Rules is the static lookup data the pipeline runs against. A Rules value is
// read-only once handed to New.
type Rules struct {
	// Defaults maps a defaultable column to the text substituted when missing.
	Defaults map[string]string `yaml:"defaults"`

	// Exclusions are case-insensitive patterns for benign uses of "not".
	Exclusions []string `yaml:"exclusions"`

	// RestrictionPatterns are tried in order; capture group 1 is the snippet.
	RestrictionPatterns []string `yaml:"restriction_patterns"`

	DefaultRestriction string `yaml:"default_restriction"`

	// CourseTypes maps an upper-case course code prefix to a program name.
	CourseTypes map[string]string `yaml:"course_types"`
}

// Overrides extends DefaultRules from configuration without replacing the
// built-in tables.
type Overrides struct {
	Defaults           map[string]string `yaml:"defaults"`
	ExtraExclusions    []string          `yaml:"extra_exclusions"`
	CourseTypes        map[string]string `yaml:"course_types"`
	DefaultRestriction string            `yaml:"default_restriction"`
}

var defaultableColumns = []string{
	ColumnPrerequisites,
	ColumnSession,
	ColumnTimes,
	ColumnLocation,
	ColumnCourseDescription,
}

// DefaultRules returns a fresh copy of the built-in rules.
func DefaultRules() *Rules {
	return &Rules{
		Defaults: map[string]string{
			ColumnPrerequisites:     NoPrerequisites,
			ColumnSession:           NotSpecified,
			ColumnTimes:             NotSpecified,
			ColumnLocation:          NotSpecified,
			ColumnCourseDescription: NotSpecified,
		},
		Exclusions: []string{
			`\bNot specified\b`,
			`Note:`,
			`\bnot limited\b`,
			`\bnot covered by other\b`,
			`\bnot necessarily\b`,
			`\bshaped not\b`,
			`does not meet`,
		},
		RestrictionPatterns: []string{
			`([^.]*\bnot as [^.)\]]+\b[^.]*)`,
			`(Not open to [^.)\]]+)(?:[.)\]]|$)`,
			`(Not available to [^.)\]]+)(?:[.)\]]|$)`,
			`\[([^\]]*not open to[^\]]*)\]`,
		},
		DefaultRestriction: NoRestriction,
		CourseTypes: map[string]string{
			"BSN":  "Nursing Program's core or track elective course",
			"BUS":  "Business Program's core or track elective course",
			"CHSS": generalEducation,
			"CS":   "Computer Science Program's core or track elective course",
			"DS":   "Data Science Program's core or track elective course",
			"CSE":  generalEducation,
			"EC":   "English and Communications Program's core or track elective course",
			"ECM":  "ECM Program's core or track elective course",
			"ECON": "Economics Program's core or track elective course",
			"ENGS": "Engineering Sciences Program's core or track elective course",
			"ENV":  environmentalTrack,
			"ESS":  environmentalTrack,
			"FND":  generalEducation,
			"HHM":  "HHM Program's core or track elective course",
			"HRSJ": "Human Rights and Social Justice Program's core or track elective course",
			"IESM": "Industrial Engineering and Systems Management Program's core or track elective course",
			"IRD":  "International Relations and Diplomacy Program's core or track elective course",
			"LAW":  "Laws Program's core or track elective course",
			"MGMT": "MGMT Program's core or track elective course",
			"PA":   "Public Affairs Program's core or track elective course",
			"PEER": "Peer Mentoring course",
			"PG":   "Politics and Governance Program's core or track elective course",
			"PH":   "Public Health Program's core or track elective course",
			"PSIA": "Political Science and International Affairs Program's core or track elective course",
			"TEFL": "Teaching English as a Foreign Language Program's core or track elective course",
			"CBE":  "CBE Program's core or track elective course",
		},
	}
}

// Apply returns a copy of r extended by o. Unknown default columns are
// rejected.
func (r *Rules) Apply(o Overrides) (*Rules, error) {
	out := &Rules{
		Defaults:            make(map[string]string, len(r.Defaults)),
		Exclusions:          append([]string(nil), r.Exclusions...),
		RestrictionPatterns: append([]string(nil), r.RestrictionPatterns...),
		DefaultRestriction:  r.DefaultRestriction,
		CourseTypes:         make(map[string]string, len(r.CourseTypes)+len(o.CourseTypes)),
	}
	for k, v := range r.Defaults {
		out.Defaults[k] = v
	}
	for k, v := range r.CourseTypes {
		out.CourseTypes[k] = v
	}

	for column, text := range o.Defaults {
		if !isDefaultable(column) {
			return nil, fmt.Errorf("column %q has no default", column)
		}
		out.Defaults[column] = text
	}
	out.Exclusions = append(out.Exclusions, o.ExtraExclusions...)
	for prefix, name := range o.CourseTypes {
		out.CourseTypes[strings.ToUpper(prefix)] = name
	}
	if o.DefaultRestriction != "" {
		out.DefaultRestriction = o.DefaultRestriction
	}
	return out, nil
}

func isDefaultable(column string) bool {
	for _, c := range defaultableColumns {
		if c == column {
			return true
		}
	}
	return false
}
