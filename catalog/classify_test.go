package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRules_Level(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		code string
		want string
	}{
		{"CS110", "Lower level"},
		{"CS210", "Upper level"},
		{"CS310", "Masters level"},
		{"FND101", "Lower level"},
		{"BUS077", "Other"},
		{"Corequisite", CorequisiteLevel},
		{"  corequisite ", CorequisiteLevel},
		{"ABC", UnknownLevel},
		{"CS410", UnknownLevel},
		{"PH9", UnknownLevel},
		{"", UnknownLevel},
		{"X-2", "Upper level"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Level(tt.code))
		})
	}
}

func TestRules_Type(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		code string
		want string
	}{
		{"CS110", "Computer Science Program's core or track elective course"},
		{"cs110", "Computer Science Program's core or track elective course"},
		{"CHSS200", "General Education course"},
		{"FND101", "General Education course"},
		{"ESS101", "Environmental and Sustainability Sciences Program's core or track elective course"},
		{"PEER001", "Peer Mentoring course"},
		{"ZZZ100", "ZZZ"},
		{"Corequisite", CorequisiteCourse},
		{"CORequisite", CorequisiteCourse},
		{"101", "101"},
		{"", UnknownMajor},
		{"  ", UnknownMajor},
		{"\t", UnknownMajor},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Type(tt.code))
		})
	}
}

func TestRules_ClassifyIsDeterministic(t *testing.T) {
	rules := DefaultRules()
	for _, code := range []string{"CS110", "ZZZ100", "Corequisite", "ABC", "ENGS301"} {
		level, courseType := rules.Classify(code)
		for i := 0; i < 5; i++ {
			l, ct := rules.Classify(code)
			assert.Equal(t, level, l, code)
			assert.Equal(t, courseType, ct, code)
		}
	}
}

func TestRules_ClassifyMissingCode(t *testing.T) {
	level, courseType := DefaultRules().classifyRecord(nil)
	assert.Equal(t, UnknownLevel, level)
	assert.Equal(t, UnknownMajor, courseType)
}

func TestRules_ApplyCourseTypes(t *testing.T) {
	rules, err := DefaultRules().Apply(Overrides{
		CourseTypes: map[string]string{"mba": "MBA Program's core or track elective course"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	assert.Equal(t, "MBA Program's core or track elective course", rules.Type("MBA301"))
	assert.Equal(t, "MBA", DefaultRules().Type("MBA301"))
}

func TestRules_ApplyRejectsUnknownDefault(t *testing.T) {
	_, err := DefaultRules().Apply(Overrides{Defaults: map[string]string{"year": "2024"}})
	assert.Error(t, err)
}
