package catalog

import (
	"strings"
	"unicode"
)

var levelsByDigit = map[rune]string{
	'0': "Other",
	'1': "Lower level",
	'2': "Upper level",
	'3': "Masters level",
}

func isCorequisite(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), "corequisite")
}

// Level maps a course code to its academic level using the first digit found
// anywhere in the code.
func (r *Rules) Level(code string) string {
	if strings.TrimSpace(code) == "" {
		return UnknownLevel
	}
	if isCorequisite(code) {
		return CorequisiteLevel
	}

	i := strings.IndexFunc(code, func(c rune) bool { return c >= '0' && c <= '9' })
	if i < 0 {
		return UnknownLevel
	}
	if level, ok := levelsByDigit[rune(code[i])]; ok {
		return level
	}
	return UnknownLevel
}

// Type maps a course code to a program name by its leading letters. Prefixes
// missing from the table are returned as is.
func (r *Rules) Type(code string) string {
	// Blank codes are treated like missing ones instead of being echoed back
	// as a whitespace prefix.
	if strings.TrimSpace(code) == "" {
		return UnknownMajor
	}
	if isCorequisite(code) {
		return CorequisiteCourse
	}

	prefix := strings.ToUpper(leadingLetters(code))
	if prefix == "" {
		prefix = strings.ToUpper(code)
	}
	if name, ok := r.CourseTypes[prefix]; ok {
		return name
	}
	return prefix
}

func (r *Rules) Classify(code string) (level, courseType string) {
	return r.Level(code), r.Type(code)
}

func leadingLetters(code string) string {
	end := 0
	for i, c := range code {
		if c > unicode.MaxASCII || !unicode.IsLetter(c) {
			break
		}
		end = i + 1
	}
	return code[:end]
}

// classifyRecord applies Classify to a possibly missing code.
func (r *Rules) classifyRecord(code *string) (string, string) {
	if code == nil {
		return UnknownLevel, UnknownMajor
	}
	return r.Classify(*code)
}
