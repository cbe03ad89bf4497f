// Package catalog turns scraped course offerings into the enriched table the
// schedule builder reads: defaults are filled, enrollment restrictions are
// pulled out of descriptions and every course is classified by level and
// program from its code.
package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// Result is a fully enriched batch.
type Result struct {
	// Columns is the header of the enriched table.
	Columns []string
	Courses []EnrichedCourseRecord
	Missing []MissingValue
}

// Pipeline enriches batches of raw records under one set of rules.
type Pipeline struct {
	rules     *Rules
	extractor *RestrictionExtractor
	logger    *zap.Logger
}

// New validates rules and compiles the restriction patterns. A nil logger
// disables logging.
func New(rules *Rules, logger *zap.Logger) (*Pipeline, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, column := range defaultableColumns {
		if _, ok := rules.Defaults[column]; !ok {
			return nil, fmt.Errorf("rules: no default for %q", column)
		}
	}
	if rules.DefaultRestriction == "" {
		return nil, fmt.Errorf("rules: empty default restriction")
	}

	extractor, err := NewRestrictionExtractor(rules)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return &Pipeline{rules: rules, extractor: extractor, logger: logger}, nil
}

// Run enriches records. Either every record is enriched or an error is
// returned with no result; records are never modified.
func (p *Pipeline) Run(records []RawCourseRecord) (*Result, error) {
	courses := make([]EnrichedCourseRecord, len(records))
	descriptions := make([]*string, len(records))
	for i, raw := range records {
		course, err := p.clean(i, raw)
		if err != nil {
			return nil, err
		}
		courses[i] = course
		descriptions[i] = blankToNil(raw.CourseDescription)
	}
	missing := MissingValues(records)
	p.logger.Debug("Cleaned courses", zap.Int("courses", len(courses)))

	restricted := 0
	for i := range courses {
		courses[i].Restriction = p.extractor.Extract(descriptions[i])
		if courses[i].Restriction != p.rules.DefaultRestriction {
			restricted++
		}
	}
	p.logger.Debug("Extracted restrictions", zap.Int("restricted", restricted))

	for i := range courses {
		courses[i].CourseLevel, courses[i].CourseType = p.rules.classifyRecord(courses[i].CourseCode)
	}

	columns := append([]string(nil), outputColumns...)
	columns = append(columns, extraColumns(records, false)...)

	p.logger.Info("Enriched courses",
		zap.Int("courses", len(courses)),
		zap.Int("restricted", restricted),
		zap.Int("columns", len(columns)))
	return &Result{Columns: columns, Courses: courses, Missing: missing}, nil
}
