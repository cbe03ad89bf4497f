package catalog

import (
	"math"
	"sort"
)

// MissingValue is one line of the missing-value report.
type MissingValue struct {
	Column  string
	Count   int
	Percent float64
}

// MissingValues counts, per column, the records whose value is absent or
// empty. Columns are ordered by percentage, highest first.
func MissingValues(records []RawCourseRecord) []MissingValue {
	columns := append([]string(nil), rawColumns...)
	columns = append(columns, extraColumns(records, true)...)

	report := make([]MissingValue, 0, len(columns))
	for _, column := range columns {
		count := 0
		for i := range records {
			if missing(&records[i], column) {
				count++
			}
		}

		var pct float64
		if len(records) > 0 {
			pct = math.RoundToEven(float64(count)/float64(len(records))*100*100) / 100
		}
		report = append(report, MissingValue{Column: column, Count: count, Percent: pct})
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Percent > report[j].Percent
	})
	return report
}

func missing(r *RawCourseRecord, column string) bool {
	if f := r.field(column); f != nil {
		return *f == nil || **f == ""
	}
	v := r.Extra[column]
	return v == nil || *v == ""
}

// extraColumns returns the sorted union of non-fixed columns in records.
func extraColumns(records []RawCourseRecord, withDropped bool) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r.Extra {
			if isFixedColumn(k) || (!withDropped && droppedColumns[k]) {
				continue
			}
			seen[k] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}
