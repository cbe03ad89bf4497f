package catalog

import (
	"errors"
	"fmt"
)

var ErrDataFormat = errors.New("data format error")

// DataFormatError reports a required field that is missing or malformed.
// Record is the zero-based position of the offending record in the batch, or
// -1 when the document itself is malformed.
type DataFormatError struct {
	Record int
	Field  string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("record %d: field %q", e.Record, e.Field)
	if e.Record < 0 {
		msg = fmt.Sprintf("document: %q", e.Field)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataFormatError) Unwrap() error { return e.Err }

func (e *DataFormatError) Is(target error) bool { return target == ErrDataFormat }
