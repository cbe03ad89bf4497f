package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadFile reads a JSON array of course objects from path.
func LoadFile(path string) ([]RawCourseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}

// Decode reads a JSON array of course objects. Nested objects are flattened
// into dotted column names; null and absent fields are both nil. The
// document must hold exactly one array.
func Decode(r io.Reader) ([]RawCourseRecord, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var entries []json.RawMessage
	if err := decoder.Decode(&entries); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &DataFormatError{Record: -1, Field: "courses", Err: errors.New("document is not an array")}
		}
		return nil, err
	}
	if entries == nil {
		return nil, &DataFormatError{Record: -1, Field: "courses", Err: errors.New("document is not an array")}
	}
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); err != io.EOF {
		return nil, &DataFormatError{Record: -1, Field: "courses", Err: errors.New("unexpected data after the course array")}
	}

	records := make([]RawCourseRecord, 0, len(entries))
	for i, entry := range entries {
		record, err := decodeRecord(i, entry)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(i int, entry json.RawMessage) (RawCourseRecord, error) {
	var fields map[string]json.RawMessage
	if err := unmarshalNumbers(entry, &fields); err != nil || fields == nil {
		return RawCourseRecord{}, &DataFormatError{Record: i, Field: "course", Err: errors.New("entry is not an object")}
	}

	flat := make(map[string]*string)
	if err := flatten(i, "", fields, flat); err != nil {
		return RawCourseRecord{}, err
	}

	var record RawCourseRecord
	for column, value := range flat {
		if f := record.field(column); f != nil {
			*f = value
			continue
		}
		if record.Extra == nil {
			record.Extra = make(map[string]*string)
		}
		record.Extra[column] = value
	}
	return record, nil
}

func flatten(i int, prefix string, fields map[string]json.RawMessage, out map[string]*string) error {
	for key, raw := range fields {
		column := prefix + key

		var value any
		if err := unmarshalNumbers(raw, &value); err != nil {
			return &DataFormatError{Record: i, Field: column, Err: err}
		}

		switch v := value.(type) {
		case nil:
			out[column] = nil
		case string:
			out[column] = &v
		case json.Number:
			s := v.String()
			out[column] = &s
		case bool:
			s := strconv.FormatBool(v)
			out[column] = &s
		case []any:
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return &DataFormatError{Record: i, Field: column, Err: err}
			}
			s := buf.String()
			out[column] = &s
		case map[string]any:
			if column == ColumnThemes {
				return &DataFormatError{Record: i, Field: column, Value: string(raw), Err: errNotASequence}
			}
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err != nil {
				return &DataFormatError{Record: i, Field: column, Err: err}
			}
			if err := flatten(i, column+".", nested, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func unmarshalNumbers(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(v)
}
