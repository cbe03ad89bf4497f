package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotASequence = errors.New("theme payload is not a sequence")

// DescribeThemes renders theme tags as a sentence.
func DescribeThemes(tags []string) string {
	switch len(tags) {
	case 0:
		return NoTheme
	case 1:
		return fmt.Sprintf("This course belongs to theme %s.", tags[0])
	}
	return fmt.Sprintf("This course belongs to themes %s.", strings.Join(tags, ", "))
}

// ParseThemes decodes a serialized tag sequence. Both JSON arrays and list
// literals with single-quoted strings are accepted; an empty payload has no
// tags.
func ParseThemes(payload string) ([]string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}

	if tags, err := parseJSONThemes(payload); err == nil {
		return tags, nil
	}
	return parseListLiteral(payload)
}

func parseJSONThemes(payload string) ([]string, error) {
	if payload[0] != '[' {
		return nil, errNotASequence
	}
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()

	var items []any
	if err := decoder.Decode(&items); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errNotASequence
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			tags = append(tags, v)
		case json.Number:
			tags = append(tags, v.String())
		default:
			return nil, fmt.Errorf("unsupported theme tag %v", item)
		}
	}
	return tags, nil
}

// parseListLiteral handles payloads such as `['A', "B", 3]` or `('A',)`.
func parseListLiteral(payload string) ([]string, error) {
	var closer byte
	switch payload[0] {
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return nil, errNotASequence
	}

	s := literalScanner{src: payload, pos: 1}
	var tags []string
	for {
		s.skipSpace()
		if s.done() {
			return nil, errors.New("unterminated sequence")
		}
		if s.peek() == closer {
			s.pos++
			break
		}

		tag, err := s.item()
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)

		s.skipSpace()
		if s.done() {
			return nil, errors.New("unterminated sequence")
		}
		switch s.peek() {
		case ',':
			s.pos++
		case closer:
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", s.peek(), s.pos)
		}
	}

	s.skipSpace()
	if !s.done() {
		return nil, fmt.Errorf("trailing data at offset %d", s.pos)
	}
	return tags, nil
}

type literalScanner struct {
	src string
	pos int
}

func (s *literalScanner) done() bool { return s.pos >= len(s.src) }

func (s *literalScanner) peek() byte { return s.src[s.pos] }

func (s *literalScanner) skipSpace() {
	for !s.done() && strings.IndexByte(" \t\r\n", s.peek()) >= 0 {
		s.pos++
	}
}

func (s *literalScanner) item() (string, error) {
	switch c := s.peek(); {
	case c == '\'' || c == '"':
		return s.quoted(c)
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return s.number()
	default:
		return "", fmt.Errorf("unexpected %q at offset %d", c, s.pos)
	}
}

func (s *literalScanner) quoted(quote byte) (string, error) {
	s.pos++
	var buf bytes.Buffer
	for !s.done() {
		c := s.peek()
		s.pos++
		switch c {
		case quote:
			return buf.String(), nil
		case '\\':
			if s.done() {
				return "", errors.New("unterminated escape")
			}
			buf.WriteByte(unescape(s.peek()))
			s.pos++
		default:
			buf.WriteByte(c)
		}
	}
	return "", errors.New("unterminated string")
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return c
}

func (s *literalScanner) number() (string, error) {
	start := s.pos
	s.pos++
	for !s.done() && strings.IndexByte("0123456789.eE+-_", s.peek()) >= 0 {
		s.pos++
	}
	text := s.src[start:s.pos]
	n := json.Number(strings.ReplaceAll(text, "_", ""))
	if _, err := n.Float64(); err != nil {
		return "", fmt.Errorf("invalid number %q", text)
	}
	return text, nil
}

// describeRecordThemes decodes and renders the themes of record i.
func describeRecordThemes(i int, payload *string) (string, error) {
	if payload == nil {
		return NoTheme, nil
	}
	tags, err := ParseThemes(*payload)
	if err != nil {
		return "", &DataFormatError{Record: i, Field: ColumnThemes, Value: *payload, Err: err}
	}
	return DescribeThemes(tags), nil
}
