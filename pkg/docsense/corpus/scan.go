package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// recordScanner reads the comma-separated records produced by Write. Unlike
// encoding/csv it returns quoted fields byte for byte, so a "\r\n" inside a
// description is not folded into "\n". Records end with "\n" or "\r\n"
// outside quotes, blank lines are skipped, and every record must have as many
// fields as the first one.
type recordScanner struct {
	br     *bufio.Reader
	line   int
	fields int
}

func newRecordScanner(r io.Reader) *recordScanner {
	return &recordScanner{br: bufio.NewReader(r), line: 1}
}

// Read returns the next record, or io.EOF once the input is exhausted.
func (s *recordScanner) Read() ([]string, error) {
	if err := s.skipBlankLines(); err != nil {
		return nil, err
	}

	start := s.line
	var record []string
	for {
		field, last, err := s.field()
		if err != nil {
			return nil, fmt.Errorf("record on line %d: %w", start, err)
		}
		record = append(record, field)
		if last {
			break
		}
	}

	if s.fields == 0 {
		s.fields = len(record)
	} else if len(record) != s.fields {
		return nil, fmt.Errorf("record on line %d: wrong number of fields: got %d, want %d", start, len(record), s.fields)
	}
	return record, nil
}

func (s *recordScanner) skipBlankLines() error {
	for {
		b, err := s.br.Peek(1)
		if err != nil {
			return err
		}
		switch b[0] {
		case '\n':
			s.br.Discard(1)
			s.line++
			continue
		case '\r':
			if p, _ := s.br.Peek(2); len(p) == 2 && p[1] == '\n' {
				s.br.Discard(2)
				s.line++
				continue
			}
		}
		return nil
	}
}

// field reads one field and reports whether it closed the record.
func (s *recordScanner) field() (string, bool, error) {
	b, err := s.br.ReadByte()
	if errors.Is(err, io.EOF) {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	if b == '"' {
		return s.quoted()
	}
	if err := s.br.UnreadByte(); err != nil {
		return "", false, err
	}
	return s.bare()
}

func (s *recordScanner) bare() (string, bool, error) {
	var sb strings.Builder
	for {
		b, err := s.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return sb.String(), true, nil
		}
		if err != nil {
			return "", false, err
		}
		switch b {
		case ',':
			return sb.String(), false, nil
		case '\n':
			s.line++
			return sb.String(), true, nil
		case '\r':
			if s.crlf() {
				return sb.String(), true, nil
			}
			sb.WriteByte(b)
		case '"':
			return "", false, errors.New(`bare " in non-quoted field`)
		default:
			sb.WriteByte(b)
		}
	}
}

func (s *recordScanner) quoted() (string, bool, error) {
	var sb strings.Builder
	for {
		b, err := s.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return "", false, errors.New("unterminated quoted field")
		}
		if err != nil {
			return "", false, err
		}
		if b != '"' {
			if b == '\n' {
				s.line++
			}
			sb.WriteByte(b)
			continue
		}

		next, err := s.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return sb.String(), true, nil
		}
		if err != nil {
			return "", false, err
		}
		switch next {
		case '"':
			sb.WriteByte('"')
		case ',':
			return sb.String(), false, nil
		case '\n':
			s.line++
			return sb.String(), true, nil
		case '\r':
			if s.crlf() {
				return sb.String(), true, nil
			}
			return "", false, errors.New(`extraneous "\r" after quoted field`)
		default:
			return "", false, fmt.Errorf("extraneous %q after quoted field", next)
		}
	}
}

// crlf consumes the "\n" of a "\r\n" terminator whose "\r" was just read.
func (s *recordScanner) crlf() bool {
	p, err := s.br.Peek(1)
	if err != nil || p[0] != '\n' {
		return false
	}
	s.br.Discard(1)
	s.line++
	return true
}
