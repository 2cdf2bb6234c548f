package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Column positions of an import row.
const (
	colDate = iota
	colDescription
	colAmount
	colCategory
	numColumns
)

var utf8BOM = []byte("\ufeff")

// ErrMalformedInput is returned when the row stream cannot be parsed.
var ErrMalformedInput = errors.New("malformed import input")

// RawRow is one record read from the input, before any checks.
type RawRow struct {
	// Line is the 1-based line number where the record starts.
	Line   int
	Fields []string
}

// Rows returns a lazy single-pass sequence over the CSV records in r.
// Records may have any number of fields; there is no header row.
// A leading UTF-8 byte order mark is dropped. Iteration stops after the first error.
func Rows(r io.Reader) iter.Seq2[RawRow, error] {
	return func(yield func(RawRow, error) bool) {
		br := bufio.NewReader(r)
		if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}

		reader := csv.NewReader(br)
		reader.FieldsPerRecord = -1

		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				var parseErr *csv.ParseError
				if errors.As(err, &parseErr) {
					err = fmt.Errorf("%w: %w", ErrMalformedInput, err)
				} else {
					err = fmt.Errorf("failed to read import stream: %w", err)
				}
				yield(RawRow{}, err)
				return
			}

			line, _ := reader.FieldPos(0)
			if !yield(RawRow{Line: line, Fields: record}, nil) {
				return
			}
		}
	}
}

// SliceRows adapts in-memory records to a row sequence. Line numbers start at 1.
func SliceRows(records [][]string) iter.Seq2[RawRow, error] {
	return func(yield func(RawRow, error) bool) {
		for i, record := range records {
			if !yield(RawRow{Line: i + 1, Fields: record}, nil) {
				return
			}
		}
	}
}

// ParsedCandidate is a row with its fields trimmed and mapped to columns.
type ParsedCandidate struct {
	Line        int
	Raw         []string
	Date        string
	Description string
	Amount      string
	Category    string
	// Trimmed holds every field trimmed, padded to at least four columns.
	Trimmed []string
}

// Parse trims every field of r and pads missing trailing columns with blanks.
// Blank columns past the fourth are dropped.
func Parse(r RawRow) ParsedCandidate {
	trimmed := make([]string, max(len(r.Fields), numColumns))
	for i, f := range r.Fields {
		trimmed[i] = strings.TrimSpace(f)
	}
	for len(trimmed) > numColumns && trimmed[len(trimmed)-1] == "" {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return ParsedCandidate{
		Line:        r.Line,
		Raw:         r.Fields,
		Date:        trimmed[colDate],
		Description: trimmed[colDescription],
		Amount:      trimmed[colAmount],
		Category:    trimmed[colCategory],
		Trimmed:     trimmed,
	}
}

// IsEmpty reports whether every field is blank.
func (p ParsedCandidate) IsEmpty() bool {
	for _, f := range p.Trimmed {
		if f != "" {
			return false
		}
	}
	return true
}

// Hash returns a content hash of the trimmed fields. Each field is length-prefixed
// so that field boundaries cannot be forged by the content.
func (p ParsedCandidate) Hash() uint64 {
	h := xxhash.New()
	for _, f := range p.Trimmed {
		_, _ = h.WriteString(strconv.Itoa(len(f)))
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(f)
	}
	return h.Sum64()
}
