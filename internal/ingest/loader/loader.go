package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
)

var (
	// ErrSourceNotFound is returned when the source path does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrUnreadableSource is returned when the source exists but cannot
	// be opened or read.
	ErrUnreadableSource = errors.New("source file could not be read")
)

// rowStart matches the beginning of a new data row in the source
// dialect: an opening quote, a numeric email_id, a comma. Rows spanning
// multiple physical lines never produce this shape mid-record, so it
// doubles as a resync point after a row with unbalanced quoting.
var rowStart = regexp.MustCompile(`^"\d+,`)

// MalformedRow records one physical chunk that could not be parsed into
// the expected column count even after multiline reassembly.
type MalformedRow struct {
	Line    int    `json:"line"`
	Reason  string `json:"reason"`
	Snippet string `json:"snippet"`
}

// LoadStats summarizes one pass of the scanner over the source.
type LoadStats struct {
	PhysicalLines int
	LogicalRows   int
	Malformed     []MalformedRow
}

// RowScanner reads the source CSV one logical row at a time. The
// dialect is comma-separated with double-quote delimiters and
// doubled-quote escaping; quoted fields may span physical lines, and
// some rows wrap their entire content in a single quote pair. The
// scanner reassembles multiline records before splitting and reports
// rows it cannot split as malformed instead of failing the run.
type RowScanner struct {
	file    *os.File
	reader  *bufio.Reader
	stats   LoadStats
	row     ingestdomain.RawRow
	rowLine int
	err     error
	eof     bool
	started bool
}

// Open opens the source file for scanning. The caller must Close the
// scanner on every exit path.
func Open(path string) (*RowScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	return &RowScanner{
		file:   f,
		reader: bufio.NewReader(f),
	}, nil
}

// Close releases the underlying file handle.
func (s *RowScanner) Close() error {
	return s.file.Close()
}

// Scan advances to the next well-formed row. It returns false at end of
// input or on a read error; malformed rows are recorded in Stats and
// skipped without stopping the scan.
func (s *RowScanner) Scan() bool {
	var buf strings.Builder
	bufLine := 0

	flushMalformed := func(reason string) {
		snippet := buf.String()
		if len(snippet) > 120 {
			snippet = snippet[:120]
		}
		s.stats.LogicalRows++
		s.stats.Malformed = append(s.stats.Malformed, MalformedRow{
			Line:    bufLine,
			Reason:  reason,
			Snippet: snippet,
		})
		buf.Reset()
	}

	for {
		line, ok := s.readLine()
		if !ok {
			if buf.Len() > 0 {
				flushMalformed("unbalanced quoting at end of input")
			}
			return false
		}

		if buf.Len() == 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			// Header row is consumed, never emitted as data.
			if !s.started && isHeaderLine(line) {
				s.started = true
				continue
			}
			s.started = true
			bufLine = s.stats.PhysicalLines
			buf.WriteString(line)
		} else {
			// A fresh row start while quoting is still open means the
			// buffered record can never balance.
			if rowStart.MatchString(line) {
				flushMalformed("unbalanced quoting")
				bufLine = s.stats.PhysicalLines
				buf.WriteString(line)
			} else {
				buf.WriteString("\n")
				buf.WriteString(line)
			}
		}

		if countQuotes(buf.String())%2 != 0 {
			continue // record incomplete, keep consuming lines
		}

		row, ok := splitRow(buf.String())
		if !ok {
			flushMalformed("column count mismatch")
			continue
		}

		s.stats.LogicalRows++
		s.row = row
		s.rowLine = bufLine
		return true
	}
}

// Row returns the last row produced by Scan.
func (s *RowScanner) Row() ingestdomain.RawRow { return s.row }

// Line returns the physical line where the last row started.
func (s *RowScanner) Line() int { return s.rowLine }

// Err returns the first read error encountered, if any.
func (s *RowScanner) Err() error { return s.err }

// Stats returns the counters accumulated so far.
func (s *RowScanner) Stats() LoadStats { return s.stats }

func (s *RowScanner) readLine() (string, bool) {
	if s.eof {
		return "", false
	}
	raw, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF {
			s.eof = true
			if len(raw) == 0 {
				return "", false
			}
		} else {
			s.err = fmt.Errorf("%w: %v", ErrUnreadableSource, err)
			return "", false
		}
	}
	s.stats.PhysicalLines++
	line := strings.TrimRight(string(decodeBytes(raw)), "\r\n")
	return line, true
}

// LoadRows drives a scanner over the entire source and returns the raw
// rows in file order together with the pass statistics.
func LoadRows(path string) ([]ingestdomain.RawRow, []int, LoadStats, error) {
	s, err := Open(path)
	if err != nil {
		return nil, nil, LoadStats{}, err
	}
	defer s.Close()

	var rows []ingestdomain.RawRow
	var lines []int
	for s.Scan() {
		rows = append(rows, s.Row())
		lines = append(lines, s.Line())
	}
	if err := s.Err(); err != nil {
		return nil, nil, s.Stats(), err
	}
	if n := len(s.Stats().Malformed); n > 0 {
		log.Printf("[Ingest] Skipped %d malformed rows in %s", n, path)
	}
	return rows, lines, s.Stats(), nil
}

// decodeBytes returns the line as UTF-8, falling back to a latin-1
// interpretation for the occasional legacy-encoded export.
func decodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func isHeaderLine(line string) bool {
	first := strings.Trim(strings.SplitN(line, ",", 2)[0], `" `)
	return strings.EqualFold(first, "email_id")
}

func countQuotes(s string) int {
	return strings.Count(s, `"`)
}

// splitRow splits one logical row into the eight named columns.
//
// It first attempts a standard quote-aware split. Rows that wrap their
// whole content in a single quote pair collapse to one field there; for
// those the fixed column order is recovered by splitting three fields
// off each end and treating whatever remains in the middle as the body.
func splitRow(row string) (ingestdomain.RawRow, bool) {
	fields, balanced := splitFields(row)
	if !balanced {
		return nil, false
	}

	switch {
	case len(fields) == len(ingestdomain.Columns):
		return toRawRow(fields), true
	case len(fields) == 1:
		if packed, ok := splitPacked(fields[0]); ok {
			return toRawRow(packed), true
		}
		return nil, false
	case len(fields) > len(ingestdomain.Columns):
		// Unquoted commas inside the body inflate the field count;
		// recover by splitting from both ends of the raw row.
		if packed, ok := splitPacked(strings.Trim(row, `"`)); ok {
			return toRawRow(packed), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// splitFields is a quote-aware single-row splitter: fields may be
// wrapped in double quotes, and a doubled quote inside a quoted field
// is one literal quote. Returns balanced=false when quoting never
// closes.
func splitFields(s string) ([]string, bool) {
	var fields []string
	var b strings.Builder
	inQuotes := false
	atFieldStart := true

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(s) && s[i+1] == '"' {
					b.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				b.WriteByte(c)
			}
		case c == '"' && atFieldStart:
			inQuotes = true
			atFieldStart = false
		case c == ',':
			fields = append(fields, b.String())
			b.Reset()
			atFieldStart = true
		default:
			b.WriteByte(c)
			atFieldStart = false
		}
	}
	if inQuotes {
		return nil, false
	}
	fields = append(fields, b.String())
	return fields, true
}

// splitPacked recovers the eight columns from a row whose interior was
// not field-quoted: the three trailing columns split off the right, the
// four leading columns split off the left, and the middle chunk is the
// body (commas and all).
func splitPacked(s string) ([]string, bool) {
	right := rsplitN(s, ",", 3)
	if len(right) < 4 {
		return nil, false
	}
	left := strings.SplitN(right[0], ",", 5)
	if len(left) < 5 {
		return nil, false
	}

	body := strings.ReplaceAll(left[4], `""`, `"`)
	if strings.HasPrefix(body, `"`) && strings.HasSuffix(body, `"`) && len(body) >= 2 {
		body = body[1 : len(body)-1]
	}

	return []string{
		left[0], left[1], left[2], left[3], body,
		right[1], right[2], right[3],
	}, true
}

func toRawRow(fields []string) ingestdomain.RawRow {
	row := make(ingestdomain.RawRow, len(ingestdomain.Columns))
	for i, col := range ingestdomain.Columns {
		row[col] = fields[i]
	}
	return row
}

// rsplitN splits s on sep from the right into at most n+1 parts,
// mirroring Python's str.rsplit used by the original cleaning script.
func rsplitN(s, sep string, n int) []string {
	parts := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		idx := strings.LastIndex(s, sep)
		if idx < 0 {
			break
		}
		parts = append([]string{s[idx+len(sep):]}, parts...)
		s = s[:idx]
	}
	return append([]string{s}, parts...)
}
