package simdcsv

import (
	"io"
	"strings"
)

// Reader reads records from a CSV-encoded input.
//
// As returned by NewReader, a Reader is permissive: FieldsPerRecord is -1
// (no field-count check) and LazyQuotes is true (malformed quoting
// produces a RowWarning rather than a hard error), matching this package's
// row-level-warning philosophy rather than encoding/csv's strict default.
// The exported fields can be changed to customize behavior before the
// first call to Read or ReadAll.
type Reader struct {
	// Comma is the field delimiter (set to ',' by NewReader).
	Comma rune

	// Quote is the quote character (set to '"' by NewReader). 0 disables
	// quoting entirely.
	Quote rune

	// Comment, if not 0, is the comment prefix. Lines beginning with
	// Comment are skipped entirely, never returned by Read.
	Comment rune

	// EscapeBackslash selects backslash-escape unescaping of quoted
	// fields instead of the RFC 4180 doubled-quote convention.
	EscapeBackslash bool

	// FieldsPerRecord controls field-count validation:
	//   - Negative (default): no check, rows may have variable field counts.
	//   - Zero: set to the first record's field count; subsequent records
	//     must match.
	//   - Positive: every record must have exactly this many fields.
	FieldsPerRecord int

	// LazyQuotes enables lenient parsing of quoted fields: malformed
	// quoting produces a RowWarning (see Warnings) instead of an error.
	// Defaults to true.
	LazyQuotes bool

	// TrimLeadingSpace causes leading whitespace in fields to be ignored,
	// so a quoted field may follow it. Trailing spaces and tabs of each
	// field are trimmed as well.
	TrimLeadingSpace bool

	// ReuseRecord controls whether Read may return a slice sharing the
	// backing array of the previous call's returned slice.
	ReuseRecord bool

	source io.Reader
	state  readerState
	opts   extendedOptions
}

// ReaderOptions contains extended configuration for Reader, beyond what
// encoding/csv exposes.
type ReaderOptions struct {
	// SkipBOM removes a leading UTF-8 BOM (EF BB BF), if present.
	SkipBOM bool

	// MaxInputSize is the maximum allowed input size in bytes.
	//   - 0: Use DefaultMaxInputSize (2GB)
	//   - -1: Unlimited (not recommended for untrusted input)
	//   - >0: Custom limit
	MaxInputSize int64
}

type extendedOptions struct {
	skipBOM      bool
	maxInputSize int64
}

// position represents a 1-indexed location in the input.
type position struct {
	line   int
	column int
}

type readerState struct {
	rawBuffer []byte
	offset    int // byte offset into rawBuffer of the next unread row
	lineNum   int

	lp *LineParser

	fieldPositions []position
	lastRecord     []string

	nonCommentRecordCount int
	initialized           bool

	warnings []RowWarning
}

// NewReader returns a new Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		Comma:           ',',
		Quote:           '"',
		FieldsPerRecord: -1,
		LazyQuotes:      true,
		source:          r,
	}
}

// NewReaderWithOptions creates a Reader with extended options.
func NewReaderWithOptions(r io.Reader, opts ReaderOptions) *Reader {
	reader := NewReader(r)
	reader.opts = extendedOptions{
		skipBOM:      opts.SkipBOM,
		maxInputSize: opts.MaxInputSize,
	}
	return reader
}

// Read reads one record (a slice of fields) from r.
//
// On parse error it returns a partial record and the error. On EOF it
// returns nil and io.EOF. If ReuseRecord is true, the returned slice may
// be shared between calls.
func (r *Reader) Read() (record []string, err error) {
	if err := r.ensureInitialized(); err != nil {
		return nil, err
	}
	return r.readNextRecord()
}

// ReadAll reads all remaining records from r. A successful call returns
// err == nil, not io.EOF. Empty input returns nil with no error.
func (r *Reader) ReadAll() (records [][]string, err error) {
	if err := r.ensureInitialized(); err != nil {
		return nil, err
	}
	for {
		record, err := r.readNextRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// Warnings returns the RowWarnings accumulated so far (malformed quoting
// observed while LazyQuotes is true). The slice is retained by the
// Reader; callers should not mutate it.
func (r *Reader) Warnings() []RowWarning {
	return r.state.warnings
}

// FieldPos returns the line and column (1-indexed) of the field at the
// given index in the most recently returned record. Columns are counted
// in bytes, not runes. Panics if the index is out of range.
func (r *Reader) FieldPos(field int) (line, column int) {
	if field < 0 || field >= len(r.state.fieldPositions) {
		panic("out of range index passed to FieldPos")
	}
	p := r.state.fieldPositions[field]
	return p.line, p.column
}

// InputOffset returns the byte offset of the end of the most recently
// read row.
func (r *Reader) InputOffset() int64 {
	return int64(r.state.offset)
}

func (r *Reader) csvOptions() CsvOptions {
	opts := DefaultCsvOptions()
	opts.Separator = string(r.Comma)
	opts.Quote = byte(r.Quote)
	opts.EscapeBackslash = r.EscapeBackslash
	opts.TrimWS = r.TrimLeadingSpace
	if r.Comment != 0 {
		opts.Comment = string(r.Comment)
	}
	return opts
}

func (r *Reader) readNextRecord() ([]string, error) {
	for {
		if r.state.offset >= len(r.state.rawBuffer) {
			return nil, io.EOF
		}

		rowStart := r.state.offset
		row := r.state.rawBuffer[rowStart:]

		if r.Comment != 0 && StartsWithComment(row, string(r.Comment)) {
			r.state.offset = SkipToNextLine(r.state.rawBuffer, rowStart)
			r.state.lineNum++
			continue
		}
		if row[0] == '\n' || (row[0] == '\r' && len(row) > 1 && row[1] == '\n') {
			// Empty lines are skipped, as encoding/csv does.
			r.state.offset = SkipToNextLine(r.state.rawBuffer, rowStart)
			r.state.lineNum++
			continue
		}

		lineNum := r.state.lineNum + 1

		if !r.LazyQuotes {
			rowEnd := SkipToNextLine(r.state.rawBuffer, rowStart)
			if err := validateRowQuotes(r.state.rawBuffer[rowStart:rowEnd], r.csvOptions(), lineNum); err != nil {
				return nil, err
			}
		}

		fields, consumed, warning := r.state.lp.ParseRow(row)
		for i, f := range fields {
			// A \r\n inside a quoted field is returned as \n, as encoding/csv does.
			if strings.Contains(f, "\r\n") {
				fields[i] = strings.ReplaceAll(f, "\r\n", "\n")
			}
		}
		r.state.offset += consumed
		r.state.lineNum++
		if warning != nil {
			warning.Row = lineNum
			r.state.warnings = append(r.state.warnings, *warning)
		}

		record := r.materializeRecord(fields)
		r.recordFieldPositions(record, lineNum)

		if err := r.validateFieldCount(record, lineNum); err != nil {
			return record, err
		}
		r.state.nonCommentRecordCount++
		return record, nil
	}
}

func (r *Reader) materializeRecord(fields []string) []string {
	if r.ReuseRecord {
		r.state.lastRecord = fields
		return r.state.lastRecord
	}
	return fields
}

func (r *Reader) recordFieldPositions(record []string, lineNum int) {
	if cap(r.state.fieldPositions) < len(record) {
		r.state.fieldPositions = make([]position, len(record))
	} else {
		r.state.fieldPositions = r.state.fieldPositions[:len(record)]
	}
	col := 1
	for i := range record {
		r.state.fieldPositions[i] = position{line: lineNum, column: col}
		col += len(record[i]) + 1
	}
}

func (r *Reader) validateFieldCount(record []string, lineNum int) error {
	if r.FieldsPerRecord < 0 {
		return nil
	}
	if r.FieldsPerRecord == 0 && r.isFirstNonCommentRecord() {
		r.FieldsPerRecord = len(record)
		return nil
	}
	if len(record) != r.FieldsPerRecord {
		return &ParseError{StartLine: lineNum, Line: lineNum, Column: 1, Err: ErrFieldCount}
	}
	return nil
}

func (r *Reader) isFirstNonCommentRecord() bool {
	return r.state.nonCommentRecordCount == 0
}

func (r *Reader) ensureInitialized() error {
	if r.state.initialized {
		return nil
	}
	r.state.initialized = true

	if err := r.readInput(); err != nil {
		return err
	}
	r.skipUTF8BOM()
	r.state.lp = NewLineParser(r.csvOptions())
	return nil
}

func (r *Reader) readInput() error {
	maxSize := r.opts.maxInputSize
	if maxSize == 0 {
		maxSize = DefaultMaxInputSize
	}

	var initialCap int64
	if seeker, ok := r.source.(io.Seeker); ok {
		if size, err := seeker.Seek(0, io.SeekEnd); err == nil {
			initialCap = size
			_, _ = seeker.Seek(0, io.SeekStart)
		}
	}

	var err error
	if maxSize > 0 {
		limited := io.LimitReader(r.source, maxSize+1)
		r.state.rawBuffer, err = readAllWithHint(limited, initialCap)
		if err != nil {
			return err
		}
		if int64(len(r.state.rawBuffer)) > maxSize {
			return ErrInputTooLarge
		}
	} else {
		r.state.rawBuffer, err = readAllWithHint(r.source, initialCap)
	}
	return err
}

// readAllWithHint reads all data from src, pre-allocating when the size is
// known ahead of time (from a Seeker, or a reader exposing Len/Size).
func readAllWithHint(src io.Reader, initialCap int64) ([]byte, error) {
	if initialCap == 0 {
		switch sr := src.(type) {
		case interface{ Len() int }:
			initialCap = int64(sr.Len())
		case interface{ Size() int64 }:
			initialCap = sr.Size()
		}
	}
	if initialCap > 0 {
		buf := make([]byte, initialCap)
		n, err := io.ReadFull(src, buf)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return buf[:n], nil
		}
		return buf[:n], err
	}
	return io.ReadAll(src)
}

func (r *Reader) skipUTF8BOM() {
	if !r.opts.skipBOM || len(r.state.rawBuffer) < 3 {
		return
	}
	if r.state.rawBuffer[0] == 0xEF && r.state.rawBuffer[1] == 0xBB && r.state.rawBuffer[2] == 0xBF {
		r.state.rawBuffer = r.state.rawBuffer[3:]
	}
}
